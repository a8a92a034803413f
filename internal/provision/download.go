package provision

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/opencontainers/go-digest"

	"github.com/meigma/signet/core"
	"github.com/meigma/signet/internal/progress"
)

// packageName returns the release package for the platform.
func packageName(goos string) string {
	switch goos {
	case "windows":
		return "smtools-windows-x64.msi"
	case "darwin":
		return "smtools-darwin-x64.tar.gz"
	default:
		return "smtools-linux-x64.tar.gz"
	}
}

// packageExt returns the package file extension for the platform.
func packageExt(goos string) string {
	if goos == "windows" {
		return ".msi"
	}
	return ".tar.gz"
}

// download fetches the platform package to a temporary file and returns its
// path. The request carries the API key header; a non-200 status, a deadline
// expiry, or a checksum mismatch fails the download. Single attempt, no
// retries.
func (i *Installer) download(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, i.timeouts.Download)
	defer cancel()

	pkg := packageName(i.goos)
	url := fmt.Sprintf("%s/signingmanager/api-ui/v1/releases/%s/download", strings.TrimRight(i.host, "/"), pkg)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build download request: %w", err)
	}
	req.Header.Set("x-api-key", i.apiKey)

	resp, err := i.httpClient.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: download %s", core.ErrTimeout, pkg)
		}
		return "", fmt.Errorf("download %s: %w", pkg, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download %s: unexpected status %s", pkg, resp.Status)
	}

	f, err := os.CreateTemp("", "smtools-*"+packageExt(i.goos))
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	var body io.Reader = resp.Body
	if i.progress != nil {
		body = progress.NewReader(resp.Body, resp.ContentLength, i.progress)
	}

	digester := digest.SHA256.Digester()
	size, err := io.Copy(f, io.TeeReader(body, digester.Hash()))
	closeErr := f.Close()
	if err != nil {
		os.Remove(f.Name())
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: download %s", core.ErrTimeout, pkg)
		}
		return "", fmt.Errorf("save installer: %w", err)
	}
	if closeErr != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("save installer: %w", closeErr)
	}

	got := digester.Digest()
	if i.checksum != "" && !checksumMatches(i.checksum, got) {
		os.Remove(f.Name())
		return "", fmt.Errorf("%w: %s resolved to %s", core.ErrChecksumMismatch, pkg, got)
	}

	i.logger.Debug("installer downloaded", "package", pkg, "bytes", size, "digest", got.String())
	return f.Name(), nil
}

// checksumMatches compares an expected sha256 (bare hex or sha256: prefixed)
// against the computed digest.
func checksumMatches(expected string, got digest.Digest) bool {
	want := strings.ToLower(strings.TrimSpace(expected))
	want = strings.TrimPrefix(want, "sha256:")
	return want == got.Encoded()
}
