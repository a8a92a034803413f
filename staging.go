package signet

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/meigma/signet/core"
)

// certFileName is the staged certificate file inside the OS temp directory
// when no explicit path is configured.
const certFileName = "signet-client-cert.p12"

// stageCertificate decodes the base64 client certificate blob and writes it
// to the configured path with owner-only permissions. The path is handed to
// the vendor tool through its environment (SM_CLIENT_CERT_FILE).
func (c *Client) stageCertificate() (string, error) {
	blob := strings.TrimSpace(c.creds.ClientCertificate)
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrInvalidCertificate, err)
	}
	if len(raw) == 0 {
		return "", fmt.Errorf("%w: decoded certificate is empty", core.ErrInvalidCertificate)
	}

	path := c.certPath
	if path == "" {
		path = filepath.Join(os.TempDir(), certFileName)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return "", fmt.Errorf("create certificate dir: %w", err)
		}
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return "", fmt.Errorf("stage client certificate: %w", err)
	}

	c.logger.Debug("client certificate staged", "path", path, "bytes", len(raw))
	return path, nil
}

// removeCertificate deletes the staged certificate unless retention was
// requested. A missing file is not an error.
func (c *Client) removeCertificate() error {
	if c.certFile == "" || c.retainCert {
		return nil
	}
	if err := os.Remove(c.certFile); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove staged certificate: %w", err)
	}
	return nil
}
