package signet

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"runtime"

	"github.com/meigma/signet/internal/audit"
	"github.com/meigma/signet/internal/execx"
	"github.com/meigma/signet/internal/provision"
	"github.com/meigma/signet/internal/smctl"
	"github.com/meigma/signet/internal/verify"
)

// Client orchestrates the signing pipeline: certificate staging, tool
// provisioning, certificate/keypair selection, and the per-file
// sign-then-verify loop.
type Client struct {
	logger *slog.Logger

	creds    Credentials
	credsSet bool

	runner      CommandRunner
	tool        SigningTool
	provisioner ToolProvisioner
	verifier    SignatureVerifier
	audit       AuditRecorder
	auditOwned  bool

	// configuration applied by options
	httpClient    *http.Client
	strict        bool
	timeouts      Timeouts
	progress      ProgressCallback
	checksum      string
	retainCert    bool
	certPath      string
	auditPath     string
	auditDisabled bool
	verifyCommand string

	// run state
	certFile string
	toolPath string
	closed   bool
}

// NewClient creates a signing client.
//
// By default, credentials are read from the SM_* environment variables and
// validated; every missing required variable is reported in one error. The
// client certificate is decoded and staged to disk here, so a successfully
// constructed client is ready to sign. Call Close to release the staged
// secret and the audit store.
func NewClient(opts ...ClientOption) (*Client, error) {
	c := &Client{
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		auditOwned: true,
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if !c.credsSet {
		c.creds = CredentialsFromEnv()
	}
	if err := c.creds.Validate(); err != nil {
		return nil, err
	}

	if c.checksum == "" {
		c.checksum = os.Getenv(EnvInstallerChecksum)
	}
	c.timeouts = c.timeouts.Normalize()
	c.toolPath = defaultToolPath(c.creds.InstallDir)

	if c.runner == nil {
		c.runner = execx.New(c.logger)
	}

	certFile, err := c.stageCertificate()
	if err != nil {
		return nil, err
	}
	c.certFile = certFile

	if c.provisioner == nil {
		popts := []provision.Option{
			provision.WithLogger(c.logger),
			provision.WithTimeouts(c.timeouts),
		}
		if c.httpClient != nil {
			popts = append(popts, provision.WithHTTPClient(c.httpClient))
		}
		if c.checksum != "" {
			popts = append(popts, provision.WithChecksum(c.checksum))
		}
		if c.progress != nil {
			callback := c.progress
			popts = append(popts, provision.WithProgress(func(transferred, total int64) {
				callback(ProgressEvent{
					Operation:        "download",
					BytesTransferred: transferred,
					TotalBytes:       total,
				})
			}))
		}
		c.provisioner = provision.New(c.runner, c.creds.hostOrDefault(), c.creds.APIKey, c.creds.InstallDir, popts...)
	}

	if c.verifier == nil {
		vopts := []verify.Option{verify.WithLogger(c.logger)}
		if c.verifyCommand != "" {
			vopts = append(vopts, verify.WithCommand(c.verifyCommand))
		}
		c.verifier = verify.New(c.runner, vopts...)
	}

	if c.audit == nil && !c.auditDisabled {
		path := c.auditPath
		if path == "" {
			path, err = defaultAuditPath()
			if err != nil {
				c.removeCertificate()
				return nil, fmt.Errorf("resolve audit path: %w", err)
			}
		}
		store, err := audit.Open(path)
		if err != nil {
			c.removeCertificate()
			return nil, err
		}
		c.audit = store
	}

	return c, nil
}

// Close releases the client: the staged certificate is removed (unless
// retention was requested) and the audit store is closed. Close is
// idempotent.
func (c *Client) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true

	err := c.removeCertificate()
	if c.audit != nil && c.auditOwned {
		if closeErr := c.audit.Close(); err == nil {
			err = closeErr
		}
	}
	return err
}

// CertificateFile returns the path the client certificate was staged at.
func (c *Client) CertificateFile() string {
	return c.certFile
}

// AuditTrail returns up to limit recent audit entries, newest first.
// Returns nil when the audit trail is disabled.
func (c *Client) AuditTrail(ctx context.Context, limit int) ([]AuditEntry, error) {
	if c.audit == nil {
		return nil, nil
	}
	return c.audit.Recent(ctx, limit)
}

// signingTool returns the vendor CLI adapter, honoring a custom tool set
// through options. The adapter is rebuilt per call because provisioning can
// move the tool path mid-run.
func (c *Client) signingTool() SigningTool {
	if c.tool != nil {
		return c.tool
	}
	return smctl.New(c.runner,
		smctl.WithCommand(c.toolPath),
		smctl.WithEnv(c.creds.environ(c.certFile)),
		smctl.WithLogger(c.logger),
	)
}

// defaultToolPath returns the expected vendor CLI binary for installDir.
func defaultToolPath(installDir string) string {
	name := "smctl"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return filepath.Join(installDir, name)
}

// defaultAuditPath returns the audit database path inside the user data
// directory. Uses XDG_DATA_HOME/signet, defaulting to ~/.local/share/signet.
func defaultAuditPath() (string, error) {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, "signet", "audit.db"), nil
}
