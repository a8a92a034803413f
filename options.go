package signet

import (
	"log/slog"
	"net/http"
)

// ClientOption configures a Client.
type ClientOption func(*Client) error

// WithAuditDisabled turns off the local signing audit trail.
func WithAuditDisabled() ClientOption {
	return func(c *Client) error {
		c.auditDisabled = true
		return nil
	}
}

// WithAuditPath sets the audit database file path.
func WithAuditPath(path string) ClientOption {
	return func(c *Client) error {
		c.auditPath = path
		return nil
	}
}

// WithAuditRecorder sets a custom audit recorder. The client does not close
// recorders supplied this way.
func WithAuditRecorder(recorder AuditRecorder) ClientOption {
	return func(c *Client) error {
		c.audit = recorder
		c.auditOwned = false
		return nil
	}
}

// WithCertificatePath sets the path the decoded client certificate is
// staged at. The default is a file inside the OS temp directory.
func WithCertificatePath(path string) ClientOption {
	return func(c *Client) error {
		c.certPath = path
		return nil
	}
}

// WithCredentials sets explicit credentials instead of reading the SM_*
// environment variables.
func WithCredentials(creds Credentials) ClientOption {
	return func(c *Client) error {
		c.creds = creds
		c.credsSet = true
		return nil
	}
}

// WithHTTPClient sets the HTTP client used for the installer download.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) error {
		c.httpClient = client
		return nil
	}
}

// WithInstallerChecksum pins the expected sha256 of the downloaded
// installer package. Accepts bare hex or a sha256: prefixed digest string.
// Defaults to the SM_INSTALLER_SHA256 environment variable.
func WithInstallerChecksum(checksum string) ClientOption {
	return func(c *Client) error {
		c.checksum = checksum
		return nil
	}
}

// WithLogger sets a logger for the client. By default, logging is disabled.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) error {
		c.logger = logger
		return nil
	}
}

// WithProgress sets a callback receiving installer download progress.
func WithProgress(callback ProgressCallback) ClientOption {
	return func(c *Client) error {
		c.progress = callback
		return nil
	}
}

// WithProvisioner sets a custom tool provisioner.
func WithProvisioner(provisioner ToolProvisioner) ClientOption {
	return func(c *Client) error {
		c.provisioner = provisioner
		return nil
	}
}

// WithRetainCertificate keeps the staged client certificate on disk after
// Close. By default the decoded secret is removed.
func WithRetainCertificate(retain bool) ClientOption {
	return func(c *Client) error {
		c.retainCert = retain
		return nil
	}
}

// WithRunner sets the command runner all external tools are invoked through.
func WithRunner(runner CommandRunner) ClientOption {
	return func(c *Client) error {
		c.runner = runner
		return nil
	}
}

// WithSigningTool sets a custom signing tool implementation.
func WithSigningTool(tool SigningTool) ClientOption {
	return func(c *Client) error {
		c.tool = tool
		return nil
	}
}

// WithStrict makes any external failure terminal: a non-zero installer
// exit, a failed cert-sync, and the first failed sign or verify all abort
// the run with an error. The default preserves best-effort behavior, where
// those outcomes are recorded but the run continues.
func WithStrict(strict bool) ClientOption {
	return func(c *Client) error {
		c.strict = strict
		return nil
	}
}

// WithTimeouts bounds each category of external call. Zero fields keep
// their package defaults.
func WithTimeouts(timeouts Timeouts) ClientOption {
	return func(c *Client) error {
		c.timeouts = timeouts
		return nil
	}
}

// WithVerifier sets a custom signature verifier.
func WithVerifier(verifier SignatureVerifier) ClientOption {
	return func(c *Client) error {
		c.verifier = verifier
		return nil
	}
}

// WithVerifyCommand sets the signature verification executable, as a bare
// name or absolute path. The default is signtool on Windows and
// osslsigncode elsewhere.
func WithVerifyCommand(command string) ClientOption {
	return func(c *Client) error {
		c.verifyCommand = command
		return nil
	}
}
