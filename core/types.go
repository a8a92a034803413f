// Package core provides the shared types and interfaces for signet.
//
// This package exists to break import cycles between the root signet package
// and internal implementation packages. The signet package re-exports all
// public types from this package, so external users should import signet
// directly, not signet/core.
package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinel errors for common failure conditions.
var (
	// ErrMissingCredentials indicates required configuration values are absent.
	ErrMissingCredentials = errors.New("signet: missing credentials")

	// ErrNoFiles indicates the file list parsed to zero entries.
	ErrNoFiles = errors.New("signet: no files to sign")

	// ErrInvalidCertificate indicates the client certificate blob could not be decoded.
	ErrInvalidCertificate = errors.New("signet: invalid client certificate")

	// ErrToolNotFound indicates a required external tool is not available.
	ErrToolNotFound = errors.New("signet: tool not found")

	// ErrChecksumMismatch indicates the downloaded installer failed checksum verification.
	ErrChecksumMismatch = errors.New("signet: installer checksum mismatch")

	// ErrNoActiveCertificate indicates the certificate listing contained no ACTIVE rows.
	ErrNoActiveCertificate = errors.New("signet: no active certificate")

	// ErrNoKeypair indicates no keypair references the selected certificate.
	ErrNoKeypair = errors.New("signet: no matching keypair")

	// ErrSignFailed indicates the signing tool reported a failure for a file.
	ErrSignFailed = errors.New("signet: signing failed")

	// ErrVerifyFailed indicates the verification tool rejected a signature.
	ErrVerifyFailed = errors.New("signet: signature verification failed")

	// ErrTimeout indicates an external call exceeded its configured timeout.
	ErrTimeout = errors.New("signet: operation timed out")

	// ErrClosed indicates an operation was attempted on a closed client.
	ErrClosed = errors.New("signet: client closed")
)

// CertificateRecord is one row of the signing service's certificate listing.
type CertificateRecord struct {
	// ID is the certificate identifier (hex groups joined by hyphens).
	ID string
	// Alias is the certificate's display alias.
	Alias string
	// Status is the lifecycle status as reported by the service (e.g. ACTIVE).
	Status string
}

// Active reports whether the certificate is usable for signing.
func (c CertificateRecord) Active() bool {
	return c.Status == "ACTIVE"
}

// KeypairRecord is one row of the signing service's keypair listing.
type KeypairRecord struct {
	// Alias is the keypair alias passed to the sign subcommand.
	Alias string
	// CertificateID is the identifier of the certificate the keypair belongs to.
	CertificateID string
}

// Selection identifies the certificate and keypair chosen for a signing run.
type Selection struct {
	CertificateID    string
	CertificateAlias string
	KeypairAlias     string
}

// ToolStatus describes the outcome of signing tool provisioning.
type ToolStatus struct {
	// Path is the resolved signing tool binary.
	Path string
	// Installed is true when this run downloaded and installed the tool.
	Installed bool
	// InstallerExitCode is the installer's exit status when Installed is true.
	// Non-zero codes are reported, not enforced, outside strict mode.
	InstallerExitCode int
}

// FileResult records the outcome of signing and verifying a single file.
type FileResult struct {
	// Path is the file as given in the input list.
	Path string
	// Digest is the sha256 of the file content, when it could be computed.
	Digest string
	// Signed is true when the sign subcommand exited zero.
	Signed bool
	// Verified is true when the verification tool exited zero.
	Verified bool
	// Err holds the first failure for this file, nil on success.
	Err error
}

// Report summarizes one signing run.
type Report struct {
	// Selection is the certificate and keypair used for every file.
	Selection Selection
	// Results holds one entry per input file, in input order.
	Results []FileResult
}

// Failed returns the results whose sign or verify step failed.
func (r *Report) Failed() []FileResult {
	var failed []FileResult
	for _, res := range r.Results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}

// Succeeded reports whether every file was signed and verified.
func (r *Report) Succeeded() bool {
	for _, res := range r.Results {
		if res.Err != nil {
			return false
		}
	}
	return true
}

// AuditEntry is one persisted signing outcome.
type AuditEntry struct {
	ID           int64
	CreatedAt    time.Time
	Path         string
	Digest       string
	KeypairAlias string
	Signed       bool
	Verified     bool
	// Detail carries the failure text for unsuccessful attempts.
	Detail string
}

// Default timeouts applied when the corresponding Timeouts field is zero.
const (
	DefaultDownloadTimeout = 10 * time.Minute
	DefaultInstallTimeout  = 10 * time.Minute
	DefaultToolTimeout     = 2 * time.Minute
	DefaultVerifyTimeout   = 2 * time.Minute
)

// Timeouts bounds each category of external call made by the pipeline.
// Non-positive fields fall back to the package defaults.
type Timeouts struct {
	// Download bounds the installer package download.
	Download time.Duration
	// Install bounds the installer execution or archive extraction.
	Install time.Duration
	// Tool bounds each signing tool invocation.
	Tool time.Duration
	// Verify bounds each verification tool invocation.
	Verify time.Duration
}

// Normalize returns a copy of t with non-positive fields replaced by the
// defaults.
func (t Timeouts) Normalize() Timeouts {
	if t.Download <= 0 {
		t.Download = DefaultDownloadTimeout
	}
	if t.Install <= 0 {
		t.Install = DefaultInstallTimeout
	}
	if t.Tool <= 0 {
		t.Tool = DefaultToolTimeout
	}
	if t.Verify <= 0 {
		t.Verify = DefaultVerifyTimeout
	}
	return t
}

// CommandError reports an external command that exited with a non-zero status.
type CommandError struct {
	// Name is the command that was executed.
	Name string
	// ExitCode is the command's exit status.
	ExitCode int
	// Output is the combined stdout and stderr of the command.
	Output []byte
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s: exit status %d", e.Name, e.ExitCode)
	if out := strings.TrimSpace(string(e.Output)); out != "" {
		msg += ": " + out
	}
	return msg
}

// ExitCode returns the exit status carried by err, or -1 if err carries none.
func ExitCode(err error) int {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.ExitCode
	}
	return -1
}

// CommandRunner executes external commands.
// This interface is implemented by internal/execx.
type CommandRunner interface {
	// Run executes name with args and returns the combined output.
	// The env assignments are appended to the parent process environment.
	// A non-zero exit is reported as a *CommandError; a context deadline
	// expiry is reported as ErrTimeout.
	Run(ctx context.Context, env []string, name string, args ...string) ([]byte, error)

	// LookPath resolves name to an absolute executable path.
	// Returns ErrToolNotFound if the executable cannot be located.
	LookPath(name string) (string, error)
}

// SigningTool drives the vendor signing CLI.
// This interface is implemented by internal/smctl.
type SigningTool interface {
	// SyncCertificates synchronizes service certificates to the local store.
	SyncCertificates(ctx context.Context) error

	// Certificates lists certificates known to the signing service.
	Certificates(ctx context.Context) ([]CertificateRecord, error)

	// Keypairs lists keypairs known to the signing service.
	Keypairs(ctx context.Context) ([]KeypairRecord, error)

	// Sign signs the file at path with the named keypair.
	Sign(ctx context.Context, keypairAlias, path string) error
}

// ToolProvisioner makes the vendor signing CLI available on this host.
// This interface is implemented by internal/provision.
type ToolProvisioner interface {
	// Ensure returns the signing tool path, downloading and installing the
	// tool package first if the binary is not already present.
	Ensure(ctx context.Context) (ToolStatus, error)
}

// SignatureVerifier checks file signatures with an external verification tool.
// This interface is implemented by internal/verify.
type SignatureVerifier interface {
	// Verify checks the signature of the file at path.
	// Returns an error wrapping ErrVerifyFailed when the tool rejects it.
	Verify(ctx context.Context, path string) error
}

// AuditRecorder persists signing outcomes.
// This interface is implemented by internal/audit.
type AuditRecorder interface {
	// Record appends one signing outcome.
	Record(ctx context.Context, entry AuditEntry) error

	// Recent returns up to limit entries, newest first.
	Recent(ctx context.Context, limit int) ([]AuditEntry, error)

	// Close releases the underlying store.
	Close() error
}
