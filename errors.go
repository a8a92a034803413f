package signet

import "github.com/meigma/signet/core"

// Sentinel errors for common failure conditions.
// Re-exported from core package.
var (
	// ErrMissingCredentials indicates required configuration values are absent.
	ErrMissingCredentials = core.ErrMissingCredentials

	// ErrNoFiles indicates the file list parsed to zero entries.
	ErrNoFiles = core.ErrNoFiles

	// ErrInvalidCertificate indicates the client certificate blob could not be decoded.
	ErrInvalidCertificate = core.ErrInvalidCertificate

	// ErrToolNotFound indicates a required external tool is not available.
	ErrToolNotFound = core.ErrToolNotFound

	// ErrChecksumMismatch indicates the downloaded installer failed checksum verification.
	ErrChecksumMismatch = core.ErrChecksumMismatch

	// ErrNoActiveCertificate indicates the certificate listing contained no ACTIVE rows.
	ErrNoActiveCertificate = core.ErrNoActiveCertificate

	// ErrNoKeypair indicates no keypair references the selected certificate.
	ErrNoKeypair = core.ErrNoKeypair

	// ErrSignFailed indicates the signing tool reported a failure for a file.
	ErrSignFailed = core.ErrSignFailed

	// ErrVerifyFailed indicates the verification tool rejected a signature.
	ErrVerifyFailed = core.ErrVerifyFailed

	// ErrTimeout indicates an external call exceeded its configured timeout.
	ErrTimeout = core.ErrTimeout

	// ErrClosed indicates an operation was attempted on a closed client.
	ErrClosed = core.ErrClosed
)
