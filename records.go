package signet

import "github.com/meigma/signet/core"

// Data types shared with internal packages.
// Re-exported from core package.
type (
	// CertificateRecord is one row of the signing service's certificate listing.
	CertificateRecord = core.CertificateRecord

	// KeypairRecord is one row of the signing service's keypair listing.
	KeypairRecord = core.KeypairRecord

	// Selection identifies the certificate and keypair chosen for a signing run.
	Selection = core.Selection

	// ToolStatus describes the outcome of signing tool provisioning.
	ToolStatus = core.ToolStatus

	// FileResult records the outcome of signing and verifying a single file.
	FileResult = core.FileResult

	// Report summarizes one signing run.
	Report = core.Report

	// AuditEntry is one persisted signing outcome.
	AuditEntry = core.AuditEntry

	// Timeouts bounds each category of external call made by the pipeline.
	Timeouts = core.Timeouts

	// CommandError reports an external command that exited with a non-zero status.
	CommandError = core.CommandError
)

// ExitCode returns the exit status carried by err, or -1 if err carries none.
func ExitCode(err error) int {
	return core.ExitCode(err)
}
