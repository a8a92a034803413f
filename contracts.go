package signet

import "github.com/meigma/signet/core"

// Interfaces implemented by the internal packages and replaceable through
// client options. Re-exported from core package.
type (
	// CommandRunner executes external commands.
	CommandRunner = core.CommandRunner

	// SigningTool drives the vendor signing CLI.
	SigningTool = core.SigningTool

	// ToolProvisioner makes the vendor signing CLI available on this host.
	ToolProvisioner = core.ToolProvisioner

	// SignatureVerifier checks file signatures with an external verification tool.
	SignatureVerifier = core.SignatureVerifier

	// AuditRecorder persists signing outcomes.
	AuditRecorder = core.AuditRecorder
)
