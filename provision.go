package signet

import (
	"context"
	"fmt"

	"github.com/meigma/signet/core"
)

// EnsureTool makes the vendor signing CLI available, downloading and
// installing the platform package when the binary is not already present.
//
// The installer's own exit code is carried in the returned status; outside
// strict mode a non-zero code is reported, not enforced.
func (c *Client) EnsureTool(ctx context.Context) (ToolStatus, error) {
	if c.closed {
		return ToolStatus{}, core.ErrClosed
	}

	status, err := c.provisioner.Ensure(ctx)
	if err != nil {
		return status, err
	}
	c.toolPath = status.Path

	if status.Installed && status.InstallerExitCode != 0 {
		if c.strict {
			return status, fmt.Errorf("installer exited with code %d", status.InstallerExitCode)
		}
		c.logger.Warn("installer reported failure", "exit_code", status.InstallerExitCode)
	}
	return status, nil
}
