// Package execx runs external commands for the signing pipeline.
package execx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"

	"github.com/cli/safeexec"

	"github.com/meigma/signet/core"
)

// Runner executes commands with os/exec.
type Runner struct {
	logger *slog.Logger
}

// Compile-time interface implementation check.
var _ core.CommandRunner = (*Runner)(nil)

// New creates a runner that logs command activity to logger.
func New(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Runner{logger: logger}
}

// Run executes name with args and returns the combined output.
// The env assignments are appended to the parent process environment.
// Non-zero exits are reported as *core.CommandError; a context deadline
// expiry is reported as core.ErrTimeout.
func (r *Runner) Run(ctx context.Context, env []string, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}

	r.logger.Debug("running command", "name", name, "args", args)
	out, err := cmd.CombinedOutput()
	if err == nil {
		return out, nil
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return out, fmt.Errorf("%w: %s", core.ErrTimeout, name)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return out, &core.CommandError{
			Name:     name,
			ExitCode: exitErr.ExitCode(),
			Output:   out,
		}
	}

	return out, fmt.Errorf("run %s: %w", name, err)
}

// LookPath resolves name to an absolute executable path.
// Resolution never picks up binaries from the current directory on Windows.
func (r *Runner) LookPath(name string) (string, error) {
	path, err := safeexec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s", core.ErrToolNotFound, name)
	}
	return path, nil
}
