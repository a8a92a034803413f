// Package verify checks file signatures with platform verification tools.
//
// Windows hosts use signtool, everything else uses osslsigncode. The
// command can be replaced through WithCommand, for example to point at a
// specific SDK install.
package verify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strings"

	"github.com/meigma/signet/core"
)

// Tool verifies signatures by shelling out to a verification binary.
type Tool struct {
	runner  core.CommandRunner
	command string
	logger  *slog.Logger
}

// Compile-time interface implementation check.
var _ core.SignatureVerifier = (*Tool)(nil)

// Option configures a Tool.
type Option func(*Tool)

// WithCommand sets the verification executable, as a bare name or absolute
// path. Commands whose base name starts with "signtool" are invoked with
// signtool's argument style, everything else with osslsigncode's.
func WithCommand(command string) Option {
	return func(t *Tool) {
		t.command = command
	}
}

// WithLogger sets a logger for the tool. By default, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tool) {
		t.logger = logger
	}
}

// New creates a Tool using the default verifier for the current platform.
func New(runner core.CommandRunner, opts ...Option) *Tool {
	t := &Tool{
		runner:  runner,
		command: defaultCommand(runtime.GOOS),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func defaultCommand(goos string) string {
	if goos == "windows" {
		return "signtool"
	}
	return "osslsigncode"
}

// Verify checks the signature of the file at path. The verification binary
// is resolved on every call so a tool installed mid-run is picked up.
func (t *Tool) Verify(ctx context.Context, path string) error {
	resolved, err := t.runner.LookPath(t.command)
	if err != nil {
		return err
	}

	args := arguments(resolved, path)
	t.logger.Debug("verifying signature", "command", resolved, "args", args)

	out, err := t.runner.Run(ctx, nil, resolved, args...)
	if err != nil {
		if errors.Is(err, core.ErrTimeout) {
			return fmt.Errorf("verify %s: %w", path, err)
		}
		return fmt.Errorf("%w: %s: %v", core.ErrVerifyFailed, path, err)
	}
	t.logger.Debug("signature verified", "path", path, "output", string(out))
	return nil
}

// arguments builds the verifier argv for the resolved command. The base
// name is split on either separator so Windows paths parse on any host.
func arguments(command, path string) []string {
	base := strings.ToLower(command)
	if idx := strings.LastIndexAny(base, `/\`); idx >= 0 {
		base = base[idx+1:]
	}
	if strings.HasPrefix(base, "signtool") {
		return []string{"verify", "/v", "/pa", path}
	}
	return []string{"verify", path}
}
