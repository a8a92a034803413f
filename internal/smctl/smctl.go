// Package smctl drives the Signing Manager CLI (smctl).
//
// Every operation shells out to the vendor binary through a command runner.
// The tool's tabular text output is parsed into typed records here so that
// callers never depend on the raw column layout.
package smctl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/meigma/signet/core"
)

// Tool invokes smctl subcommands through a command runner.
type Tool struct {
	runner  core.CommandRunner
	command string
	env     []string
	logger  *slog.Logger
}

// Compile-time interface implementation check.
var _ core.SigningTool = (*Tool)(nil)

// Option configures a Tool.
type Option func(*Tool)

// WithCommand sets the smctl executable, as a bare name or absolute path.
func WithCommand(command string) Option {
	return func(t *Tool) {
		t.command = command
	}
}

// WithEnv sets environment assignments passed to every invocation.
func WithEnv(env []string) Option {
	return func(t *Tool) {
		t.env = env
	}
}

// WithLogger sets a logger for the tool. By default, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tool) {
		t.logger = logger
	}
}

// New creates a Tool that runs smctl through runner.
func New(runner core.CommandRunner, opts ...Option) *Tool {
	t := &Tool{
		runner:  runner,
		command: "smctl",
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// SyncCertificates runs cert-sync to pull service certificates into the
// local store consumed by the signing subcommand.
func (t *Tool) SyncCertificates(ctx context.Context) error {
	out, err := t.runner.Run(ctx, t.env, t.command, "cert-sync")
	if err != nil {
		return fmt.Errorf("cert-sync: %w", err)
	}
	t.logger.Debug("certificates synchronized", "output", string(out))
	return nil
}

// Certificates runs cert-list and returns the parsed rows.
func (t *Tool) Certificates(ctx context.Context) ([]core.CertificateRecord, error) {
	out, err := t.runner.Run(ctx, t.env, t.command, "cert-list")
	if err != nil {
		return nil, fmt.Errorf("cert-list: %w", err)
	}
	return ParseCertificates(out), nil
}

// Keypairs runs keypair-list and returns the parsed rows.
func (t *Tool) Keypairs(ctx context.Context) ([]core.KeypairRecord, error) {
	out, err := t.runner.Run(ctx, t.env, t.command, "keypair-list")
	if err != nil {
		return nil, fmt.Errorf("keypair-list: %w", err)
	}
	return ParseKeypairs(out), nil
}

// Sign signs the file at path with the named keypair.
func (t *Tool) Sign(ctx context.Context, keypairAlias, path string) error {
	out, err := t.runner.Run(ctx, t.env, t.command, "sign", "--keypair-alias", keypairAlias, "--input", path)
	if err != nil {
		if errors.Is(err, core.ErrTimeout) {
			return fmt.Errorf("sign %s: %w", path, err)
		}
		return fmt.Errorf("%w: %s: %v", core.ErrSignFailed, path, err)
	}
	t.logger.Debug("file signed", "path", path, "keypair", keypairAlias, "output", string(out))
	return nil
}
