package signet

import (
	"context"
	"os"

	"github.com/opencontainers/go-digest"

	"github.com/meigma/signet/core"
)

// Run executes the full pipeline for a delimiter-separated file list:
// tool provisioning, certificate/keypair selection, then the per-file
// sign-then-verify loop. The list uses DefaultDelimiter; use RunFiles for
// a pre-parsed list.
func (c *Client) Run(ctx context.Context, input string) (*Report, error) {
	return c.RunFiles(ctx, SplitFileList(input, DefaultDelimiter))
}

// RunFiles executes the full pipeline for the given files in order.
func (c *Client) RunFiles(ctx context.Context, files []string) (*Report, error) {
	if c.closed {
		return nil, core.ErrClosed
	}
	if len(files) == 0 {
		return nil, core.ErrNoFiles
	}

	if _, err := c.EnsureTool(ctx); err != nil {
		return nil, err
	}

	selection, err := c.SelectSigningKey(ctx)
	if err != nil {
		return nil, err
	}

	return c.SignFiles(ctx, selection, files)
}

// SignFiles signs and verifies each file in order with the chosen keypair.
//
// Exactly one sign and one verify invocation is issued per file. By default
// a failed file is recorded in the report and the loop continues; in strict
// mode the first failure aborts the run, skipping the remaining
// invocations. Every attempt is appended to the audit trail when one is
// configured.
func (c *Client) SignFiles(ctx context.Context, selection Selection, files []string) (*Report, error) {
	if c.closed {
		return nil, core.ErrClosed
	}
	if len(files) == 0 {
		return nil, core.ErrNoFiles
	}

	tool := c.signingTool()
	report := &Report{Selection: selection, Results: make([]FileResult, 0, len(files))}

	for _, path := range files {
		result := c.signFile(ctx, tool, selection, path)
		c.recordResult(ctx, selection, result)
		report.Results = append(report.Results, result)

		if c.strict && result.Err != nil {
			return report, result.Err
		}
		if result.Err != nil {
			c.logger.Warn("file failed", "path", path, "error", result.Err)
		}
	}
	return report, nil
}

// Verify checks the signature of a single file with the verification tool.
func (c *Client) Verify(ctx context.Context, path string) error {
	if c.closed {
		return core.ErrClosed
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeouts.Verify)
	defer cancel()
	return c.verifier.Verify(ctx, path)
}

// signFile runs the sign-then-verify pair for one file. The pair is
// unconditional: verification runs even when signing failed, and the result
// carries both outcomes with Err holding the first failure. Only strict
// mode cuts the pair short.
func (c *Client) signFile(ctx context.Context, tool SigningTool, selection Selection, path string) FileResult {
	result := FileResult{Path: path, Digest: fileDigest(path)}

	signCtx, cancel := context.WithTimeout(ctx, c.timeouts.Tool)
	signErr := tool.Sign(signCtx, selection.KeypairAlias, path)
	cancel()
	if signErr != nil {
		result.Err = signErr
		if c.strict {
			return result
		}
	} else {
		result.Signed = true

		// Digest again so the audit row reflects the signed content.
		if d := fileDigest(path); d != "" {
			result.Digest = d
		}
	}

	verifyCtx, cancel := context.WithTimeout(ctx, c.timeouts.Verify)
	verifyErr := c.verifier.Verify(verifyCtx, path)
	cancel()
	if verifyErr != nil {
		if result.Err == nil {
			result.Err = verifyErr
		}
	} else {
		result.Verified = true
	}

	if result.Err == nil {
		c.logger.Info("file signed", "path", path, "keypair", selection.KeypairAlias)
	}
	return result
}

// recordResult appends one audit row for the attempt. Audit failures never
// fail the signing run.
func (c *Client) recordResult(ctx context.Context, selection Selection, result FileResult) {
	if c.audit == nil {
		return
	}

	entry := AuditEntry{
		Path:         result.Path,
		Digest:       result.Digest,
		KeypairAlias: selection.KeypairAlias,
		Signed:       result.Signed,
		Verified:     result.Verified,
	}
	if result.Err != nil {
		entry.Detail = result.Err.Error()
	}
	if err := c.audit.Record(ctx, entry); err != nil {
		c.logger.Warn("audit record failed", "path", result.Path, "error", err)
	}
}

// fileDigest returns the sha256 digest of the file content, or the empty
// string when the file cannot be read.
func fileDigest(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	d, err := digest.FromReader(f)
	if err != nil {
		return ""
	}
	return d.String()
}
