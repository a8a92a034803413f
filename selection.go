package signet

import (
	"context"
	"fmt"

	"github.com/meigma/signet/core"
)

// Certificates lists the certificates known to the signing service.
func (c *Client) Certificates(ctx context.Context) ([]CertificateRecord, error) {
	if c.closed {
		return nil, core.ErrClosed
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeouts.Tool)
	defer cancel()
	return c.signingTool().Certificates(ctx)
}

// Keypairs lists the keypairs known to the signing service.
func (c *Client) Keypairs(ctx context.Context) ([]KeypairRecord, error) {
	if c.closed {
		return nil, core.ErrClosed
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeouts.Tool)
	defer cancel()
	return c.signingTool().Keypairs(ctx)
}

// SelectSigningKey picks the certificate and keypair used for signing.
//
// The service certificates are synchronized first, then the certificate
// listing is scanned for ACTIVE rows; the first one in listing order wins.
// When no row is ACTIVE the keypair listing is never consulted. The keypair
// is the first one associated with the chosen certificate.
func (c *Client) SelectSigningKey(ctx context.Context) (Selection, error) {
	if c.closed {
		return Selection{}, core.ErrClosed
	}
	tool := c.signingTool()

	if err := c.syncCertificates(ctx, tool); err != nil {
		return Selection{}, err
	}

	listCtx, cancel := context.WithTimeout(ctx, c.timeouts.Tool)
	certs, err := tool.Certificates(listCtx)
	cancel()
	if err != nil {
		return Selection{}, err
	}

	var chosen CertificateRecord
	found := false
	for _, cert := range certs {
		if cert.Active() {
			chosen = cert
			found = true
			break
		}
	}
	if !found {
		return Selection{}, fmt.Errorf("%w: %d certificates listed", core.ErrNoActiveCertificate, len(certs))
	}
	c.logger.Debug("certificate selected", "id", chosen.ID, "alias", chosen.Alias)

	pairCtx, cancel := context.WithTimeout(ctx, c.timeouts.Tool)
	pairs, err := tool.Keypairs(pairCtx)
	cancel()
	if err != nil {
		return Selection{}, err
	}

	for _, pair := range pairs {
		if pair.CertificateID == chosen.ID {
			c.logger.Debug("keypair selected", "alias", pair.Alias, "certificate", chosen.ID)
			return Selection{
				CertificateID:    chosen.ID,
				CertificateAlias: chosen.Alias,
				KeypairAlias:     pair.Alias,
			}, nil
		}
	}
	return Selection{}, fmt.Errorf("%w: certificate %s", core.ErrNoKeypair, chosen.ID)
}

// syncCertificates runs cert-sync. Failures are logged and tolerated by
// default since the listing can still succeed against an earlier sync; in
// strict mode they abort the selection.
func (c *Client) syncCertificates(ctx context.Context, tool SigningTool) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeouts.Tool)
	defer cancel()

	if err := tool.SyncCertificates(ctx); err != nil {
		if c.strict {
			return err
		}
		c.logger.Warn("certificate sync failed", "error", err)
	}
	return nil
}
