package signet

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	certID      = "6d29b16a-7a05-4442-bac4-d4ae1b714a38"
	otherCertID = "1a2b3c4d-0000-1111-2222-333344445555"
)

func TestSelectSigningKey(t *testing.T) {
	t.Parallel()

	tool := &fakeTool{
		certs: []CertificateRecord{
			{ID: otherCertID, Alias: "old_codesign", Status: "EXPIRED"},
			{ID: certID, Alias: "corp_codesign", Status: "ACTIVE"},
			{ID: "7e3ac27b-8b16-5553-cbd5-e5bf2c825b49", Alias: "backup_codesign", Status: "ACTIVE"},
		},
		keypairs: []KeypairRecord{
			{Alias: "key_other", CertificateID: otherCertID},
			{Alias: "key_alpha", CertificateID: certID},
			{Alias: "key_dup", CertificateID: certID},
		},
	}
	client := newTestClient(t, WithSigningTool(tool))

	selection, err := client.SelectSigningKey(context.Background())
	require.NoError(t, err)

	// First ACTIVE certificate wins, and the first keypair referencing it.
	assert.Equal(t, certID, selection.CertificateID)
	assert.Equal(t, "corp_codesign", selection.CertificateAlias)
	assert.Equal(t, "key_alpha", selection.KeypairAlias)
	assert.Equal(t, []string{"cert-sync", "cert-list", "keypair-list"}, tool.calls)
}

func TestSelectSigningKeyNoActiveCertificate(t *testing.T) {
	t.Parallel()

	tool := &fakeTool{
		certs: []CertificateRecord{
			{ID: otherCertID, Alias: "old_codesign", Status: "EXPIRED"},
		},
		keypairs: []KeypairRecord{{Alias: "key_other", CertificateID: otherCertID}},
	}
	client := newTestClient(t, WithSigningTool(tool))

	_, err := client.SelectSigningKey(context.Background())
	require.ErrorIs(t, err, ErrNoActiveCertificate)

	// The keypair listing is never consulted without an ACTIVE certificate.
	assert.NotContains(t, tool.calls, "keypair-list")
}

func TestSelectSigningKeyNoMatchingKeypair(t *testing.T) {
	t.Parallel()

	tool := &fakeTool{
		certs:    []CertificateRecord{{ID: certID, Alias: "corp_codesign", Status: "ACTIVE"}},
		keypairs: []KeypairRecord{{Alias: "key_other", CertificateID: otherCertID}},
	}
	client := newTestClient(t, WithSigningTool(tool))

	_, err := client.SelectSigningKey(context.Background())
	require.ErrorIs(t, err, ErrNoKeypair)
	assert.Contains(t, err.Error(), certID)
}

func TestSelectSigningKeySyncFailure(t *testing.T) {
	t.Parallel()

	t.Run("tolerated by default", func(t *testing.T) {
		t.Parallel()

		tool := &fakeTool{
			syncErr:  errors.New("sync refused"),
			certs:    []CertificateRecord{{ID: certID, Alias: "corp_codesign", Status: "ACTIVE"}},
			keypairs: []KeypairRecord{{Alias: "key_alpha", CertificateID: certID}},
		}
		client := newTestClient(t, WithSigningTool(tool))

		selection, err := client.SelectSigningKey(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "key_alpha", selection.KeypairAlias)
	})

	t.Run("terminal in strict mode", func(t *testing.T) {
		t.Parallel()

		tool := &fakeTool{syncErr: errors.New("sync refused")}
		client := newTestClient(t, WithSigningTool(tool), WithStrict(true))

		_, err := client.SelectSigningKey(context.Background())
		require.ErrorContains(t, err, "sync refused")
		assert.NotContains(t, tool.calls, "cert-list")
	})
}

func TestCertificateRecordActive(t *testing.T) {
	t.Parallel()

	assert.True(t, CertificateRecord{Status: "ACTIVE"}.Active())
	assert.False(t, CertificateRecord{Status: "EXPIRED"}.Active())
	assert.False(t, CertificateRecord{Status: "active"}.Active())
}
