package signet

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTool is an in-memory SigningTool recording every invocation.
type fakeTool struct {
	certs    []CertificateRecord
	keypairs []KeypairRecord
	syncErr  error
	certErr  error
	pairErr  error
	signErr  map[string]error
	calls    []string
}

func (f *fakeTool) SyncCertificates(context.Context) error {
	f.calls = append(f.calls, "cert-sync")
	return f.syncErr
}

func (f *fakeTool) Certificates(context.Context) ([]CertificateRecord, error) {
	f.calls = append(f.calls, "cert-list")
	return f.certs, f.certErr
}

func (f *fakeTool) Keypairs(context.Context) ([]KeypairRecord, error) {
	f.calls = append(f.calls, "keypair-list")
	return f.keypairs, f.pairErr
}

func (f *fakeTool) Sign(_ context.Context, alias, path string) error {
	f.calls = append(f.calls, "sign "+alias+" "+path)
	return f.signErr[path]
}

// fakeVerifier records verified paths and replays per-path errors.
type fakeVerifier struct {
	errs  map[string]error
	calls []string
}

func (f *fakeVerifier) Verify(_ context.Context, path string) error {
	f.calls = append(f.calls, "verify "+path)
	return f.errs[path]
}

// fakeProvisioner replays a fixed provisioning outcome.
type fakeProvisioner struct {
	status ToolStatus
	err    error
	calls  int
}

func (f *fakeProvisioner) Ensure(context.Context) (ToolStatus, error) {
	f.calls++
	return f.status, f.err
}

// fakeAudit collects recorded entries in memory.
type fakeAudit struct {
	entries []AuditEntry
}

func (f *fakeAudit) Record(_ context.Context, entry AuditEntry) error {
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeAudit) Recent(_ context.Context, limit int) ([]AuditEntry, error) {
	if limit > len(f.entries) {
		limit = len(f.entries)
	}
	out := make([]AuditEntry, 0, limit)
	for i := len(f.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.entries[i])
	}
	return out, nil
}

func (f *fakeAudit) Close() error { return nil }

// newTestClient builds a client with validated fake credentials, the staged
// certificate in a temp dir, and the audit trail disabled unless an option
// overrides it.
func newTestClient(t *testing.T, opts ...ClientOption) *Client {
	t.Helper()

	base := []ClientOption{
		WithCredentials(validCredentials()),
		WithCertificatePath(filepath.Join(t.TempDir(), "cert.p12")),
		WithAuditDisabled(),
	}
	client, err := NewClient(append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestNewClientMissingCredentials(t *testing.T) {
	t.Parallel()

	_, err := NewClient(WithCredentials(Credentials{APIKey: "key"}))
	require.ErrorIs(t, err, ErrMissingCredentials)
}

func TestNewClientInvalidCertificateBlob(t *testing.T) {
	t.Parallel()

	creds := validCredentials()
	creds.ClientCertificate = "not!!base64"

	_, err := NewClient(WithCredentials(creds), WithAuditDisabled())
	require.ErrorIs(t, err, ErrInvalidCertificate)
}

func TestClientStagesCertificate(t *testing.T) {
	t.Parallel()

	certPath := filepath.Join(t.TempDir(), "cert.p12")
	client, err := NewClient(
		WithCredentials(validCredentials()),
		WithCertificatePath(certPath),
		WithAuditDisabled(),
	)
	require.NoError(t, err)

	assert.Equal(t, certPath, client.CertificateFile())
	data, err := os.ReadFile(certPath)
	require.NoError(t, err)
	assert.Equal(t, []byte("cert"), data)

	info, err := os.Stat(certPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, client.Close())
	_, err = os.Stat(certPath)
	assert.True(t, os.IsNotExist(err), "staged certificate should be removed on Close")
}

func TestClientRetainsCertificate(t *testing.T) {
	t.Parallel()

	certPath := filepath.Join(t.TempDir(), "cert.p12")
	client, err := NewClient(
		WithCredentials(validCredentials()),
		WithCertificatePath(certPath),
		WithRetainCertificate(true),
		WithAuditDisabled(),
	)
	require.NoError(t, err)

	require.NoError(t, client.Close())
	_, err = os.Stat(certPath)
	assert.NoError(t, err, "certificate should be retained on disk")
}

func TestClientCloseIdempotent(t *testing.T) {
	t.Parallel()

	client := newTestClient(t)
	require.NoError(t, client.Close())
	require.NoError(t, client.Close())

	_, err := client.RunFiles(context.Background(), []string{"a.exe"})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestClientEnsureToolStrictInstallerFailure(t *testing.T) {
	t.Parallel()

	provisioner := &fakeProvisioner{
		status: ToolStatus{Path: "/opt/sm/smctl", Installed: true, InstallerExitCode: 1603},
	}

	loose := newTestClient(t, WithProvisioner(provisioner))
	status, err := loose.EnsureTool(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1603, status.InstallerExitCode)

	strict := newTestClient(t, WithProvisioner(provisioner), WithStrict(true))
	_, err = strict.EnsureTool(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1603")
}

func TestClientAuditTrailDisabled(t *testing.T) {
	t.Parallel()

	client := newTestClient(t)
	entries, err := client.AuditTrail(context.Background(), 10)
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestClientProvisionerFailureAborts(t *testing.T) {
	t.Parallel()

	provisioner := &fakeProvisioner{err: errors.New("download refused")}
	client := newTestClient(t,
		WithProvisioner(provisioner),
		WithSigningTool(&fakeTool{}),
		WithVerifier(&fakeVerifier{}),
	)

	_, err := client.RunFiles(context.Background(), []string{"a.exe"})
	require.ErrorContains(t, err, "download refused")
}
