package smctl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/signet/core"
)

// fakeRunner records invocations and replays canned results per subcommand.
type fakeRunner struct {
	calls   [][]string
	envs    [][]string
	outputs map[string][]byte
	errs    map[string]error
}

func (f *fakeRunner) Run(_ context.Context, env []string, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	f.envs = append(f.envs, env)
	if len(args) == 0 {
		return nil, nil
	}
	return f.outputs[args[0]], f.errs[args[0]]
}

func (f *fakeRunner) LookPath(name string) (string, error) {
	return "/opt/sm/" + name, nil
}

func TestToolSign(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	tool := New(runner, WithCommand("/opt/sm/smctl"), WithEnv([]string{"SM_API_KEY=k"}))

	err := tool.Sign(context.Background(), "prod_key", `C:\a.exe`)
	require.NoError(t, err)

	require.Len(t, runner.calls, 1)
	assert.Equal(t, []string{"/opt/sm/smctl", "sign", "--keypair-alias", "prod_key", "--input", `C:\a.exe`}, runner.calls[0])
	assert.Equal(t, []string{"SM_API_KEY=k"}, runner.envs[0])
}

func TestToolSignFailure(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{
		errs: map[string]error{
			"sign": &core.CommandError{Name: "smctl", ExitCode: 1, Output: []byte("keypair not authorized")},
		},
	}
	tool := New(runner)

	err := tool.Sign(context.Background(), "prod_key", "app.exe")
	require.ErrorIs(t, err, core.ErrSignFailed)
	assert.Contains(t, err.Error(), "app.exe")
	assert.Contains(t, err.Error(), "keypair not authorized")
}

func TestToolCertificates(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{
		outputs: map[string][]byte{"cert-list": []byte(certListSample)},
	}
	tool := New(runner)

	records, err := tool.Certificates(context.Background())
	require.NoError(t, err)

	require.Len(t, records, 3)
	assert.Equal(t, "6d29b16a-7a05-4442-bac4-d4ae1b714a38", records[0].ID)
	assert.Equal(t, [][]string{{"smctl", "cert-list"}}, runner.calls)
}

func TestToolKeypairs(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{
		outputs: map[string][]byte{"keypair-list": []byte(keypairListSample)},
	}
	tool := New(runner)

	records, err := tool.Keypairs(context.Background())
	require.NoError(t, err)

	assert.Len(t, records, 4)
	assert.Equal(t, [][]string{{"smctl", "keypair-list"}}, runner.calls)
}

func TestToolSyncCertificates(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	tool := New(runner)

	require.NoError(t, tool.SyncCertificates(context.Background()))
	assert.Equal(t, [][]string{{"smctl", "cert-sync"}}, runner.calls)
}
