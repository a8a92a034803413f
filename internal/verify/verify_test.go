package verify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/signet/core"
)

type fakeRunner struct {
	lookPathErr error
	runOut      []byte
	runErr      error
	calls       [][]string
}

func (f *fakeRunner) Run(_ context.Context, _ []string, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	return f.runOut, f.runErr
}

func (f *fakeRunner) LookPath(name string) (string, error) {
	if f.lookPathErr != nil {
		return "", f.lookPathErr
	}
	return "/usr/bin/" + name, nil
}

func TestVerifyOsslsigncodeArguments(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{runOut: []byte("Signature verification: ok\n")}
	tool := New(runner, WithCommand("osslsigncode"))

	err := tool.Verify(context.Background(), "dist/app.exe")
	require.NoError(t, err)

	require.Len(t, runner.calls, 1)
	assert.Equal(t, []string{"/usr/bin/osslsigncode", "verify", "dist/app.exe"}, runner.calls[0])
}

func TestVerifySigntoolArguments(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	tool := New(runner, WithCommand("signtool"))

	err := tool.Verify(context.Background(), `C:\dist\app.exe`)
	require.NoError(t, err)

	require.Len(t, runner.calls, 1)
	assert.Equal(t, []string{"/usr/bin/signtool", "verify", "/v", "/pa", `C:\dist\app.exe`}, runner.calls[0])
}

func TestVerifyFailureIncludesOutput(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{
		runErr: &core.CommandError{Name: "osslsigncode", ExitCode: 1, Output: []byte("MISMATCH")},
	}
	tool := New(runner, WithCommand("osslsigncode"))

	err := tool.Verify(context.Background(), "dist/app.exe")
	require.ErrorIs(t, err, core.ErrVerifyFailed)
	assert.Contains(t, err.Error(), "dist/app.exe")
	assert.Contains(t, err.Error(), "MISMATCH")
}

func TestVerifyToolMissing(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{lookPathErr: core.ErrToolNotFound}
	tool := New(runner)

	err := tool.Verify(context.Background(), "dist/app.exe")
	require.ErrorIs(t, err, core.ErrToolNotFound)
	assert.Empty(t, runner.calls)
}

func TestVerifyTimeoutKeepsIdentity(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{runErr: core.ErrTimeout}
	tool := New(runner, WithCommand("osslsigncode"))

	err := tool.Verify(context.Background(), "dist/app.exe")
	require.ErrorIs(t, err, core.ErrTimeout)
	assert.NotErrorIs(t, err, core.ErrVerifyFailed)
}

func TestDefaultCommand(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "signtool", defaultCommand("windows"))
	assert.Equal(t, "osslsigncode", defaultCommand("linux"))
	assert.Equal(t, "osslsigncode", defaultCommand("darwin"))
}

func TestArgumentsByBaseName(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		[]string{"verify", "/v", "/pa", "a.exe"},
		arguments(`C:\kits\signtool.exe`, "a.exe"))
	assert.Equal(t,
		[]string{"verify", "a.exe"},
		arguments("/opt/homebrew/bin/osslsigncode", "a.exe"))
}
