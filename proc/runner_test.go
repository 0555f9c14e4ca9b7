package proc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCapturesOutputIndependently(t *testing.T) {
	r := NewRunner(nil)

	res, err := r.Run("/bin/sh", []string{"-c", "echo to-stdout; echo to-stderr 1>&2"}, t.TempDir(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "to-stdout\n", res.Stdout)
	assert.Equal(t, "to-stderr\n", res.Stderr)
}

func TestRunReportsExitCode(t *testing.T) {
	r := NewRunner(nil)

	res, err := r.Run("/bin/sh", []string{"-c", "exit 3"}, "", nil)
	require.NoError(t, err, "a non-zero exit is not a launch failure")
	assert.Equal(t, 3, res.ExitCode)
}

func TestRunAppliesWorkingDirAndEnv(t *testing.T) {
	r := NewRunner(nil)
	dir := t.TempDir()

	res, err := r.Run("/bin/sh", []string{"-c", "pwd; printf '%s' \"$FWTEST_PROBE\""}, dir, []string{"FWTEST_PROBE=probe-value"})
	require.NoError(t, err)
	assert.Equal(t, dir+"\nprobe-value", res.Stdout)
}

func TestRunEnvOverrideIsComplete(t *testing.T) {
	t.Setenv("FWTEST_INHERITED", "should-not-leak")
	r := NewRunner(nil)

	res, err := r.Run("/bin/sh", []string{"-c", "printf '%s' \"$FWTEST_INHERITED\""}, "", []string{"PATH=/usr/bin:/bin"})
	require.NoError(t, err)
	assert.Empty(t, res.Stdout, "explicit env must replace the inherited environment wholesale")
}

func TestRunMissingExecutable(t *testing.T) {
	r := NewRunner(nil)

	res, err := r.Run("/nonexistent/fwtest-binary", nil, "", nil)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, IsLaunchError(err))
}

func TestToolFailureCarriesOutput(t *testing.T) {
	err := NewToolFailure("swiftc", []string{"-o", "testExec"}, &Result{
		Stdout:   "compiling",
		Stderr:   "error: something broke",
		ExitCode: 1,
	})
	assert.True(t, IsToolFailure(err))
	assert.Contains(t, err.Error(), "exited with code 1")
	assert.Contains(t, err.Error(), "compiling")
	assert.Contains(t, err.Error(), "error: something broke")
}
