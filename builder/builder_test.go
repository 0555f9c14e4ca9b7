package builder

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1552980358/kotlin-native/proc"
	"github.com/1552980358/kotlin-native/toolchain"
	"github.com/1552980358/kotlin-native/types"
)

type fakeCoordinator struct {
	calls int
	err   error
}

func (c *fakeCoordinator) Coordinate(cfg *types.TestRunConfig, target toolchain.Target, outputRoot string) error {
	c.calls++
	return c.err
}

type fakeResolver struct{}

func (r *fakeResolver) Resolve(target toolchain.Target) (*toolchain.PlatformMetadata, error) {
	return &toolchain.PlatformMetadata{
		Target:  target,
		SDKName: "macosx",
		SDKPath: "/sdks/macosx",
		Triple:  "x86_64-apple-macos10.13",
	}, nil
}

type runnerCall struct {
	path string
	args []string
	dir  string
}

type fakeRunner struct {
	calls    []runnerCall
	exitCode int
	stderr   string
}

func (f *fakeRunner) Run(path string, args []string, dir string, env []string) (*proc.Result, error) {
	f.calls = append(f.calls, runnerCall{path, args, dir})
	return &proc.Result{Stderr: f.stderr, ExitCode: f.exitCode}, nil
}

func newTestBuilder(t *testing.T, coordinator FrameworkCoordinator, runner proc.Runner, outputRoot string) *Builder {
	t.Helper()
	b, err := NewBuilder(Config{
		Coordinator: coordinator,
		Resolver:    &fakeResolver{},
		Proc:        runner,
		HarnessMain: "/harness/main.swift",
		OutputRoot:  outputRoot,
	})
	require.NoError(t, err)
	return b
}

func testRunConfig(dir string) *types.TestRunConfig {
	return &types.TestRunConfig{
		Name:       "values",
		Sources:    []string{filepath.Join(dir, "valuesTests.swift")},
		Frameworks: []types.FrameworkDescriptor{{Name: "Kt", Artifact: "Kt"}},
	}
}

func TestBuildProducesDeterministicExecutablePath(t *testing.T) {
	out := t.TempDir()
	coordinator := &fakeCoordinator{}
	runner := &fakeRunner{}
	b := newTestBuilder(t, coordinator, runner, out)

	exe, err := b.Build(testRunConfig(out), toolchain.MacosX64)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "values", ExecutableName), exe)
	assert.Equal(t, 1, coordinator.calls)
}

func TestBuildWritesStubBeforeCompiling(t *testing.T) {
	out := t.TempDir()
	runner := &fakeRunner{}
	b := newTestBuilder(t, &fakeCoordinator{}, runner, out)

	_, err := b.Build(testRunConfig(out), toolchain.MacosX64)
	require.NoError(t, err)

	stub, err := os.ReadFile(b.StubPath("values"))
	require.NoError(t, err)
	assert.Contains(t, string(stub), "ValuesTests()")
}

func TestBuildCompileInvocation(t *testing.T) {
	out := t.TempDir()
	runner := &fakeRunner{}
	b := newTestBuilder(t, &fakeCoordinator{}, runner, out)
	cfg := testRunConfig(out)

	_, err := b.Build(cfg, toolchain.MacosX64)
	require.NoError(t, err)

	require.Len(t, runner.calls, 1)
	call := runner.calls[0]
	assert.Equal(t, DefaultCompiler, call.path)
	assert.Equal(t, out, call.dir)

	args := call.args
	// Sources first: user tests, generated stub, fixed harness entry point.
	assert.Equal(t, cfg.Sources[0], args[0])
	assert.Equal(t, b.StubPath("values"), args[1])
	assert.Equal(t, "/harness/main.swift", args[2])

	assert.Contains(t, args, "-warnings-as-errors")
	assertFlagValue(t, args, "-o", filepath.Join(out, "values", ExecutableName))
	assertFlagValue(t, args, "-sdk", "/sdks/macosx")
	assertFlagValue(t, args, "-target", "x86_64-apple-macos10.13")
	assertFlagValue(t, args, "-F", filepath.Join(out, "values", "macos_x64"))
	// Runtime framework lookup must stay relative to the executable.
	assert.Contains(t, args, filepath.Join("@executable_path", "macos_x64"))
}

func TestBuildCompilerFailureIsFatal(t *testing.T) {
	out := t.TempDir()
	runner := &fakeRunner{exitCode: 1, stderr: "error: use of unresolved identifier"}
	b := newTestBuilder(t, &fakeCoordinator{}, runner, out)

	exe, err := b.Build(testRunConfig(out), toolchain.MacosX64)
	require.Error(t, err)
	assert.Empty(t, exe)
	assert.True(t, proc.IsToolFailure(err))
	assert.Contains(t, err.Error(), "unresolved identifier")
}

func TestBuildCoordinatorFailureSkipsCompilation(t *testing.T) {
	out := t.TempDir()
	coordinator := &fakeCoordinator{err: proc.NewToolFailure("codesign", nil, &proc.Result{ExitCode: 1})}
	runner := &fakeRunner{}
	b := newTestBuilder(t, coordinator, runner, out)

	_, err := b.Build(testRunConfig(out), toolchain.MacosX64)
	require.Error(t, err)
	assert.Empty(t, runner.calls, "compilation must not start after a coordinator failure")
	assert.NoFileExists(t, b.StubPath("values"))
}

func assertFlagValue(t *testing.T, args []string, flag, want string) {
	t.Helper()
	for i, arg := range args {
		if arg == flag {
			require.Less(t, i+1, len(args), "flag %s has no value", flag)
			assert.Equal(t, want, args[i+1])
			return
		}
	}
	t.Fatalf("flag %s not found in %v", flag, args)
}
