package frameworks

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1552980358/kotlin-native/proc"
	"github.com/1552980358/kotlin-native/toolchain"
	"github.com/1552980358/kotlin-native/types"
)

type validateCall struct {
	binary      string
	target      toolchain.Target
	fullBitcode bool
}

type fakeValidator struct {
	calls   []validateCall
	failOn  string
	failErr error
}

func (v *fakeValidator) Validate(binary string, target toolchain.Target, fullBitcode bool) error {
	v.calls = append(v.calls, validateCall{binary, target, fullBitcode})
	if v.failOn != "" && filepath.Base(binary) == v.failOn {
		return v.failErr
	}
	return nil
}

type runnerCall struct {
	path string
	args []string
}

type fakeRunner struct {
	calls    []runnerCall
	exitCode int
}

func (f *fakeRunner) Run(path string, args []string, dir string, env []string) (*proc.Result, error) {
	f.calls = append(f.calls, runnerCall{path, args})
	return &proc.Result{ExitCode: f.exitCode}, nil
}

func newTestCoordinator(t *testing.T, validator BitcodeValidator, runner proc.Runner) *Coordinator {
	t.Helper()
	c, err := NewCoordinator(Config{Validator: validator, Proc: runner})
	require.NoError(t, err)
	return c
}

func TestArtifactPaths(t *testing.T) {
	paths := ArtifactPaths("/out", "values", toolchain.IosArm64, "Kt")
	assert.Equal(t, "/out/values/ios_arm64/Kt.framework", paths.BundleDir)
	assert.Equal(t, "/out/values/ios_arm64/Kt.framework/Kt", paths.Binary)
}

func TestCoordinateEmptyFrameworkList(t *testing.T) {
	validator := &fakeValidator{}
	runner := &fakeRunner{}
	c := newTestCoordinator(t, validator, runner)

	cfg := &types.TestRunConfig{Name: "empty", Codesign: true}
	require.NoError(t, c.Coordinate(cfg, toolchain.MacosX64, "/out"))
	assert.Empty(t, validator.calls)
	assert.Empty(t, runner.calls)
}

func TestCoordinateValidatesAndSigns(t *testing.T) {
	validator := &fakeValidator{}
	runner := &fakeRunner{}
	c := newTestCoordinator(t, validator, runner)

	cfg := &types.TestRunConfig{
		Name:        "values",
		FullBitcode: true,
		Codesign:    true,
		Frameworks: []types.FrameworkDescriptor{
			{Name: "First", Artifact: "First"},
			{Name: "Second", Artifact: "SecondKt"},
		},
	}
	require.NoError(t, c.Coordinate(cfg, toolchain.IosArm64, "/out"))

	require.Len(t, validator.calls, 2)
	assert.Equal(t, "/out/values/ios_arm64/First.framework/First", validator.calls[0].binary)
	assert.True(t, validator.calls[0].fullBitcode)
	assert.Equal(t, "/out/values/ios_arm64/SecondKt.framework/SecondKt", validator.calls[1].binary)

	require.Len(t, runner.calls, 2)
	assert.Equal(t, DefaultCodesignTool, runner.calls[0].path)
	assert.Equal(t, []string{"--verbose", "-fs", "-", "/out/values/ios_arm64/First.framework"}, runner.calls[0].args)
}

func TestCoordinateSkipsSigningWhenDisabled(t *testing.T) {
	validator := &fakeValidator{}
	runner := &fakeRunner{}
	c := newTestCoordinator(t, validator, runner)

	cfg := &types.TestRunConfig{
		Name:       "values",
		Frameworks: []types.FrameworkDescriptor{{Name: "Kt", Artifact: "Kt"}},
	}
	require.NoError(t, c.Coordinate(cfg, toolchain.MacosX64, "/out"))
	assert.Len(t, validator.calls, 1)
	assert.Empty(t, runner.calls)
}

func TestCoordinateAbortsOnFirstFailure(t *testing.T) {
	failure := proc.NewToolFailure("bitcode-build-tool", nil, &proc.Result{ExitCode: 1})
	validator := &fakeValidator{failOn: "Bad", failErr: failure}
	runner := &fakeRunner{}
	c := newTestCoordinator(t, validator, runner)

	cfg := &types.TestRunConfig{
		Name:     "values",
		Codesign: true,
		Frameworks: []types.FrameworkDescriptor{
			{Name: "Bad", Artifact: "Bad"},
			{Name: "Never", Artifact: "Never"},
		},
	}
	err := c.Coordinate(cfg, toolchain.IosArm64, "/out")
	require.Error(t, err)
	assert.True(t, proc.IsToolFailure(err))
	assert.Len(t, validator.calls, 1, "remaining frameworks must not be processed")
	assert.Empty(t, runner.calls, "the failing framework must not be signed")
}

func TestCoordinateSigningFailureIsFatal(t *testing.T) {
	validator := &fakeValidator{}
	runner := &fakeRunner{exitCode: 1}
	c := newTestCoordinator(t, validator, runner)

	cfg := &types.TestRunConfig{
		Name:     "values",
		Codesign: true,
		Frameworks: []types.FrameworkDescriptor{
			{Name: "Kt", Artifact: "Kt"},
			{Name: "Never", Artifact: "Never"},
		},
	}
	err := c.Coordinate(cfg, toolchain.MacosX64, "/out")
	require.Error(t, err)
	assert.True(t, proc.IsToolFailure(err))
	assert.Len(t, runner.calls, 1)
}
