// Package runner executes built test binaries and turns their exit status
// into reported pass/fail results.
package runner

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/log"

	"github.com/1552980358/kotlin-native/proc"
	"github.com/1552980358/kotlin-native/toolchain"
	"github.com/1552980358/kotlin-native/types"
)

// State tracks a driver through its lifecycle. Transitions only ever move
// forward: NotBuilt -> Built -> Ran -> {Passed, Failed}.
type State string

const (
	StateNotBuilt State = "not_built"
	StateBuilt    State = "built"
	StateRan      State = "ran"
	StatePassed   State = "passed"
	StateFailed   State = "failed"
)

// ExecutableBuilder builds a run's test executable.
type ExecutableBuilder interface {
	Build(cfg *types.TestRunConfig, target toolchain.Target) (string, error)
}

// MetadataResolver is the slice of the toolchain resolver the driver needs.
type MetadataResolver interface {
	Resolve(target toolchain.Target) (*toolchain.PlatformMetadata, error)
	HostOSVersion() (string, error)
}

// Driver owns the build-then-run lifecycle of a single test. Drivers are
// single use and single threaded; independent tests get independent drivers.
type Driver struct {
	cfg        *types.TestRunConfig
	target     toolchain.Target
	builder    ExecutableBuilder
	resolver   MetadataResolver
	proc       proc.Runner
	log        log.Logger
	outputRoot string
	env        *EnvPolicy

	state      State
	executable string
}

// Config holds configuration for creating a Driver.
type Config struct {
	RunConfig  *types.TestRunConfig
	Target     toolchain.Target
	Builder    ExecutableBuilder
	Resolver   MetadataResolver
	Proc       proc.Runner
	Log        log.Logger
	OutputRoot string
	// MinManagedHostOS is the host OS version at which the macOS runtime
	// libraries are managed by the OS itself and the library-path override
	// is omitted. Empty selects the default policy.
	MinManagedHostOS string
}

// NewDriver creates a new Driver in state NotBuilt.
func NewDriver(cfg Config) (*Driver, error) {
	if cfg.RunConfig == nil {
		return nil, fmt.Errorf("run config is required")
	}
	if cfg.RunConfig.Name == "" {
		return nil, fmt.Errorf("test name is required")
	}
	if cfg.Builder == nil {
		return nil, fmt.Errorf("builder is required")
	}
	if cfg.Resolver == nil {
		return nil, fmt.Errorf("resolver is required")
	}
	if cfg.Proc == nil {
		return nil, fmt.Errorf("process runner is required")
	}
	if cfg.OutputRoot == "" {
		return nil, fmt.Errorf("output root is required")
	}
	if _, err := cfg.Target.Family(); err != nil {
		return nil, err
	}
	if cfg.Log == nil {
		cfg.Log = log.New()
		cfg.Log.Error("No logger provided, using default")
	}
	return &Driver{
		cfg:        cfg.RunConfig,
		target:     cfg.Target,
		builder:    cfg.Builder,
		resolver:   cfg.Resolver,
		proc:       cfg.Proc,
		log:        cfg.Log,
		outputRoot: cfg.OutputRoot,
		env:        NewEnvPolicy(cfg.MinManagedHostOS),
		state:      StateNotBuilt,
	}, nil
}

// State returns the driver's current lifecycle state.
func (d *Driver) State() State {
	return d.state
}

// Build compiles the test executable. NotBuilt -> Built.
func (d *Driver) Build() error {
	if d.state != StateNotBuilt {
		return fmt.Errorf("cannot build from state %s", d.state)
	}
	exe, err := d.builder.Build(d.cfg, d.target)
	if err != nil {
		return err
	}
	d.executable = exe
	d.state = StateBuilt
	return nil
}

// Execute runs the built executable. Built -> Ran -> {Passed, Failed}.
// A failing test produces a Failed result carrying the captured output; it
// is reported, not treated as a harness crash.
func (d *Driver) Execute() (*types.RunResult, error) {
	if d.state != StateBuilt {
		return nil, fmt.Errorf("cannot execute from state %s", d.state)
	}
	env, err := runtimeEnv(d.resolver, d.target, d.env, d.log)
	if err != nil {
		return nil, err
	}

	d.log.Info("Running test executable", "test", d.cfg.Name, "executable", d.executable)
	start := time.Now()
	res, err := d.proc.Run(d.executable, nil, d.outputRoot, env)
	if err != nil {
		return nil, err
	}
	d.state = StateRan

	result := &types.RunResult{
		Name:       d.cfg.Name,
		Target:     string(d.target),
		Duration:   time.Since(start),
		Executable: d.executable,
		Stdout:     res.Stdout,
		Stderr:     res.Stderr,
	}
	if res.ExitCode == 0 {
		d.state = StatePassed
		result.Status = types.RunStatusPass
		return result, nil
	}
	d.state = StateFailed
	result.Status = types.RunStatusFail
	result.Error = &TestExecutionFailure{
		Executable: filepath.Base(d.executable),
		Result:     res,
	}
	return result, nil
}

// Run performs the full build-then-execute pipeline.
func (d *Driver) Run() (*types.RunResult, error) {
	if err := d.Build(); err != nil {
		return nil, err
	}
	return d.Execute()
}

// TestExecutionFailure reports a non-zero exit from the final test binary,
// with its output verbatim.
type TestExecutionFailure struct {
	Executable string
	Result     *proc.Result
}

func (e *TestExecutionFailure) Error() string {
	return fmt.Sprintf("%s exited with code %d\nstdout:\n%s\nstderr:\n%s",
		e.Executable, e.Result.ExitCode, e.Result.Stdout, e.Result.Stderr)
}

// IsTestExecutionFailure checks if the error is or wraps a TestExecutionFailure.
func IsTestExecutionFailure(err error) bool {
	var execErr *TestExecutionFailure
	return err != nil && errors.As(err, &execErr)
}
