// Package fwtest builds test executables against prebuilt Kotlin/Native
// framework bundles, runs them on a resolved target, and reports pass/fail.
package fwtest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/1552980358/kotlin-native/bitcode"
	"github.com/1552980358/kotlin-native/builder"
	"github.com/1552980358/kotlin-native/frameworks"
	"github.com/1552980358/kotlin-native/logging"
	"github.com/1552980358/kotlin-native/metrics"
	"github.com/1552980358/kotlin-native/proc"
	"github.com/1552980358/kotlin-native/registry"
	"github.com/1552980358/kotlin-native/runner"
	"github.com/1552980358/kotlin-native/toolchain"
	"github.com/1552980358/kotlin-native/types"
)

// Harness wires the registry, builder, and execution drivers together and
// runs every declared test against the configured target.
type Harness struct {
	config    *Config
	version   string
	registry  *registry.Registry
	resolver  *toolchain.Resolver
	proc      proc.Runner
	builder   *builder.Builder
	scheduler Scheduler
	result    *types.RunSummary

	shutdownCallback func(error) // Callback to signal application shutdown
}

// New creates a Harness from config. All collaborators are constructed here
// so a misconfigured run fails before anything is spawned.
func New(ctx context.Context, config *Config, version string, shutdownCallback func(error)) (*Harness, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}

	config.Log.Debug("Creating harness with config",
		"manifest", config.Manifest,
		"outputRoot", config.OutputRoot,
		"target", config.Target,
		"runOnce", config.RunOnce)

	reg, err := registry.NewRegistry(registry.Config{
		Log:          config.Log,
		ManifestFile: config.Manifest,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create registry: %w", err)
	}

	procRunner := proc.NewRunner(config.Log)
	provider, err := toolchain.NewXcodeProvider(procRunner)
	if err != nil {
		return nil, fmt.Errorf("failed to create toolchain provider: %w", err)
	}
	resolver, err := toolchain.NewResolver(toolchain.ResolverConfig{
		Provider: provider,
		Log:      config.Log,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create resolver: %w", err)
	}
	validator, err := bitcode.NewValidator(bitcode.Config{
		Resolver: resolver,
		Proc:     procRunner,
		Log:      config.Log,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bitcode validator: %w", err)
	}
	coordinator, err := frameworks.NewCoordinator(frameworks.Config{
		Validator:    validator,
		Proc:         procRunner,
		Log:          config.Log,
		CodesignTool: config.CodesignTool,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create framework coordinator: %w", err)
	}
	bld, err := builder.NewBuilder(builder.Config{
		Coordinator: coordinator,
		Resolver:    resolver,
		Proc:        procRunner,
		Log:         config.Log,
		Compiler:    config.Compiler,
		HarnessMain: config.HarnessMain,
		OutputRoot:  config.OutputRoot,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create builder: %w", err)
	}

	h := &Harness{
		config:           config,
		version:          version,
		registry:         reg,
		resolver:         resolver,
		proc:             procRunner,
		builder:          bld,
		scheduler:        NewDefaultScheduler(config.RunInterval, config.RunOnce, config.Log),
		shutdownCallback: shutdownCallback,
	}
	h.scheduler.RegisterCallback(h.runTests)
	config.Log.Info("harness.New: created registry and builder", "tests", len(reg.GetTests()))
	return h, nil
}

// Start runs the declared tests, once or periodically per configuration.
func (h *Harness) Start(ctx context.Context) error {
	if h.config.RunOnce {
		h.config.Log.Info("Starting fwtest in run-once mode", "target", h.config.Target)
	} else {
		h.config.Log.Info("Starting fwtest in continuous mode", "interval", h.config.RunInterval)
	}

	if err := h.scheduler.Start(ctx); err != nil {
		h.config.Log.Error("Runtime error running tests", "error", err)
		return NewRuntimeError(err)
	}

	if h.config.RunOnce {
		h.config.Log.Info("Tests completed, exiting (run-once mode)")
		if h.result != nil && h.result.Status == types.RunStatusFail {
			return NewTestFailureError(h.result.String())
		}
		if h.shutdownCallback != nil {
			go func() {
				h.shutdownCallback(nil)
			}()
		}
	}
	return nil
}

// Stop stops the harness's periodic scheduling.
func (h *Harness) Stop(ctx context.Context) error {
	h.config.Log.Info("Stopping fwtest")
	return h.scheduler.Stop()
}

// Stopped returns true if the harness is stopped.
func (h *Harness) Stopped() bool {
	return h.scheduler.Stopped()
}

// WaitForShutdown blocks until all goroutines have terminated.
func (h *Harness) WaitForShutdown(ctx context.Context) error {
	return h.scheduler.WaitForShutdown(ctx)
}

// Result returns the most recent run summary.
func (h *Harness) Result() *types.RunSummary {
	return h.result
}

// runTests builds and executes every declared test sequentially. Fatal
// errors (compiler, signer, validator, launch) abort the whole invocation;
// a failing test binary is recorded and the remaining tests still run.
func (h *Harness) runTests() error {
	runID := uuid.New().String()
	h.config.Log.Info("Running all tests...", "run_id", runID, "target", h.config.Target)

	fileLogger, err := logging.NewFileLogger(h.config.LogDir, runID)
	if err != nil {
		return err
	}

	summary := &types.RunSummary{
		RunID:  runID,
		Status: types.RunStatusPass,
	}
	start := time.Now()

	for _, test := range h.registry.GetTests() {
		test := test
		drv, err := runner.NewDriver(runner.Config{
			RunConfig:        &test,
			Target:           h.config.Target,
			Builder:          h.builder,
			Resolver:         h.resolver,
			Proc:             h.proc,
			Log:              h.config.Log,
			OutputRoot:       h.config.OutputRoot,
			MinManagedHostOS: h.config.MinManagedHostOS,
		})
		if err != nil {
			return err
		}
		res, err := drv.Run()
		if err != nil {
			return err
		}
		summary.AddResult(res)
		metrics.RecordTestRun(string(h.config.Target), runID, res.Name, res.Status)
		if err := fileLogger.LogResult(res); err != nil {
			h.config.Log.Error("Failed to write test log", "test", res.Name, "error", err)
		}
	}
	summary.Duration = time.Since(start)
	h.result = summary

	h.printResultsTable(summary)
	fmt.Println(summary.String())
	if err := fileLogger.Complete(summary); err != nil {
		h.config.Log.Error("Failed to write run summary", "error", err)
	}
	metrics.RecordHarnessRun(
		string(h.config.Target),
		runID,
		string(summary.Status),
		summary.Stats.Total,
		summary.Stats.Passed,
		summary.Stats.Failed,
		summary.Duration,
	)
	h.config.Log.Info("Test run completed", "run_id", runID, "status", summary.Status)
	return nil
}
