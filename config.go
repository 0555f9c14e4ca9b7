package fwtest

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	"github.com/1552980358/kotlin-native/flags"
	"github.com/1552980358/kotlin-native/toolchain"
)

// Config holds the application configuration
type Config struct {
	Manifest         string
	OutputRoot       string
	Target           toolchain.Target
	HarnessMain      string        // Fixed harness entry-point source
	Compiler         string        // Compiler-linker binary
	CodesignTool     string        // Code-signing tool binary
	RunInterval      time.Duration // Interval between test runs
	RunOnce          bool          // Indicates if the service should exit after one test run
	LogDir           string        // Directory to store test run logs
	MinManagedHostOS string        // Library-path override omission threshold for macOS targets
	Log              log.Logger
}

// NewConfig creates a new Config from cli context
func NewConfig(ctx *cli.Context, logger log.Logger) (*Config, error) {
	if err := flags.CheckRequired(ctx); err != nil {
		return nil, fmt.Errorf("missing required flags: %w", err)
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	manifest, err := filepath.Abs(ctx.String(flags.Manifest.Name))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for manifest: %w", err)
	}
	outputRoot, err := filepath.Abs(ctx.String(flags.OutputRoot.Name))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for output root: %w", err)
	}
	logDir, err := filepath.Abs(ctx.String(flags.LogDir.Name))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for log directory: %w", err)
	}

	target, err := toolchain.ParseTarget(ctx.String(flags.TargetFlag.Name))
	if err != nil {
		return nil, err
	}

	// The harness entry point defaults to main.swift next to the manifest.
	harnessMain := ctx.String(flags.HarnessMain.Name)
	if harnessMain == "" {
		harnessMain = filepath.Join(filepath.Dir(manifest), "main.swift")
	} else if harnessMain, err = filepath.Abs(harnessMain); err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for harness entry point: %w", err)
	}

	runInterval := ctx.Duration(flags.RunInterval.Name)
	runOnce := runInterval == 0

	return &Config{
		Manifest:         manifest,
		OutputRoot:       outputRoot,
		Target:           target,
		HarnessMain:      harnessMain,
		Compiler:         ctx.String(flags.Compiler.Name),
		CodesignTool:     ctx.String(flags.CodesignTool.Name),
		RunInterval:      runInterval,
		RunOnce:          runOnce,
		LogDir:           logDir,
		MinManagedHostOS: ctx.String(flags.MinManagedHostOS.Name),
		Log:              logger,
	}, nil
}
