package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	fwtest "github.com/1552980358/kotlin-native"
	"github.com/1552980358/kotlin-native/exitcodes"
	"github.com/1552980358/kotlin-native/flags"
	"github.com/1552980358/kotlin-native/service"
)

var (
	Version   = "v0.1.0"
	GitCommit = ""
	GitDate   = ""
)

func main() {
	app := cli.NewApp()
	app.Version = fmt.Sprintf("%s-%s-%s", Version, GitCommit, GitDate)
	app.Name = "fwtest"
	app.Usage = "Kotlin/Native framework test harness"
	app.Description = "fwtest builds and runs Swift test executables against prebuilt Kotlin/Native framework bundles"
	app.Flags = flags.Flags
	app.Action = run
	app.ExitErrHandler = func(c *cli.Context, err error) {
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			cli.HandleExitCoder(exitErr)
		} else if err != nil {
			if fwtest.IsRuntimeError(err) {
				cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.RuntimeErr))
			} else {
				// Test failures and unspecified errors both exit 1.
				cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.TestFailure))
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start healthz/metrics servers
	svc := service.New(app.Version)
	svc.Start(ctx)
	defer svc.Shutdown()

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Crit("Application failed", "message", err)
	}
}

func run(ctx *cli.Context) error {
	logger := newLogger(ctx.String(flags.LogLevel.Name))
	log.SetDefault(logger)

	cfg, err := fwtest.NewConfig(ctx, logger)
	if err != nil {
		return fwtest.NewRuntimeError(fmt.Errorf("failed to create config: %w", err))
	}
	cfg.Log.Debug("Config",
		"manifest", cfg.Manifest,
		"outputRoot", cfg.OutputRoot,
		"target", cfg.Target)

	harness, err := fwtest.New(ctx.Context, cfg, Version, nil)
	if err != nil {
		return fwtest.NewRuntimeError(fmt.Errorf("failed to create harness: %w", err))
	}

	if err := harness.Start(ctx.Context); err != nil {
		return err
	}
	if cfg.RunOnce {
		return nil
	}

	// Continuous mode: block until interrupted.
	<-ctx.Context.Done()
	if err := harness.Stop(ctx.Context); err != nil {
		return fwtest.NewRuntimeError(err)
	}
	return harness.WaitForShutdown(context.Background())
}

func newLogger(level string) log.Logger {
	lvl := log.LevelInfo
	switch level {
	case "debug":
		lvl = log.LevelDebug
	case "warn":
		lvl = log.LevelWarn
	case "error":
		lvl = log.LevelError
	}
	return log.NewLogger(log.NewTerminalHandlerWithLevel(os.Stderr, lvl, true))
}
