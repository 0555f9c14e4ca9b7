package flags

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

const EnvVarPrefix = "FWTEST"

func prefixEnvVars(name string) []string {
	return []string{EnvVarPrefix + "_" + name}
}

var (
	Manifest = &cli.StringFlag{
		Name:     "manifest",
		Value:    "",
		Required: true,
		EnvVars:  prefixEnvVars("MANIFEST"),
		Usage:    "Path to the test manifest file (eg. 'tests.yaml')",
	}
	OutputRoot = &cli.StringFlag{
		Name:     "output-root",
		Value:    "",
		Required: true,
		EnvVars:  prefixEnvVars("OUTPUT_ROOT"),
		Usage:    "Directory holding the prebuilt framework bundles and receiving build outputs",
	}
	TargetFlag = &cli.StringFlag{
		Name:     "target",
		Value:    "",
		Required: true,
		EnvVars:  prefixEnvVars("TARGET"),
		Usage:    "Target to build and run for (eg. 'macos_x64', 'ios_x64')",
	}
	HarnessMain = &cli.StringFlag{
		Name:    "harness-main",
		Value:   "",
		EnvVars: prefixEnvVars("HARNESS_MAIN"),
		Usage:   "Path to the fixed harness entry-point source. Defaults to main.swift next to the manifest.",
	}
	Compiler = &cli.StringFlag{
		Name:    "compiler",
		Value:   "swiftc",
		EnvVars: prefixEnvVars("COMPILER"),
		Usage:   "Path to the compiler-linker used for the test executable",
	}
	CodesignTool = &cli.StringFlag{
		Name:    "codesign-tool",
		Value:   "codesign",
		EnvVars: prefixEnvVars("CODESIGN_TOOL"),
		Usage:   "Path to the code-signing tool",
	}
	RunInterval = &cli.DurationFlag{
		Name:    "run-interval",
		Value:   0,
		EnvVars: prefixEnvVars("RUN_INTERVAL"),
		Usage:   "Interval between test runs (e.g. '1h', '30m'). Set to 0 or omit for run-once mode.",
	}
	LogDir = &cli.StringFlag{
		Name:    "logdir",
		Value:   "logs",
		EnvVars: prefixEnvVars("LOGDIR"),
		Usage:   "Directory to store test run logs",
	}
	LogLevel = &cli.StringFlag{
		Name:    "log-level",
		Value:   "info",
		EnvVars: prefixEnvVars("LOG_LEVEL"),
		Usage:   "Log level (debug, info, warn, error)",
	}
	MinManagedHostOS = &cli.StringFlag{
		Name:    "min-managed-host-os",
		Value:   "",
		EnvVars: prefixEnvVars("MIN_MANAGED_HOST_OS"),
		Usage:   "Host OS version at which the runtime library-path override is omitted for macOS targets",
	}
)

var requiredFlags = []cli.Flag{
	Manifest,
	OutputRoot,
	TargetFlag,
}

var optionalFlags = []cli.Flag{
	HarnessMain,
	Compiler,
	CodesignTool,
	RunInterval,
	LogDir,
	LogLevel,
	MinManagedHostOS,
}

var Flags []cli.Flag

func init() {
	Flags = append(requiredFlags, optionalFlags...)
}

func CheckRequired(ctx *cli.Context) error {
	for _, f := range requiredFlags {
		if !ctx.IsSet(f.Names()[0]) {
			return fmt.Errorf("flag %s is required", f.Names()[0])
		}
	}
	return nil
}
