// Package builder compiles the final test executable from user test
// sources, the generated provider stub, and the fixed harness entry point,
// linked against the run's framework bundles.
package builder

import (
	"fmt"
	"path/filepath"

	"github.com/ethereum/go-ethereum/log"

	"github.com/1552980358/kotlin-native/frameworks"
	"github.com/1552980358/kotlin-native/proc"
	"github.com/1552980358/kotlin-native/stubgen"
	"github.com/1552980358/kotlin-native/toolchain"
	"github.com/1552980358/kotlin-native/types"
)

const (
	// ExecutableName is the fixed file name of the built test executable
	// under the run directory.
	ExecutableName = "testExec"
	// DefaultCompiler is the compiler-linker invoked to produce it.
	DefaultCompiler = "swiftc"
)

// FrameworkCoordinator prepares the run's framework bundles before linking.
type FrameworkCoordinator interface {
	Coordinate(cfg *types.TestRunConfig, target toolchain.Target, outputRoot string) error
}

// MetadataResolver is the slice of the toolchain resolver the builder needs.
type MetadataResolver interface {
	Resolve(target toolchain.Target) (*toolchain.PlatformMetadata, error)
}

// Builder produces the test executable for one run.
type Builder struct {
	coordinator FrameworkCoordinator
	resolver    MetadataResolver
	proc        proc.Runner
	log         log.Logger
	compiler    string
	harnessMain string
	outputRoot  string
}

// Config holds configuration for creating a Builder.
type Config struct {
	Coordinator FrameworkCoordinator
	Resolver    MetadataResolver
	Proc        proc.Runner
	Log         log.Logger
	Compiler    string // defaults to DefaultCompiler
	HarnessMain string // fixed harness entry-point source
	OutputRoot  string
}

// NewBuilder creates a new Builder.
func NewBuilder(cfg Config) (*Builder, error) {
	if cfg.Coordinator == nil {
		return nil, fmt.Errorf("framework coordinator is required")
	}
	if cfg.Resolver == nil {
		return nil, fmt.Errorf("resolver is required")
	}
	if cfg.Proc == nil {
		return nil, fmt.Errorf("process runner is required")
	}
	if cfg.HarnessMain == "" {
		return nil, fmt.Errorf("harness entry-point source is required")
	}
	if cfg.OutputRoot == "" {
		return nil, fmt.Errorf("output root is required")
	}
	if cfg.Log == nil {
		cfg.Log = log.New()
		cfg.Log.Error("No logger provided, using default")
	}
	if cfg.Compiler == "" {
		cfg.Compiler = DefaultCompiler
	}
	return &Builder{
		coordinator: cfg.Coordinator,
		resolver:    cfg.Resolver,
		proc:        cfg.Proc,
		log:         cfg.Log,
		compiler:    cfg.Compiler,
		harnessMain: cfg.HarnessMain,
		outputRoot:  cfg.OutputRoot,
	}, nil
}

// ExecutablePath returns the deterministic location of the built executable.
func (b *Builder) ExecutablePath(testName string) string {
	return filepath.Join(b.outputRoot, testName, ExecutableName)
}

// StubPath returns the location of the generated provider stub.
func (b *Builder) StubPath(testName string) string {
	return filepath.Join(b.outputRoot, testName, stubgen.FileName)
}

// Build produces the test executable for cfg on target. Steps are strictly
// ordered: coordinate frameworks, write the provider stub, then one
// compile-and-link invocation. A non-zero compiler exit aborts the run
// before any execution attempt.
func (b *Builder) Build(cfg *types.TestRunConfig, target toolchain.Target) (string, error) {
	if err := b.coordinator.Coordinate(cfg, target, b.outputRoot); err != nil {
		return "", err
	}

	stubPath := b.StubPath(cfg.Name)
	if err := stubgen.Write(stubPath, cfg.Sources); err != nil {
		return "", err
	}

	meta, err := b.resolver.Resolve(target)
	if err != nil {
		return "", err
	}

	exePath := b.ExecutablePath(cfg.Name)
	args := b.compileArgs(cfg, target, meta, stubPath, exePath)
	b.log.Info("Building test executable", "test", cfg.Name, "target", target, "output", exePath)
	res, err := b.proc.Run(b.compiler, args, b.outputRoot, nil)
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		return "", proc.NewToolFailure(b.compiler, args, res)
	}
	return exePath, nil
}

// compileArgs assembles the single compile-and-link invocation.
func (b *Builder) compileArgs(cfg *types.TestRunConfig, target toolchain.Target, meta *toolchain.PlatformMetadata, stubPath, exePath string) []string {
	searchDir := frameworks.SearchDir(b.outputRoot, cfg.Name, target)
	// Runtime framework lookup is anchored to the executable's own
	// location, so the run directory stays relocatable.
	rpath := filepath.Join("@executable_path", string(target))

	args := make([]string, 0, len(cfg.Sources)+16)
	args = append(args, cfg.Sources...)
	args = append(args, stubPath, b.harnessMain)
	args = append(args,
		"-o", exePath,
		"-sdk", meta.SDKPath,
		"-target", meta.Triple,
		"-F", searchDir,
		"-Xlinker", "-rpath", "-Xlinker", rpath,
		"-warnings-as-errors",
	)
	return args
}
