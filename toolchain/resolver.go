package toolchain

import (
	"fmt"
	"path/filepath"

	"github.com/ethereum/go-ethereum/log"
)

// PlatformMetadata holds the concrete toolchain facts derived for a target.
// It is computed on demand and never cached across runs.
type PlatformMetadata struct {
	Target             Target
	Family             Family
	Simulator          bool
	SDKName            string
	SDKPath            string
	Triple             string // -target triple handed to the compiler
	MinOSVersion       string
	ToolchainRoot      string
	ToolchainBinDir    string
	AdditionalToolsDir string
	// RuntimeLibDir is the directory holding the target's runtime libraries,
	// used as the library-search-path override when running test executables.
	RuntimeLibDir string
}

// Resolver maps targets to platform metadata using an injected Provider.
type Resolver struct {
	provider Provider
	log      log.Logger
}

// ResolverConfig holds configuration for creating a Resolver.
type ResolverConfig struct {
	Provider Provider
	Log      log.Logger
}

// NewResolver creates a new Resolver.
func NewResolver(cfg ResolverConfig) (*Resolver, error) {
	if cfg.Provider == nil {
		return nil, fmt.Errorf("toolchain provider is required")
	}
	if cfg.Log == nil {
		cfg.Log = log.New()
		cfg.Log.Error("No logger provided, using default")
	}
	return &Resolver{provider: cfg.Provider, log: cfg.Log}, nil
}

// targetFacts are the static per-target mappings. Adding a target to the
// enumeration without extending this table is caught by Resolve.
type targetFacts struct {
	sdkName      string
	triple       string
	minOS        string
	runtimeKey   string // simctl platform key; empty for non-simulator targets
	swiftLibName string // subdirectory under <toolchain>/usr/lib/swift
}

func factsFor(t Target) (targetFacts, error) {
	switch t {
	case MacosX64:
		return targetFacts{"macosx", "x86_64-apple-macos10.13", "10.13", "", "macosx"}, nil
	case MacosArm64:
		return targetFacts{"macosx", "arm64-apple-macos11.0", "11.0", "", "macosx"}, nil
	case IosArm64:
		return targetFacts{"iphoneos", "arm64-apple-ios9.0", "9.0", "", "iphoneos"}, nil
	case IosX64:
		return targetFacts{"iphonesimulator", "x86_64-apple-ios9.0-simulator", "9.0", "iOS", "iphonesimulator"}, nil
	case IosSimulatorArm64:
		return targetFacts{"iphonesimulator", "arm64-apple-ios9.0-simulator", "9.0", "iOS", "iphonesimulator"}, nil
	case TvosArm64:
		return targetFacts{"appletvos", "arm64-apple-tvos9.0", "9.0", "", "appletvos"}, nil
	case TvosX64:
		return targetFacts{"appletvsimulator", "x86_64-apple-tvos9.0-simulator", "9.0", "tvOS", "appletvsimulator"}, nil
	case TvosSimulatorArm64:
		return targetFacts{"appletvsimulator", "arm64-apple-tvos9.0-simulator", "9.0", "tvOS", "appletvsimulator"}, nil
	case WatchosArm64:
		return targetFacts{"watchos", "arm64_32-apple-watchos2.0", "2.0", "", "watchos"}, nil
	case WatchosX64:
		return targetFacts{"watchsimulator", "x86_64-apple-watchos2.0-simulator", "2.0", "watchOS", "watchsimulator"}, nil
	case WatchosSimArm64:
		return targetFacts{"watchsimulator", "arm64-apple-watchos2.0-simulator", "2.0", "watchOS", "watchsimulator"}, nil
	default:
		return targetFacts{}, &UnsupportedTargetError{Target: t}
	}
}

// Resolve computes the platform metadata for a target. Unknown targets fail
// with an UnsupportedTargetError before any toolchain discovery happens.
func (r *Resolver) Resolve(target Target) (*PlatformMetadata, error) {
	facts, err := factsFor(target)
	if err != nil {
		return nil, err
	}
	family, err := target.Family()
	if err != nil {
		return nil, err
	}
	simulator, err := target.Simulator()
	if err != nil {
		return nil, err
	}

	root, err := r.provider.ToolchainRoot()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve toolchain root: %w", err)
	}
	sdkPath, err := r.provider.SDKPath(facts.sdkName)
	if err != nil {
		return nil, err
	}

	meta := &PlatformMetadata{
		Target:             target,
		Family:             family,
		Simulator:          simulator,
		SDKName:            facts.sdkName,
		SDKPath:            sdkPath,
		Triple:             facts.triple,
		MinOSVersion:       facts.minOS,
		ToolchainRoot:      root,
		ToolchainBinDir:    filepath.Join(root, "usr", "bin"),
		AdditionalToolsDir: filepath.Join(root, "usr", "lib", "bitcode"),
		RuntimeLibDir:      filepath.Join(root, "usr", "lib", "swift", facts.swiftLibName),
	}

	if simulator {
		meta.RuntimeLibDir, err = r.simulatorRuntimeLibDir(facts, root)
		if err != nil {
			return nil, err
		}
	}
	r.log.Debug("Resolved target metadata",
		"target", target,
		"sdk", meta.SDKName,
		"sdkPath", meta.SDKPath,
		"runtimeLibDir", meta.RuntimeLibDir)
	return meta, nil
}

// simulatorRuntimeLibDir prefers the installed simulator runtime bundle.
// Older toolchain installs expose no runtime metadata; those fall back to
// the toolchain's own runtime library directory for the simulator SDK.
func (r *Resolver) simulatorRuntimeLibDir(facts targetFacts, toolchainRoot string) (string, error) {
	runtimeRoot, found, err := r.provider.SimulatorRuntimeRoot(facts.runtimeKey)
	if err != nil {
		return "", err
	}
	if !found {
		// Toolchain-default fallback for installs without simulator runtime
		// metadata.
		fallback := filepath.Join(toolchainRoot, "usr", "lib", "swift", facts.swiftLibName)
		r.log.Debug("No simulator runtime metadata, falling back to toolchain runtime libraries",
			"platform", facts.runtimeKey, "dir", fallback)
		return fallback, nil
	}
	return filepath.Join(runtimeRoot, "usr", "lib", "swift"), nil
}

// HostOSVersion reports the host OS product version via the provider.
func (r *Resolver) HostOSVersion() (string, error) {
	return r.provider.HostOSVersion()
}
