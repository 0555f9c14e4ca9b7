package runner

import (
	"os"

	"github.com/ethereum/go-ethereum/log"
	"golang.org/x/mod/semver"

	"github.com/1552980358/kotlin-native/toolchain"
)

const (
	// LibraryPathVar is the direct library-search-path variable for device
	// and desktop targets.
	LibraryPathVar = "DYLD_LIBRARY_PATH"
	// SimulatorLibraryPathVar routes the same override through the
	// simulator-control layer for simulator targets.
	SimulatorLibraryPathVar = "SIMCTL_CHILD_DYLD_LIBRARY_PATH"

	// DefaultMinManagedHostOS is the first macOS version shipping the
	// native runtime libraries system-wide; at or above it the override is
	// unnecessary and omitted. Kept configurable because the intent (do not
	// override a path the OS manages) needs revisiting per OS release.
	DefaultMinManagedHostOS = "10.14.4"
)

// EnvPolicy decides when the runtime library-path override is omitted.
type EnvPolicy struct {
	MinManagedHostOS string
}

// NewEnvPolicy creates an EnvPolicy, defaulting the threshold.
func NewEnvPolicy(minManagedHostOS string) *EnvPolicy {
	if minManagedHostOS == "" {
		minManagedHostOS = DefaultMinManagedHostOS
	}
	return &EnvPolicy{MinManagedHostOS: minManagedHostOS}
}

// hostManagesRuntime reports whether the host OS ships the runtime
// libraries itself, making the library-path override redundant.
func (p *EnvPolicy) hostManagesRuntime(hostVersion string) bool {
	return semver.Compare("v"+hostVersion, "v"+p.MinManagedHostOS) >= 0
}

// Delta returns the environment override for running a test executable on
// target: exactly one library-search-path variable pointing at the
// target-resolved runtime library directory. The variable name is the
// simulator-indirected one for simulator targets and the direct one
// otherwise. For macOS targets on a sufficiently new host the delta is
// empty by policy, not by accident.
func (p *EnvPolicy) Delta(resolver MetadataResolver, target toolchain.Target, logger log.Logger) (map[string]string, error) {
	meta, err := resolver.Resolve(target)
	if err != nil {
		return nil, err
	}

	if meta.Family == toolchain.FamilyMacos {
		host, err := resolver.HostOSVersion()
		if err != nil {
			return nil, err
		}
		if p.hostManagesRuntime(host) {
			logger.Debug("Host OS manages runtime libraries, omitting library path override",
				"hostVersion", host, "threshold", p.MinManagedHostOS)
			return map[string]string{}, nil
		}
	}

	key := LibraryPathVar
	if meta.Simulator {
		key = SimulatorLibraryPathVar
	}
	return map[string]string{key: meta.RuntimeLibDir}, nil
}

// runtimeEnv merges the target's environment delta over the inherited
// environment, producing the full environment for the spawned executable.
func runtimeEnv(resolver MetadataResolver, target toolchain.Target, policy *EnvPolicy, logger log.Logger) ([]string, error) {
	delta, err := policy.Delta(resolver, target, logger)
	if err != nil {
		return nil, err
	}
	env := os.Environ()
	for k, v := range delta {
		env = append(env, k+"="+v)
	}
	return env, nil
}
