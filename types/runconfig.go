package types

// FrameworkDescriptor describes one prebuilt framework bundle a test
// executable links against. Descriptors come from the test manifest and are
// immutable once loaded; their declaration order is the link order.
type FrameworkDescriptor struct {
	// Name of the framework.
	Name string `yaml:"name"`
	// Sources the framework was built from, in order. The harness never
	// compiles these; they document the externally produced bundle.
	Sources []string `yaml:"sources"`
	// EmbedBitcode marks the framework as built with embedded bitcode.
	EmbedBitcode bool `yaml:"bitcode,omitempty"`
	// Artifact is the bundle name on disk; defaults to Name.
	Artifact string `yaml:"artifact,omitempty"`
	// Library names an optional interop library dependency.
	Library string `yaml:"library,omitempty"`
	// Options are extra compiler options the framework was built with.
	Options []string `yaml:"options,omitempty"`
}

// ArtifactName returns the bundle name on disk.
func (d *FrameworkDescriptor) ArtifactName() string {
	if d.Artifact != "" {
		return d.Artifact
	}
	return d.Name
}

// TestRunConfig declares one test: the Swift test sources to compile and the
// framework bundles to link and run against. Constructed once per declared
// test and never mutated during execution.
type TestRunConfig struct {
	// Name of the test. Also the per-run output subdirectory; two runs must
	// never share one.
	Name string `yaml:"name"`
	// Sources are the Swift test source files, in declaration order. The
	// order governs test execution order within the run.
	Sources []string `yaml:"sources"`
	// Frameworks are the framework bundles the executable links against.
	Frameworks []FrameworkDescriptor `yaml:"frameworks"`
	// FullBitcode requests bitcode validation of the linked frameworks.
	FullBitcode bool `yaml:"fullBitcode,omitempty"`
	// Codesign requests codesigning of every framework bundle.
	Codesign bool `yaml:"codesign,omitempty"`
}
