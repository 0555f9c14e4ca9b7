// Package registry loads and validates the test manifest.
package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ethereum/go-ethereum/log"
	"gopkg.in/yaml.v3"

	"github.com/1552980358/kotlin-native/types"
)

// Manifest is the YAML schema of a tests.yaml file.
type Manifest struct {
	Tests []types.TestRunConfig `yaml:"tests"`
}

// Registry holds the declared test runs of one manifest.
type Registry struct {
	config Config
	tests  []types.TestRunConfig
	mu     sync.RWMutex
}

// Config contains registry configuration.
type Config struct {
	Log          log.Logger
	ManifestFile string
}

// NewRegistry creates a new registry instance and loads the manifest.
func NewRegistry(cfg Config) (*Registry, error) {
	if cfg.ManifestFile == "" {
		return nil, fmt.Errorf("manifest file is required")
	}
	if cfg.Log == nil {
		cfg.Log = log.New()
		cfg.Log.Error("No logger provided, using default")
	}

	r := &Registry{config: cfg}
	if err := r.load(cfg.ManifestFile); err != nil {
		return nil, fmt.Errorf("failed to load manifest: %w", err)
	}
	cfg.Log.Debug("Registry loaded", "len(tests)", len(r.tests))
	return r, nil
}

func (r *Registry) load(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	manifest, err := loadManifest(path)
	if err != nil {
		return err
	}
	tests, err := normalize(manifest, filepath.Dir(path))
	if err != nil {
		return err
	}
	r.tests = tests
	return nil
}

// GetTests returns the declared test runs in manifest order.
func (r *Registry) GetTests() []types.TestRunConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tests
}

// GetTest returns the named test run.
func (r *Registry) GetTest(name string) (*types.TestRunConfig, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.tests {
		if r.tests[i].Name == name {
			return &r.tests[i], true
		}
	}
	return nil, false
}

func loadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest file %s: %w", path, err)
	}
	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest file %s: %w", path, err)
	}
	return &manifest, nil
}

// normalize validates the manifest and fills descriptor defaults. Source
// paths are anchored to the manifest's directory so runs do not depend on
// the harness's working directory.
func normalize(manifest *Manifest, baseDir string) ([]types.TestRunConfig, error) {
	if len(manifest.Tests) == 0 {
		return nil, fmt.Errorf("manifest declares no tests")
	}
	seen := make(map[string]bool, len(manifest.Tests))
	tests := make([]types.TestRunConfig, 0, len(manifest.Tests))
	for i, test := range manifest.Tests {
		if test.Name == "" {
			return nil, fmt.Errorf("test %d has no name", i)
		}
		if seen[test.Name] {
			// Two runs sharing a name would race on the same output
			// subdirectory.
			return nil, fmt.Errorf("duplicate test name %q", test.Name)
		}
		seen[test.Name] = true
		if len(test.Sources) == 0 {
			return nil, fmt.Errorf("test %q has no sources", test.Name)
		}
		if len(test.Frameworks) == 0 {
			return nil, fmt.Errorf("test %q declares no frameworks", test.Name)
		}
		for j := range test.Frameworks {
			fw := &test.Frameworks[j]
			if fw.Name == "" {
				return nil, fmt.Errorf("test %q framework %d has no name", test.Name, j)
			}
			if fw.Artifact == "" {
				fw.Artifact = fw.Name
			}
		}
		for j, src := range test.Sources {
			if !filepath.IsAbs(src) {
				test.Sources[j] = filepath.Join(baseDir, src)
			}
		}
		tests = append(tests, test)
	}
	return tests, nil
}
