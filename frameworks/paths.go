package frameworks

import (
	"path/filepath"

	"github.com/1552980358/kotlin-native/toolchain"
)

// Paths are the derived locations of one framework bundle. They are
// recomputed per run, never stored.
type Paths struct {
	// BundleDir is the .framework directory.
	BundleDir string
	// Binary is the framework's executable inside the bundle.
	Binary string
}

// ArtifactPaths computes the on-disk layout of a framework bundle:
// {outputRoot}/{testName}/{targetName}/{artifact}.framework/{artifact}.
func ArtifactPaths(outputRoot, testName string, target toolchain.Target, artifact string) Paths {
	bundle := filepath.Join(outputRoot, testName, string(target), artifact+".framework")
	return Paths{
		BundleDir: bundle,
		Binary:    filepath.Join(bundle, artifact),
	}
}

// SearchDir is the directory the linker searches for the run's framework
// bundles.
func SearchDir(outputRoot, testName string, target toolchain.Target) string {
	return filepath.Join(outputRoot, testName, string(target))
}
