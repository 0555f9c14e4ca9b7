// Package frameworks prepares prebuilt framework bundles for linking:
// bitcode validation and codesigning, in declaration order.
package frameworks

import (
	"fmt"

	"github.com/ethereum/go-ethereum/log"

	"github.com/1552980358/kotlin-native/proc"
	"github.com/1552980358/kotlin-native/toolchain"
	"github.com/1552980358/kotlin-native/types"
)

// DefaultCodesignTool is the codesigning tool invoked per bundle.
const DefaultCodesignTool = "codesign"

// BitcodeValidator validates a framework binary's embedded bitcode.
type BitcodeValidator interface {
	Validate(frameworkBinary string, target toolchain.Target, fullBitcode bool) error
}

// Coordinator walks a run's framework descriptors and prepares each bundle.
// The frameworks themselves are produced externally; the coordinator only
// consumes their output.
type Coordinator struct {
	validator    BitcodeValidator
	proc         proc.Runner
	log          log.Logger
	codesignTool string
}

// Config holds configuration for creating a Coordinator.
type Config struct {
	Validator    BitcodeValidator
	Proc         proc.Runner
	Log          log.Logger
	CodesignTool string // defaults to DefaultCodesignTool
}

// NewCoordinator creates a new Coordinator.
func NewCoordinator(cfg Config) (*Coordinator, error) {
	if cfg.Validator == nil {
		return nil, fmt.Errorf("bitcode validator is required")
	}
	if cfg.Proc == nil {
		return nil, fmt.Errorf("process runner is required")
	}
	if cfg.Log == nil {
		cfg.Log = log.New()
		cfg.Log.Error("No logger provided, using default")
	}
	if cfg.CodesignTool == "" {
		cfg.CodesignTool = DefaultCodesignTool
	}
	return &Coordinator{
		validator:    cfg.Validator,
		proc:         cfg.Proc,
		log:          cfg.Log,
		codesignTool: cfg.CodesignTool,
	}, nil
}

// Coordinate prepares every framework bundle of the run, in declared order.
// There is no partial-success mode: the first failing framework aborts the
// remaining loop and the whole run.
func (c *Coordinator) Coordinate(cfg *types.TestRunConfig, target toolchain.Target, outputRoot string) error {
	for i := range cfg.Frameworks {
		desc := &cfg.Frameworks[i]
		paths := ArtifactPaths(outputRoot, cfg.Name, target, desc.ArtifactName())
		c.log.Debug("Coordinating framework",
			"test", cfg.Name,
			"framework", desc.Name,
			"bundle", paths.BundleDir)

		if err := c.validator.Validate(paths.Binary, target, cfg.FullBitcode); err != nil {
			return fmt.Errorf("bitcode validation failed for framework %s: %w", desc.Name, err)
		}
		if cfg.Codesign {
			if err := c.codesign(paths.BundleDir); err != nil {
				return fmt.Errorf("codesigning failed for framework %s: %w", desc.Name, err)
			}
		}
	}
	return nil
}

// codesign ad-hoc signs the bundle directory.
func (c *Coordinator) codesign(bundleDir string) error {
	args := []string{"--verbose", "-fs", "-", bundleDir}
	res, err := c.proc.Run(c.codesignTool, args, "", nil)
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return proc.NewToolFailure(c.codesignTool, args, res)
	}
	return nil
}
