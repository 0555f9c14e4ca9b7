// Package bitcode verifies the bitcode embedded in framework binaries using
// the toolchain's external validation tool.
package bitcode

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/log"

	"github.com/1552980358/kotlin-native/proc"
	"github.com/1552980358/kotlin-native/toolchain"
)

// ValidatorTool is the validator binary name under the toolchain's
// additional-tools directory.
const ValidatorTool = "bitcode-build-tool"

// interpreterCandidates is the fixed, ordered list of install paths probed
// for the interpreter that drives the validator. The first existing path
// wins.
var interpreterCandidates = []string{
	"/usr/bin/python",
	"/usr/local/bin/python",
	"/usr/bin/python3",
}

// MetadataResolver is the slice of the toolchain resolver the validator
// needs.
type MetadataResolver interface {
	Resolve(target toolchain.Target) (*toolchain.PlatformMetadata, error)
}

// Validator drives the external bitcode validation tool.
type Validator struct {
	resolver MetadataResolver
	proc     proc.Runner
	log      log.Logger
	// stat is injectable for tests probing interpreter candidates.
	stat func(string) error
}

// Config holds configuration for creating a Validator.
type Config struct {
	Resolver MetadataResolver
	Proc     proc.Runner
	Log      log.Logger
}

// NewValidator creates a new Validator.
func NewValidator(cfg Config) (*Validator, error) {
	if cfg.Resolver == nil {
		return nil, fmt.Errorf("resolver is required")
	}
	if cfg.Proc == nil {
		return nil, fmt.Errorf("process runner is required")
	}
	if cfg.Log == nil {
		cfg.Log = log.New()
		cfg.Log.Error("No logger provided, using default")
	}
	return &Validator{
		resolver: cfg.Resolver,
		proc:     cfg.Proc,
		log:      cfg.Log,
		stat: func(path string) error {
			_, err := os.Stat(path)
			return err
		},
	}, nil
}

// Validate checks the bitcode embedded in frameworkBinary. It is a no-op
// when full bitcode was not requested, and for every simulator target —
// the simulator platforms ship no validator, a known capability gap rather
// than a defect. A non-zero validator exit is fatal and carries the
// captured output.
func (v *Validator) Validate(frameworkBinary string, target toolchain.Target, fullBitcode bool) error {
	if !fullBitcode {
		v.log.Debug("Bitcode validation not requested, skipping", "binary", frameworkBinary)
		return nil
	}
	simulator, err := target.Simulator()
	if err != nil {
		return err
	}
	family, err := target.Family()
	if err != nil {
		return err
	}
	if simulator || family == toolchain.FamilyMacos {
		// No bitcode validator exists for these platforms.
		v.log.Debug("Target has no bitcode validator, skipping", "target", target)
		return nil
	}

	meta, err := v.resolver.Resolve(target)
	if err != nil {
		return err
	}
	interpreter, err := v.findInterpreter()
	if err != nil {
		return err
	}

	validatorPath := filepath.Join(meta.AdditionalToolsDir, ValidatorTool)
	args := []string{validatorPath, "--sdk", meta.SDKName, "-v", "-t", meta.ToolchainBinDir, frameworkBinary}
	v.log.Info("Validating embedded bitcode", "binary", frameworkBinary, "target", target)
	res, err := v.proc.Run(interpreter, args, "", nil)
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return proc.NewToolFailure(ValidatorTool, args, res)
	}
	return nil
}

// findInterpreter probes the fixed candidate list and returns the first
// path that exists.
func (v *Validator) findInterpreter() (string, error) {
	for _, candidate := range interpreterCandidates {
		if err := v.stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", &MissingInterpreterError{Candidates: interpreterCandidates}
}

// MissingInterpreterError indicates no interpreter candidate exists on this
// host. This is an environment bug, fatal to the run.
type MissingInterpreterError struct {
	Candidates []string
}

func (e *MissingInterpreterError) Error() string {
	return fmt.Sprintf("no bitcode validator interpreter found, probed: %s", strings.Join(e.Candidates, ", "))
}

// IsMissingInterpreter checks if the error is or wraps a MissingInterpreterError.
func IsMissingInterpreter(err error) bool {
	var interpErr *MissingInterpreterError
	return err != nil && errors.As(err, &interpErr)
}
