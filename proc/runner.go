// Package proc runs external tools synchronously and captures their output.
package proc

import (
	"bytes"
	"errors"
	"os"
	"os/exec"

	"github.com/ethereum/go-ethereum/log"
)

// Result captures the outcome of one external process invocation. It is
// created fresh per invocation and never mutated afterwards.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes an external program and blocks until it terminates.
// The runner never interprets the exit code; that is the caller's job.
type Runner interface {
	// Run spawns path with args in dir under exactly env. A nil env means
	// the inherited environment; anything else replaces the child's
	// environment wholesale, never partially. Stdout and stderr are
	// captured independently. A failure to launch at all returns a
	// LaunchError; a non-zero exit is reported through the Result.
	Run(path string, args []string, dir string, env []string) (*Result, error)
}

type execRunner struct {
	log log.Logger
}

// NewRunner creates a Runner backed by os/exec.
func NewRunner(logger log.Logger) Runner {
	if logger == nil {
		logger = log.New()
	}
	return &execRunner{log: logger}
}

func (r *execRunner) Run(path string, args []string, dir string, env []string) (*Result, error) {
	cmd := exec.Command(path, args...)
	cmd.Dir = dir
	if env == nil {
		env = os.Environ()
	}
	cmd.Env = env

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.log.Debug("Running external process", "path", path, "args", args, "dir", dir)
	err := cmd.Run()
	res := &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: 0,
	}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, &LaunchError{Path: path, Err: err}
		}
		res.ExitCode = exitErr.ExitCode()
	}
	r.log.Debug("External process finished", "path", path, "exitCode", res.ExitCode)
	return res, nil
}
