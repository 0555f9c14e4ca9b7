package proc

import (
	"errors"
	"fmt"
	"strings"
)

// LaunchError indicates the executable could not be started at all (missing
// binary, bad permissions). It is distinct from a non-zero exit, which is
// reported through Result.
type LaunchError struct {
	Path string
	Err  error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("failed to launch %s: %v", e.Path, e.Err)
}

// Unwrap implements the errors.Unwrap interface
func (e *LaunchError) Unwrap() error {
	return e.Err
}

// IsLaunchError checks if the error is or wraps a LaunchError.
func IsLaunchError(err error) bool {
	var launchErr *LaunchError
	return err != nil && errors.As(err, &launchErr)
}

// ToolFailure indicates an external tool (compiler, signer, validator)
// exited non-zero. It carries the captured output so failures can be
// diagnosed without rerunning.
type ToolFailure struct {
	Tool   string
	Args   []string
	Result *Result
}

// NewToolFailure creates a new ToolFailure.
func NewToolFailure(tool string, args []string, result *Result) *ToolFailure {
	return &ToolFailure{Tool: tool, Args: args, Result: result}
}

func (e *ToolFailure) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s exited with code %d", e.Tool, strings.Join(e.Args, " "), e.Result.ExitCode)
	if e.Result.Stdout != "" {
		fmt.Fprintf(&b, "\nstdout:\n%s", e.Result.Stdout)
	}
	if e.Result.Stderr != "" {
		fmt.Fprintf(&b, "\nstderr:\n%s", e.Result.Stderr)
	}
	return b.String()
}

// IsToolFailure checks if the error is or wraps a ToolFailure.
func IsToolFailure(err error) bool {
	var toolErr *ToolFailure
	return err != nil && errors.As(err, &toolErr)
}
