// Package logging persists per-run test output to files so failures can be
// diagnosed without rerunning.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/acarl005/stripansi"

	"github.com/1552980358/kotlin-native/types"
)

const (
	// RunDirectoryPrefix is the standardized prefix for run directories.
	RunDirectoryPrefix = "testrun-"
	// SummaryFilename holds the one-line-per-test run summary.
	SummaryFilename = "summary.log"
	// FailedDirName collects the output of failed tests.
	FailedDirName = "failed"
)

// FileLogger handles writing test output to files. Safe for use from one
// harness invocation; file operations are serialized by a mutex.
type FileLogger struct {
	baseDir   string
	runDir    string
	failedDir string
	runID     string
	mu        sync.Mutex
}

// NewFileLogger creates a FileLogger rooted at baseDir for the given run.
func NewFileLogger(baseDir, runID string) (*FileLogger, error) {
	if runID == "" {
		return nil, fmt.Errorf("run ID is required")
	}
	runDir := filepath.Join(baseDir, RunDirectoryPrefix+runID)
	failedDir := filepath.Join(runDir, FailedDirName)
	if err := os.MkdirAll(failedDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", failedDir, err)
	}
	return &FileLogger{
		baseDir:   baseDir,
		runDir:    runDir,
		failedDir: failedDir,
		runID:     runID,
	}, nil
}

// RunDir returns the run's log directory.
func (l *FileLogger) RunDir() string {
	return l.runDir
}

// LogResult writes one test result. Every result gets an output file under
// the run directory; failed results additionally get a copy under failed/
// so broken tests are found at a glance.
func (l *FileLogger) LogResult(res *types.RunResult) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	content := formatResult(res)
	path := filepath.Join(l.runDir, res.Name+".log")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write test log %s: %w", path, err)
	}
	if res.Status == types.RunStatusFail {
		failedPath := filepath.Join(l.failedDir, res.Name+".log")
		if err := os.WriteFile(failedPath, []byte(content), 0644); err != nil {
			return fmt.Errorf("failed to write failed-test log %s: %w", failedPath, err)
		}
	}
	return nil
}

// Complete writes the run summary once every result has been logged.
func (l *FileLogger) Complete(summary *types.RunSummary) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", summary.String())
	for _, res := range summary.Results {
		fmt.Fprintf(&b, "%-6s %s (%s) [%s]\n", res.Status, res.Name, res.Target, res.Duration.Round(time.Millisecond))
	}
	path := filepath.Join(l.runDir, SummaryFilename)
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to write summary %s: %w", path, err)
	}
	return nil
}

// formatResult renders a result with its captured output, verbatim except
// for ANSI escapes which make log files unreadable.
func formatResult(res *types.RunResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "test: %s\ntarget: %s\nstatus: %s\nexecutable: %s\nduration: %s\n",
		res.Name, res.Target, res.Status, res.Executable, res.Duration)
	if res.Error != nil {
		fmt.Fprintf(&b, "\nerror:\n%s\n", stripansi.Strip(res.Error.Error()))
	}
	fmt.Fprintf(&b, "\nstdout:\n%s\nstderr:\n%s", stripansi.Strip(res.Stdout), stripansi.Strip(res.Stderr))
	return b.String()
}
