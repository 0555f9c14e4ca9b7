package types

import (
	"fmt"
	"time"
)

// RunStatus represents the terminal state of a single test run.
type RunStatus string

const (
	RunStatusPass RunStatus = "pass"
	RunStatusFail RunStatus = "fail"
)

// RunResult captures the outcome of building and executing one test.
type RunResult struct {
	Name       string
	Target     string
	Status     RunStatus
	Duration   time.Duration
	Executable string
	// Stdout and Stderr hold the test executable's captured output,
	// verbatim. Populated for failed runs and kept for passing ones so the
	// file logger can persist them either way.
	Stdout string
	Stderr string
	// Error is the reported failure for a failed run. It is nil for a
	// passing run.
	Error error
}

// RunStats tracks aggregate counts across a harness invocation.
type RunStats struct {
	Total  int
	Passed int
	Failed int
}

// RunSummary aggregates every test run of one harness invocation.
type RunSummary struct {
	RunID    string
	Status   RunStatus
	Duration time.Duration
	Results  []*RunResult
	Stats    RunStats
}

// AddResult folds a run result into the summary.
func (s *RunSummary) AddResult(res *RunResult) {
	s.Results = append(s.Results, res)
	s.Stats.Total++
	if res.Status == RunStatusPass {
		s.Stats.Passed++
	} else {
		s.Stats.Failed++
		s.Status = RunStatusFail
	}
}

// String returns a one-line human-readable summary.
func (s *RunSummary) String() string {
	return fmt.Sprintf("run %s: %d tests, %d passed, %d failed (%s) - %s",
		s.RunID, s.Stats.Total, s.Stats.Passed, s.Stats.Failed, s.Duration.Round(time.Millisecond), s.Status)
}
