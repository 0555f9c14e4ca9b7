package fwtest

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/1552980358/kotlin-native/types"
)

func TestExtractKeyErrorMessage(t *testing.T) {
	assert.Empty(t, extractKeyErrorMessage(nil))

	assert.Equal(t, "testExec exited with code 1",
		extractKeyErrorMessage(errors.New("testExec exited with code 1\nstdout:\nline")),
		"only the first line goes into the table")

	long := strings.Repeat("x", 120)
	got := extractKeyErrorMessage(errors.New(long))
	assert.Len(t, got, 73)
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestGetResultString(t *testing.T) {
	assert.Equal(t, "✓ pass", getResultString(types.RunStatusPass))
	assert.Equal(t, "✗ fail", getResultString(types.RunStatusFail))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "1.5s", formatDuration(1500*time.Millisecond))
	assert.Equal(t, "0.0s", formatDuration(0))
	assert.Equal(t, "90.0s", formatDuration(90*time.Second))
}

func TestErrorClassification(t *testing.T) {
	runtimeErr := NewRuntimeError(errors.New("manifest not found"))
	assert.True(t, IsRuntimeError(runtimeErr))
	assert.True(t, IsRuntimeError(fmt.Errorf("wrapped: %w", runtimeErr)))
	assert.False(t, IsRuntimeError(errors.New("plain")))
	assert.False(t, IsRuntimeError(nil))
	assert.Equal(t, errors.Unwrap(runtimeErr).Error(), "manifest not found")

	testErr := NewTestFailureError("2 tests failed")
	assert.True(t, IsTestFailureError(testErr))
	assert.True(t, IsTestFailureError(fmt.Errorf("wrapped: %w", testErr)))
	assert.False(t, IsTestFailureError(runtimeErr))
	assert.False(t, IsRuntimeError(testErr))
}

func TestRunSummaryAggregation(t *testing.T) {
	summary := &types.RunSummary{RunID: "run1", Status: types.RunStatusPass}
	summary.AddResult(&types.RunResult{Name: "values", Status: types.RunStatusPass})
	assert.Equal(t, types.RunStatusPass, summary.Status)

	summary.AddResult(&types.RunResult{Name: "stdlib", Status: types.RunStatusFail})
	assert.Equal(t, types.RunStatusFail, summary.Status, "one failure fails the run")
	assert.Equal(t, types.RunStats{Total: 2, Passed: 1, Failed: 1}, summary.Stats)

	summary.AddResult(&types.RunResult{Name: "interop", Status: types.RunStatusPass})
	assert.Equal(t, types.RunStatusFail, summary.Status, "a later pass does not clear the failure")
}
