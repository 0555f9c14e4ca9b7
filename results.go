package fwtest

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/1552980358/kotlin-native/types"
)

// printResultsTable prints the results of the test runs to the console.
func (h *Harness) printResultsTable(summary *types.RunSummary) {
	h.config.Log.Info("Printing results...")
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle(fmt.Sprintf("Framework Test Results (%s)", formatDuration(summary.Duration)))

	t.AppendHeader(table.Row{
		"Test", "Target", "Duration", "Status", "Error",
	})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Test", WidthMax: 50, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Duration", Align: text.AlignRight},
		{Name: "Error", WidthMax: 80, WidthMaxEnforcer: text.WrapSoft},
	})

	for _, res := range summary.Results {
		t.AppendRow(table.Row{
			res.Name,
			res.Target,
			formatDuration(res.Duration),
			getResultString(res.Status),
			extractKeyErrorMessage(res.Error),
		})
	}

	if summary.Status == types.RunStatusPass {
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	} else {
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	}

	t.AppendFooter(table.Row{
		"TOTAL",
		"",
		formatDuration(summary.Duration),
		fmt.Sprintf("%d/%d passed", summary.Stats.Passed, summary.Stats.Total),
		"",
	})
	t.Render()
}

// extractKeyErrorMessage extracts the most pertinent part of the error
// message for the table; full output lands in the run's log files.
func extractKeyErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	errStr := err.Error()
	if idx := strings.Index(errStr, "\n"); idx != -1 {
		errStr = errStr[:idx]
	}
	if len(errStr) > 80 {
		return errStr[:70] + "..."
	}
	return errStr
}

// getResultString returns a colored string representing the test result
func getResultString(status types.RunStatus) string {
	switch status {
	case types.RunStatusPass:
		return "✓ pass"
	default:
		return "✗ fail"
	}
}

// Helper function to format duration to seconds with 1 decimal place
func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}
