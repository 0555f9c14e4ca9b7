package metrics

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/1552980358/kotlin-native/types"
)

const (
	MetricsNamespace = "fwtest"
)

var (
	Debug                bool = true
	validResults              = []types.RunStatus{types.RunStatusPass, types.RunStatusFail}
	nonAlphanumericRegex      = regexp.MustCompile(`[^a-zA-Z ]+`)

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "errors_total",
		Help:      "Count of errors",
	}, []string{
		"error",
	})

	testRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "test_runs_total",
		Help:      "Count of individual test runs",
	}, []string{
		"target",
		"run_id",
		"name",
		"result",
	})

	harnessResults = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "harness_results",
		Help:      "Result of harness invocations",
	}, []string{
		"target",
		"run_id",
		"result",
	})

	harnessTestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "harness_test_total",
		Help:      "Total number of tests per harness invocation",
	}, []string{
		"target",
		"run_id",
	})

	harnessTestPassed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "harness_test_passed",
		Help:      "Number of passed tests",
	}, []string{
		"target",
		"run_id",
	})

	harnessTestFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "harness_test_failed",
		Help:      "Number of failed tests",
	}, []string{
		"target",
		"run_id",
	})

	harnessDuration = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "harness_duration_seconds",
		Help:      "Duration of harness invocations",
	}, []string{
		"target",
		"run_id",
	})
)

// errToLabel tries to make the error string a more valid Prometheus label
func errToLabel(err error) string {
	if err == nil {
		return "nil"
	}
	errClean := nonAlphanumericRegex.ReplaceAllString(err.Error(), "")
	errClean = strings.ReplaceAll(errClean, " ", "_")
	errClean = strings.ReplaceAll(errClean, "__", "_")
	return errClean
}

func RecordError(error string) {
	if Debug {
		log.Debug("metric inc",
			"m", "errors_total",
			"error", error,
		)
	}
	errorsTotal.WithLabelValues(error).Inc()
}

// RecordErrorDetails concats the error message to the label
// and also tries to clean the label to be a valid Prometheus label
func RecordErrorDetails(label string, err error) {
	if err == nil {
		return
	}
	label = fmt.Sprintf("%s.%s", label, errToLabel(err))
	RecordError(label)
}

// RecordTestRun records the terminal status of one test run.
func RecordTestRun(target string, runID string, name string, result types.RunStatus) {
	if !isValidResult(result) {
		log.Error("RecordTestRun - invalid result", "result", result)
		return
	}
	if Debug {
		log.Debug("metric inc",
			"m", "test_runs_total",
			"target", target,
			"run_id", runID,
			"name", name,
			"result", result)
	}
	testRunsTotal.WithLabelValues(target, runID, name, string(result)).Inc()
}

// RecordHarnessRun records the aggregate outcome of one harness invocation.
func RecordHarnessRun(
	target string,
	runID string,
	result string,
	total int,
	passed int,
	failed int,
	duration time.Duration,
) {
	harnessResults.WithLabelValues(target, runID, result).Set(1)
	harnessTestTotal.WithLabelValues(target, runID).Add(float64(total))
	harnessTestPassed.WithLabelValues(target, runID).Add(float64(passed))
	harnessTestFailed.WithLabelValues(target, runID).Add(float64(failed))
	harnessDuration.WithLabelValues(target, runID).Set(duration.Seconds())
}

func isValidResult(result types.RunStatus) bool {
	return slices.Contains(validResults, result)
}
