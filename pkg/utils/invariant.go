// Package utils hosts the small cross-cutting helpers shared by every other package.
//
// Invariants are conditions in code that must be true; otherwise, there is a bug in code.
// Think of what you'd `panic()` on (equivalent to `assert` in other languages), but you don't
// want to crash a long-running process just because of that violation. If an invariant is
// violated, a log error is recorded and a monitoring counter is incremented that can trigger
// an alert. It is still up to the caller to handle the erroneous case, for example by doing
// an early return and skipping the following computations.
//
// In the skip list code, invariants stand in for the debug assertions a trusted-caller
// container would carry: out-of-range level access, descent ordering violations, and the
// like are bugs in our code or a broken caller comparator, never recoverable conditions.
// Under tests (TestMode build flag), a violation panics so bugs surface immediately;
// in production it logs, counts, and lets the caller limp along.

package utils

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	promclient "github.com/prometheus/client_model/go"
)

var invariantsMetric = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "invariants_total",
	Help: "The total number of invariant violations",
}, []string{
	"module", // The module in which this invariant occurred.
	"type",   // The type of the invariant that occurred.
})

func RaiseInvariant(module, invariantType, msg string, args ...any) {
	invariantsMetric.WithLabelValues(module, invariantType).Inc()
	slog.With("invariant", invariantType, "module", module).Error(msg, args...)
	if IsTestMode {
		panic("invariant violated: " + invariantType)
	}
}

// GetMetricValue returns the current value of invariant metric with labels `module` and `invariantType`.
func GetMetricValue(module, invariantType string) int {
	var metric = &promclient.Metric{}
	if err := invariantsMetric.WithLabelValues(module, invariantType).Write(metric); err != nil {
		slog.Error(err.Error())
		return 0
	}
	return int(metric.Counter.GetValue())
}
