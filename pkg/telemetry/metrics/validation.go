package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Mahi3005/data-alchemist/pkg/config"
)

// ValidationMetrics tracks validation runs and their findings.
//
// Metrics:
//   - alchemist_validation_runs_total: runs by outcome (proceed or blocked)
//   - alchemist_validation_run_duration_seconds: end-to-end run duration
//   - alchemist_validation_pass_duration_seconds: per-pass duration by entity and pass
//   - alchemist_validation_diagnostics_total: diagnostics by entity, kind and severity
//   - alchemist_validation_fixes_total: auto-fix attempts by kind and result
type ValidationMetrics struct {
	runsTotal       *prometheus.CounterVec
	runDuration     prometheus.Histogram
	passDuration    *prometheus.HistogramVec
	diagnosticTotal *prometheus.CounterVec
	fixesTotal      *prometheus.CounterVec
}

// NewValidationMetrics creates and registers validation metrics with the provided registry.
func NewValidationMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ValidationMetrics {
	// Validation of a few thousand rows takes well under a second.
	buckets := []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}

	vm := &ValidationMetrics{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "validation",
				Name:      "runs_total",
				Help:      "Total number of validation runs",
			},
			[]string{"outcome"},
		),

		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: "validation",
				Name:      "run_duration_seconds",
				Help:      "Duration of full validation runs in seconds",
				Buckets:   buckets,
			},
		),

		passDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: "validation",
				Name:      "pass_duration_seconds",
				Help:      "Duration of individual validation passes in seconds",
				Buckets:   buckets,
			},
			[]string{"entity", "pass"},
		),

		diagnosticTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "validation",
				Name:      "diagnostics_total",
				Help:      "Total number of diagnostics reported",
			},
			[]string{"entity", "kind", "severity"},
		),

		fixesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "validation",
				Name:      "fixes_total",
				Help:      "Total number of auto-fix attempts",
			},
			[]string{"kind", "result"},
		),
	}

	registry.MustRegister(
		vm.runsTotal,
		vm.runDuration,
		vm.passDuration,
		vm.diagnosticTotal,
		vm.fixesTotal,
	)

	return vm
}
