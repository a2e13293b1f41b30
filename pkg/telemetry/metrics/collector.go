package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Mahi3005/data-alchemist/pkg/config"
	"github.com/Mahi3005/data-alchemist/pkg/dataset"
	"github.com/Mahi3005/data-alchemist/pkg/diagnostics"
	"github.com/Mahi3005/data-alchemist/pkg/engine"
)

// allEntities labels passes that span every entity set.
const allEntities = "all"

// Collector owns the Prometheus registry and every metric the service
// exports. It implements engine.Observer so the engine can report into it
// without importing this package.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	validation *ValidationMetrics
	http       *HTTPMetrics
}

var _ engine.Observer = (*Collector)(nil)

// NewCollector creates a collector. If registry is nil a fresh registry is
// created; the default global registry is never used.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}

	return &Collector{
		config:     cfg,
		registry:   registry,
		validation: NewValidationMetrics(cfg, registry),
		http:       NewHTTPMetrics(cfg, registry),
	}
}

// Registry returns the registry metrics are registered with.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObservePass records the duration of one validation pass. The
// cross-entity pass arrives with an empty entity and is labelled "all".
func (c *Collector) ObservePass(entity dataset.EntityType, pass string, elapsed time.Duration) {
	if !c.config.Enabled {
		return
	}
	label := string(entity)
	if label == "" {
		label = allEntities
	}
	c.validation.passDuration.WithLabelValues(label, pass).Observe(elapsed.Seconds())
}

// ObserveReport records a finished run and counts its diagnostics.
func (c *Collector) ObserveReport(r *engine.Report) {
	if !c.config.Enabled || r == nil {
		return
	}

	outcome := "blocked"
	if r.CanProceed {
		outcome = "proceed"
	}
	c.validation.runsTotal.WithLabelValues(outcome).Inc()
	if r.Duration > 0 {
		c.validation.runDuration.Observe(r.Duration.Seconds())
	}

	for _, d := range r.Diagnostics {
		c.validation.diagnosticTotal.WithLabelValues(string(d.EntityType), string(d.Kind), string(d.Severity)).Inc()
	}
}

// ObserveFix records one auto-fix attempt.
func (c *Collector) ObserveFix(kind diagnostics.Kind, applied bool) {
	if !c.config.Enabled {
		return
	}
	result := "skipped"
	if applied {
		result = "applied"
	}
	c.validation.fixesTotal.WithLabelValues(string(kind), result).Inc()
}

// RecordHTTPRequest records one served HTTP request.
func (c *Collector) RecordHTTPRequest(route, method string, code int, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.http.requestsTotal.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	c.http.requestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// SetActiveSessions reports the number of live sessions.
func (c *Collector) SetActiveSessions(n int) {
	if !c.config.Enabled {
		return
	}
	c.http.activeSessions.Set(float64(n))
}
