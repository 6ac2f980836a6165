package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// DriftMetrics counts schema-drift fallbacks taken by the scoped store.
// A rising counter is the signal that a deployment is still mid-migration.
type DriftMetrics struct {
	retries *prometheus.CounterVec
}

// NewDriftMetrics registers the drift metrics on the provided registerer.
func NewDriftMetrics(reg prometheus.Registerer) *DriftMetrics {
	if reg == nil {
		return &DriftMetrics{}
	}
	retries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schema_drift_retries_total",
		Help: "Operations retried after a schema-drift error, by table and fallback.",
	}, []string{"table", "fallback"})
	reg.MustRegister(retries)
	return &DriftMetrics{retries: retries}
}

// IncRetry counts one drift fallback, e.g. ("team_members", "strip_workspace").
func (d *DriftMetrics) IncRetry(table, fallback string) {
	if d == nil || d.retries == nil {
		return
	}
	d.retries.WithLabelValues(normalizeLabel(table), normalizeLabel(fallback)).Inc()
}
