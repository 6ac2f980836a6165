package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// BookingMetrics records availability checks and the conflicts they catch.
type BookingMetrics struct {
	conflicts *prometheus.CounterVec
	refreshes *prometheus.CounterVec
}

// NewBookingMetrics registers the booking metrics on the provided registerer.
func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	if reg == nil {
		return &BookingMetrics{}
	}
	conflicts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_conflicts_total",
		Help: "Reservation attempts rejected because the item was unavailable.",
	}, []string{"stage"})
	refreshes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_snapshot_refreshes_total",
		Help: "Availability snapshot refreshes by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(conflicts, refreshes)
	return &BookingMetrics{
		conflicts: conflicts,
		refreshes: refreshes,
	}
}

// IncConflict counts a rejected booking. Stage is "precheck" for the
// read-time availability gate and "write" for the re-check at insert time.
func (b *BookingMetrics) IncConflict(stage string) {
	if b == nil || b.conflicts == nil {
		return
	}
	b.conflicts.WithLabelValues(normalizeLabel(stage)).Inc()
}

// IncRefresh counts a snapshot refresh outcome (hit, refreshed, coalesced, error).
func (b *BookingMetrics) IncRefresh(outcome string) {
	if b == nil || b.refreshes == nil {
		return
	}
	b.refreshes.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
