// Package metrics exposes the Prometheus instrumentation for the API:
// request counters, moderation transition counters and per-status entity
// gauges.
package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests labeled by method, route and status",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	moderationTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moderation_transitions_total",
			Help: "Total number of moderation status transitions",
		},
		[]string{"entity", "from", "to"},
	)
	errorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors split by code and severity",
		},
		[]string{"code", "severity"},
	)
	entitiesByStatus = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "entities_by_status",
			Help: "Number of stored entities per type and moderation status",
		},
		[]string{"entity", "status"},
	)
)

// RecordRequest increments request counters and records duration.
func RecordRequest(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}

	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordTransition tracks a moderation status change.
func RecordTransition(entity, from, to string) {
	if entity == "" {
		entity = "unknown"
	}

	moderationTransitionsTotal.WithLabelValues(entity, from, to).Inc()
}

// RecordError increments error counters with metadata.
func RecordError(code, severity string) {
	if code == "" {
		code = "unknown"
	}
	if severity == "" {
		severity = "unknown"
	}

	errorsTotal.WithLabelValues(code, severity).Inc()
}

// SetEntities updates the gauge for one entity type and status.
func SetEntities(entity, status string, count int) {
	entitiesByStatus.WithLabelValues(entity, status).Set(float64(count))
}

// CountFunc reports stored entity counts as entity type → status → count.
type CountFunc func(ctx context.Context) (map[string]map[string]int, error)

// StatusCollector periodically gathers entity counts and emits gauges.
type StatusCollector struct {
	count    CountFunc
	interval time.Duration
}

// NewStatusCollector builds a collector polling count at the given
// interval.
func NewStatusCollector(count CountFunc, interval time.Duration) *StatusCollector {
	if interval <= 0 {
		interval = 30 * time.Second
	}

	return &StatusCollector{count: count, interval: interval}
}

// Run polls until ctx is cancelled.
func (c *StatusCollector) Run(ctx context.Context) {
	if c == nil || c.count == nil {
		return
	}

	for {
		c.collect(ctx)

		select {
		case <-ctx.Done():
			return
		case <-time.After(c.interval):
		}
	}
}

func (c *StatusCollector) collect(ctx context.Context) {
	counts, err := c.count(ctx)
	if err != nil {
		return
	}

	entitiesByStatus.Reset()

	for entity, statuses := range counts {
		for status, count := range statuses {
			SetEntities(entity, status, count)
		}
	}
}
