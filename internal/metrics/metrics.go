// Package metrics exposes Prometheus metrics for the study ledger: committed
// ledger events by type and HTTP request counts and latencies.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/371050/study-pwa/internal/events"
)

const namespace = "study"

// Metrics holds the collectors and the registry they are registered on.
type Metrics struct {
	registry *prometheus.Registry

	LedgerEvents    *prometheus.CounterVec
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	IngestEntries   *prometheus.CounterVec
	ImportedRecords *prometheus.GaugeVec
}

var _ events.EventHandler = (*Metrics)(nil)

// New creates the metrics on a fresh registry, together with the Go runtime
// and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		LedgerEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ledger",
				Name:      "events_total",
				Help:      "Committed ledger changes by event type",
			},
			[]string{"type"},
		),

		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "HTTP requests by method, route pattern and status code",
			},
			[]string{"method", "route", "status"},
		),

		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),

		IngestEntries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ingest",
				Name:      "entries_total",
				Help:      "Bulk entries by outcome (recorded, skipped, invalid)",
			},
			[]string{"outcome"},
		),

		ImportedRecords: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "snapshot",
				Name:      "imported_records",
				Help:      "Records written by the most recent snapshot import",
			},
			[]string{"entity"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.LedgerEvents,
		m.HTTPRequests,
		m.HTTPDuration,
		m.IngestEntries,
		m.ImportedRecords,
	)
	return m
}

// Registry returns the Prometheus registry backing m.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// ObserveRequest records one finished HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ingestPayload mirrors the counts carried by an entries.applied event.
type ingestPayload struct {
	Recorded int `json:"recorded"`
	Skipped  int `json:"skipped"`
	Invalid  int `json:"invalid"`
}

// importPayload mirrors the counts carried by a snapshot.imported event.
type importPayload struct {
	Subjects int `json:"subjects"`
	Units    int `json:"units"`
	Reviews  int `json:"reviews"`
}

// HandleEvent implements events.EventHandler.
func (m *Metrics) HandleEvent(_ context.Context, event *events.LedgerEvent) error {
	m.LedgerEvents.WithLabelValues(event.Type).Inc()

	switch event.Type {
	case events.EntriesApplied:
		var p ingestPayload
		if err := event.UnmarshalPayload(&p); err != nil {
			return err
		}
		m.IngestEntries.WithLabelValues("recorded").Add(float64(p.Recorded))
		m.IngestEntries.WithLabelValues("skipped").Add(float64(p.Skipped))
		m.IngestEntries.WithLabelValues("invalid").Add(float64(p.Invalid))
	case events.SnapshotImported:
		var p importPayload
		if err := event.UnmarshalPayload(&p); err != nil {
			return err
		}
		m.ImportedRecords.WithLabelValues("subjects").Set(float64(p.Subjects))
		m.ImportedRecords.WithLabelValues("units").Set(float64(p.Units))
		m.ImportedRecords.WithLabelValues("reviews").Set(float64(p.Reviews))
	}
	return nil
}
