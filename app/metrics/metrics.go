// Package metrics provides Prometheus metrics for the feed reader.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "fitgirl_rss_reader"

var (
	// CyclesTotal counts poll cycles by result.
	CyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Total number of poll cycles",
		},
		[]string{"result"},
	)

	// CycleDuration measures how long a poll cycle takes.
	CycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Duration of poll cycles in seconds",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
	)

	// ItemsTotal counts feed items by what happened to them.
	ItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_total",
			Help:      "Total number of feed items processed",
		},
		[]string{"status"},
	)

	// CatalogLookups counts catalog lookups by outcome.
	CatalogLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_lookups_total",
			Help:      "Total number of catalog lookups",
		},
		[]string{"outcome"},
	)

	// CatalogLookupDuration measures full lookups including details and reviews.
	CatalogLookupDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "catalog_lookup_duration_seconds",
			Help:      "Duration of catalog lookups in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// PublishTotal counts publish operations.
	PublishTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_total",
			Help:      "Total number of publish operations",
		},
		[]string{"routing_key", "status"},
	)

	// ControlMessages counts inbound control messages.
	ControlMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "control_messages_total",
			Help:      "Total number of control messages handled",
		},
		[]string{"queue", "result"},
	)
)

// RecordCycle records a finished or skipped poll cycle.
func RecordCycle(result string, seconds float64) {
	CyclesTotal.WithLabelValues(result).Inc()
	if seconds > 0 {
		CycleDuration.Observe(seconds)
	}
}

// RecordItem records the fate of a single feed item.
func RecordItem(status string) {
	ItemsTotal.WithLabelValues(status).Inc()
}

// RecordLookup records a catalog lookup.
func RecordLookup(outcome string, seconds float64) {
	CatalogLookups.WithLabelValues(outcome).Inc()
	CatalogLookupDuration.Observe(seconds)
}

// RecordPublish records a publish to the exchange.
func RecordPublish(routingKey, status string) {
	PublishTotal.WithLabelValues(routingKey, status).Inc()
}

// RecordControl records a consumed control message.
func RecordControl(queue, result string) {
	ControlMessages.WithLabelValues(queue, result).Inc()
}
