package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus Metrics Definition
var (
	eventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "virtuallist_events_total",
			Help: "Total number of host events applied to list sessions.",
		},
		[]string{"type"},
	)
	eventsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "virtuallist_events_rejected_total",
			Help: "Total number of inbound payloads that could not be parsed or validated.",
		},
		[]string{"reason"}, // malformed, invalid
	)
	scrollSamplesIgnored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "virtuallist_scroll_samples_ignored_total",
			Help: "Scroll samples outside the scrollable extent (overscroll) that were ignored.",
		},
	)
	sizeReportsIgnored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "virtuallist_size_reports_ignored_total",
			Help: "Item size reports for ids outside the session's current sequence.",
		},
	)
	activeSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "virtuallist_active_sessions",
			Help: "Number of list sessions currently held in memory.",
		},
	)
	sessionsClosed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "virtuallist_sessions_closed_total",
			Help: "Total number of list sessions released.",
		},
		[]string{"reason"}, // reset, idle, shutdown
	)
	rangeCommits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "virtuallist_range_commits_total",
			Help: "Total number of committed window changes published.",
		},
	)
	rangePadding = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "virtuallist_range_padding",
			Help:    "Padding standing in for unmaterialized items in published windows.",
			Buckets: prometheus.ExponentialBuckets(64, 4, 10),
		},
		[]string{"side"}, // front, behind
	)
	edgeEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "virtuallist_edge_events_total",
			Help: "Total number of scroll samples that reached either end of a list.",
		},
		[]string{"edge"},
	)
	scrollTargets = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "virtuallist_scroll_targets_total",
			Help: "Total number of scroll-to-index requests resolved.",
		},
	)
	publishFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "virtuallist_publish_failures_total",
			Help: "Total number of updates that could not be written to the output topic.",
		},
	)
)
