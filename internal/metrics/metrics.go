package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Graph build metrics
var (
	// GraphBuildsTotal counts pipeline runs by origin (http, s3, queue) and
	// status (ok, partial, error).
	GraphBuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventgraph_builds_total",
			Help: "Total graph builds by origin and status",
		},
		[]string{"origin", "status"},
	)

	// GraphBuildDuration tracks the duration of each pipeline stage in seconds
	GraphBuildDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eventgraph_stage_duration_seconds",
			Help:    "Graph pipeline stage duration in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 15, 60},
		},
		[]string{"stage"},
	)

	// GraphNodes observes the node count of built graphs
	GraphNodes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "eventgraph_graph_nodes",
			Help:    "Number of nodes per built graph",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	// GraphEdges observes the edge count of built graphs
	GraphEdges = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "eventgraph_graph_edges",
			Help:    "Number of edges per built graph",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		},
	)

	// EigenvectorComponents counts connected components by the method that
	// produced their eigenvector scores
	EigenvectorComponents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventgraph_eigenvector_components_total",
			Help: "Connected components by eigenvector method",
		},
		[]string{"method"},
	)
)

// Snapshot store metrics
var (
	// StoredSnapshots tracks the number of snapshots currently held
	StoredSnapshots = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "eventgraph_snapshots_current",
			Help: "Number of graph snapshots held in memory",
		},
	)
)

// Queue worker metrics
var (
	// QueueMessagesTotal counts processed messages by queue and outcome
	// (ack, retry, dlq)
	QueueMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventgraph_queue_messages_total",
			Help: "Queue messages by queue and outcome",
		},
		[]string{"queue", "outcome"},
	)
)
