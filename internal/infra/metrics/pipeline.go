package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(stageDuration, vectorBatchesTotal, chunksIndexedTotal) }

var stageDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "pipeline_stage_duration_seconds",
		Help:    "Duration of individual document pipeline stages.",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"stage"}, // 'load', 'classify', 'split', 'index', 'persist'
)

var vectorBatchesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "vector_upsert_batches_total",
		Help: "Vector index batch upserts, labeled by outcome.",
	},
	[]string{"outcome"}, // 'ok', 'error'
)

var chunksIndexedTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "pipeline_chunks_indexed_total",
		Help: "Total chunks successfully upserted into the vector index.",
	},
)

func ObserveStage(stage string, seconds float64) {
	stageDuration.WithLabelValues(norm(stage)).Observe(seconds)
}

func IncVectorBatch(outcome string) { vectorBatchesTotal.WithLabelValues(norm(outcome)).Inc() }

func AddChunksIndexed(n int) { chunksIndexedTotal.Add(float64(n)) }
