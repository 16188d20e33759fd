package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(jobsProcessedTotal, jobRetriesTotal, queueWaiting) }

var jobsProcessedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ingestion_jobs_processed_total",
		Help: "Total ingestion jobs finished, labeled by queue and status.",
	},
	[]string{"queue", "status"}, // 'completed', 'failed'
)

var jobRetriesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ingestion_job_retries_total",
		Help: "Total retry attempts scheduled by the backoff policy.",
	},
	[]string{"queue"},
)

var queueWaiting = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "ingestion_queue_waiting",
		Help: "Jobs currently waiting per queue.",
	},
	[]string{"queue"},
)

func IncJob(queue, status string) {
	jobsProcessedTotal.WithLabelValues(norm(queue), norm(status)).Inc()
}

func IncJobRetry(queue string) { jobRetriesTotal.WithLabelValues(norm(queue)).Inc() }

func SetQueueWaiting(queue string, n float64) { queueWaiting.WithLabelValues(norm(queue)).Set(n) }
