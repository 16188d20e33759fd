package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(conversationTurnsTotal, quotesGeneratedTotal, turnDuration) }

var conversationTurnsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "conversation_turns_total",
		Help: "Total conversation turns processed, labeled by outcome.",
	},
	[]string{"outcome"}, // 'reply', 'quote', 'replay', 'degraded'
)

var quotesGeneratedTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "quotes_generated_total",
		Help: "Total rate quotes produced by completed conversations.",
	},
)

var turnDuration = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "conversation_turn_duration_seconds",
		Help:    "Wall time of one conversation turn including model calls.",
		Buckets: prometheus.DefBuckets,
	},
)

func IncTurn(outcome string) { conversationTurnsTotal.WithLabelValues(norm(outcome)).Inc() }

func IncQuote() { quotesGeneratedTotal.Inc() }

func ObserveTurnDuration(seconds float64) { turnDuration.Observe(seconds) }
