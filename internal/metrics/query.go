package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "mailsense"

// Query intelligence Prometheus metrics.
var (
	QueryIntentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_intent_total",
			Help:      "Analysed queries by classified intent",
		},
		[]string{"intent"},
	)

	QueryAnalysisDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_analysis_duration_seconds",
			Help:      "Query analysis duration in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05},
		},
	)

	RetrievalDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieval_duration_seconds",
			Help:      "Intelligent retrieval duration in seconds",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"strategy"},
	)

	RetrievalCitations = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieval_citations",
			Help:      "Number of citations returned per query",
			Buckets:   []float64{0, 1, 2, 5, 8, 10, 15, 20, 25},
		},
		[]string{"strategy"},
	)
)

var queryMetricsRegistered bool

// RegisterQueryMetrics registers Prometheus query metrics. Must be called once from main.
func RegisterQueryMetrics() {
	if queryMetricsRegistered {
		return
	}
	prometheus.MustRegister(QueryIntentTotal)
	prometheus.MustRegister(QueryAnalysisDuration)
	prometheus.MustRegister(RetrievalDuration)
	prometheus.MustRegister(RetrievalCitations)
	queryMetricsRegistered = true
}
