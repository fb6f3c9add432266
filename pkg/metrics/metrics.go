// Package metrics provides Prometheus metrics for the Clover service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CandidatesEvaluated tracks candidates through the confidence gate
	CandidatesEvaluated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "gate",
			Name:      "candidates_total",
			Help:      "Total number of candidates evaluated by decision",
		},
		[]string{"store", "source", "decision"},
	)

	// ConfidenceScores tracks the confidence score distribution
	ConfidenceScores = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "clover",
			Subsystem: "gate",
			Name:      "confidence_score",
			Help:      "Distribution of confidence scores",
			Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1},
		},
		[]string{"source"},
	)

	// QualityScores tracks the quality score distribution of accepted deals
	QualityScores = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "clover",
			Subsystem: "scoring",
			Name:      "quality_score",
			Help:      "Distribution of quality scores for accepted deals",
			Buckets:   []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
		[]string{"store", "grade"},
	)

	// FakeDiscountsDetected tracks inflated MRP claims
	FakeDiscountsDetected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "analysis",
			Name:      "fake_discounts_total",
			Help:      "Total number of fake discount claims detected",
		},
		[]string{"store"},
	)

	// HistoricalLows tracks confirmed historical low prices
	HistoricalLows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "analysis",
			Name:      "historical_lows_total",
			Help:      "Total number of confirmed historical low prices",
		},
		[]string{"store"},
	)

	// ObservationsRecorded tracks price history appends
	ObservationsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "history",
			Name:      "observations_total",
			Help:      "Total number of price observations recorded",
		},
		[]string{"source", "anomalous"},
	)

	// DuplicateGroupsResolved tracks duplicate resolution passes
	DuplicateGroupsResolved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "dedupe",
			Name:      "groups_total",
			Help:      "Total number of duplicate groups resolved by strategy",
		},
		[]string{"strategy"},
	)

	// DuplicatesCollapsed tracks how many records were absorbed
	DuplicatesCollapsed = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "dedupe",
			Name:      "collapsed_total",
			Help:      "Total number of duplicate records absorbed into canonical deals",
		},
	)

	// InsightCacheHits tracks insight cache effectiveness
	InsightCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "cache",
			Name:      "insight_lookups_total",
			Help:      "Total number of insight cache lookups by result",
		},
		[]string{"result"},
	)

	// KafkaMessagesPublished tracks Kafka messages published
	KafkaMessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "kafka",
			Name:      "messages_published_total",
			Help:      "Total number of messages published to Kafka",
		},
		[]string{"topic", "status"},
	)

	// DatabaseQueryDuration tracks database query duration
	DatabaseQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "clover",
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Duration of database queries in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"operation"},
	)
)

// RecordEvaluation records a gate decision with its confidence score
func RecordEvaluation(store, source string, accepted bool, score float64) {
	decision := "rejected"
	if accepted {
		decision = "accepted"
	}
	CandidatesEvaluated.WithLabelValues(store, source, decision).Inc()
	ConfidenceScores.WithLabelValues(source).Observe(score)
}

// RecordQuality records an accepted deal's quality score
func RecordQuality(store, grade string, score float64) {
	QualityScores.WithLabelValues(store, grade).Observe(score)
}

// RecordObservation records a price history append
func RecordObservation(source string, anomalous bool) {
	flag := "false"
	if anomalous {
		flag = "true"
	}
	ObservationsRecorded.WithLabelValues(source, flag).Inc()
}

// RecordResolution records a duplicate resolution pass
func RecordResolution(strategy string, groups, collapsed int) {
	DuplicateGroupsResolved.WithLabelValues(strategy).Add(float64(groups))
	DuplicatesCollapsed.Add(float64(collapsed))
}
