package dating

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	recordsComputed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_records_computed_total",
			Help: "Total number of compatibility records computed",
		},
	)

	recordConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_record_conflicts_total",
			Help: "Pair record upserts that hit a uniqueness conflict",
		},
	)

	recordsMarkedStale = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_records_marked_stale_total",
			Help: "Records flagged for recalculation after a profile change",
		},
	)

	compatibilityScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "matching_compatibility_scores",
			Help:    "Distribution of persisted compatibility scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	candidatesScored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_candidates_scored_total",
			Help: "Candidates scored by discovery ranking after exclusion",
		},
	)

	candidatesReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "matching_candidates_returned",
			Help:    "Number of candidates returned per discovery request",
			Buckets: prometheus.LinearBuckets(0, 5, 11),
		},
	)

	responseTime = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "matching_response_time_seconds",
			Help: "Time spent per matching operation",
		},
		[]string{"action"},
	)

	batchUsers = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_batch_users_total",
			Help: "Users processed by batch recomputation",
		},
		[]string{"result"},
	)

	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "matching_websocket_connections",
			Help: "Currently connected websocket clients",
		},
	)
)

func RecordComputed(score int, duration time.Duration) {
	recordsComputed.Inc()
	compatibilityScores.Observe(float64(score))
	responseTime.WithLabelValues("compute_pair").Observe(duration.Seconds())
}

func RecordConflict() {
	recordConflicts.Inc()
}

func RecordMarkedStale(n int64) {
	recordsMarkedStale.Add(float64(n))
}

func RecordRanking(eligible, returned int, duration time.Duration) {
	candidatesScored.Add(float64(eligible))
	candidatesReturned.Observe(float64(returned))
	responseTime.WithLabelValues("rank").Observe(duration.Seconds())
}

func RecordBatchUser(ok bool) {
	if ok {
		batchUsers.WithLabelValues("succeeded").Inc()
		return
	}
	batchUsers.WithLabelValues("failed").Inc()
}
