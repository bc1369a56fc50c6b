// Package metrics defines the Prometheus instruments for the progression
// engine. Instruments are package vars so domain code can increment them
// directly; Register wires them into the registry served by the metrics
// server.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// AwardAttemptsTotal counts award transaction attempts, including
	// retries after write conflicts.
	AwardAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "progression_award_attempts_total",
			Help: "Total number of award transaction attempts",
		},
		[]string{"action"},
	)

	// AwardConflictsTotal counts conditional-write conflicts that forced
	// a reload-and-retry.
	AwardConflictsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "progression_award_conflicts_total",
			Help: "Total number of optimistic concurrency conflicts during awards",
		},
	)

	// AwardFailuresTotal counts awards that failed permanently.
	AwardFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "progression_award_failures_total",
			Help: "Total number of awards that could not be committed",
		},
		[]string{"reason"},
	)

	// AwardDuration observes end-to-end award latency including retries.
	AwardDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "progression_award_duration_seconds",
			Help:    "End-to-end award transaction duration",
			Buckets: prometheus.DefBuckets,
		},
	)

	// SnapshotRepairsTotal counts snapshots repaired on load.
	SnapshotRepairsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "progression_snapshot_repairs_total",
			Help: "Total number of malformed snapshots repaired on load",
		},
	)

	// BadgesEarnedTotal counts achievements awarded, per achievement ID.
	BadgesEarnedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "progression_badges_earned_total",
			Help: "Total number of achievements earned",
		},
		[]string{"badge"},
	)

	// TierChangesTotal counts tier promotions committed by awards.
	TierChangesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "progression_tier_changes_total",
			Help: "Total number of tier changes",
		},
	)

	// CoalescerFlushesTotal counts coalescer flushes by payload kind.
	CoalescerFlushesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "progression_coalescer_flushes_total",
			Help: "Total number of notification payloads emitted by the coalescer",
		},
		[]string{"kind"},
	)
)

// Register registers all progression instruments on the given registry.
func Register(registry *prometheus.Registry) {
	registry.MustRegister(
		AwardAttemptsTotal,
		AwardConflictsTotal,
		AwardFailuresTotal,
		AwardDuration,
		SnapshotRepairsTotal,
		BadgesEarnedTotal,
		TierChangesTotal,
		CoalescerFlushesTotal,
	)
}
