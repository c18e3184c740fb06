// Package metrics provides Prometheus metrics for Mentor.
// Counters and gauges for recorded actions, experience, badges, streaks
// and the persistence layer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Actions ────────────────────────────────────────────────────────────────

// ActionsRecorded tracks successfully persisted actions by kind.
var ActionsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "mentor",
	Name:      "actions_recorded_total",
	Help:      "Total study actions recorded.",
}, []string{"kind"})

// ActionsRejected tracks actions refused before any mutation.
var ActionsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "mentor",
	Name:      "actions_rejected_total",
	Help:      "Total study actions rejected.",
}, []string{"reason"})

// ─── Experience ─────────────────────────────────────────────────────────────

// ExperienceAwarded tracks XP granted by source (action kind, badge, streak).
var ExperienceAwarded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "mentor",
	Name:      "experience_awarded_total",
	Help:      "Total experience points awarded.",
}, []string{"source"})

// LevelUps tracks level boundaries crossed.
var LevelUps = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "mentor",
	Name:      "level_ups_total",
	Help:      "Total level-ups.",
})

// CurrentLevel tracks the profile's level after the last write.
var CurrentLevel = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "mentor",
	Name:      "level_current",
	Help:      "Current profile level.",
})

// ─── Badges & streaks ───────────────────────────────────────────────────────

// BadgesUnlocked tracks badge awards by id.
var BadgesUnlocked = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "mentor",
	Name:      "badges_unlocked_total",
	Help:      "Total badges unlocked.",
}, []string{"badge"})

// CurrentStreak tracks the consecutive study day count.
var CurrentStreak = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "mentor",
	Name:      "streak_days_current",
	Help:      "Current study streak in days.",
})

// ─── Storage ────────────────────────────────────────────────────────────────

// StoreFailures tracks KV failures by operation (get, set, remove, decode).
var StoreFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "mentor",
	Name:      "store_failures_total",
	Help:      "Total key-value store failures by operation.",
}, []string{"op"})

// ─── HTTP ───────────────────────────────────────────────────────────────────

// HTTPLatency tracks API request duration by route pattern.
var HTTPLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "mentor",
	Name:      "http_request_duration_seconds",
	Help:      "API request duration in seconds.",
	Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
}, []string{"route", "status"})
