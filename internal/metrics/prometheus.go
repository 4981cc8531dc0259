// Package metrics provides Prometheus exporters for application metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the storefront.
var (
	// Orders.
	OrdersPlacedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_orders_placed_total",
			Help: "Total number of orders placed",
		},
		[]string{"source"},
	)

	OrderFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_order_failures_total",
			Help: "Total number of failed order attempts",
		},
		[]string{"source", "reason"},
	)

	MoneySavedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_money_saved_total",
			Help: "Total eco discount granted across all orders",
		},
	)

	CarbonSavedKgTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_carbon_saved_kg_total",
			Help: "Total carbon figure of placed orders in kilograms",
		},
	)

	OrderAmount = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "storefront_order_amount",
			Help:    "Total amount per order",
			Buckets: prometheus.ExponentialBuckets(50, 2, 12), // 50 to ~100k
		},
	)

	// Challenge gamification metrics.
	BadgesAwardedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "badges_awarded_total",
			Help: "Total number of badges awarded",
		},
		[]string{"frequency"},
	)

	ChallengeEvaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "challenge_evaluations_total",
			Help: "Total challenge evaluation passes",
		},
		[]string{"trigger", "status"},
	)

	ChallengeEnrollmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "challenge_enrollments_total",
			Help: "Total challenges joined",
		},
		[]string{"trigger"},
	)

	// Rotation job metrics.
	RotationRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "challenge_rotation_runs_total",
			Help: "Total challenge rotation executions",
		},
		[]string{"status"},
	)

	RotationChallengesCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "challenge_rotation_created_total",
			Help: "Total challenges created by rotation",
		},
		[]string{"frequency"},
	)

	RotationLastRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "challenge_rotation_last_run_timestamp",
			Help: "Unix timestamp of last rotation run",
		},
	)

	// Chat assistant metrics.
	ChatIntentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_intents_total",
			Help: "Total chat messages by classified intent",
		},
		[]string{"intent"},
	)

	CompletionRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "completion_requests_total",
			Help: "Total requests to the text-completion service",
		},
		[]string{"status"},
	)

	CompletionDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "completion_duration_seconds",
			Help:    "Latency of text-completion requests",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~51s
		},
	)

	// Cache metrics.
	CacheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_requests_total",
			Help: "Catalog cache lookups by result",
		},
		[]string{"result"},
	)

	// Group-buy metrics.
	GroupsCompletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "groupbuy_groups_completed_total",
			Help: "Total group-buys that reached their member target",
		},
	)

	// Notification metrics.
	NotificationsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_sent_total",
			Help: "Total webhook notifications by outcome",
		},
		[]string{"kind", "status"},
	)
)

// RecordOrderPlaced records a successful order and its savings.
func RecordOrderPlaced(source string, amount, moneySaved, carbonKg float64) {
	OrdersPlacedTotal.WithLabelValues(source).Inc()
	OrderAmount.Observe(amount)
	if moneySaved > 0 {
		MoneySavedTotal.Add(moneySaved)
	}
	if carbonKg > 0 {
		CarbonSavedKgTotal.Add(carbonKg)
	}
}

// RecordOrderFailure records a failed order attempt.
func RecordOrderFailure(source, reason string) {
	OrderFailuresTotal.WithLabelValues(source, reason).Inc()
}

// RecordBadgeAwarded records a badge award event.
func RecordBadgeAwarded(frequency string) {
	BadgesAwardedTotal.WithLabelValues(frequency).Inc()
}

// RecordChallengeEvaluation records one evaluation pass.
func RecordChallengeEvaluation(trigger, status string) {
	ChallengeEvaluationsTotal.WithLabelValues(trigger, status).Inc()
}

// RecordChallengeEnrollment records challenges joined by a trigger.
func RecordChallengeEnrollment(trigger string, count int) {
	if count > 0 {
		ChallengeEnrollmentsTotal.WithLabelValues(trigger).Add(float64(count))
	}
}

// RecordRotationRun records a rotation job execution.
func RecordRotationRun(status string) {
	RotationRunsTotal.WithLabelValues(status).Inc()
	RotationLastRunTimestamp.SetToCurrentTime()
}

// RecordRotationCreated records a challenge created by rotation.
func RecordRotationCreated(frequency string) {
	RotationChallengesCreatedTotal.WithLabelValues(frequency).Inc()
}

// RecordChatIntent records a classified chat message.
func RecordChatIntent(intent string) {
	ChatIntentsTotal.WithLabelValues(intent).Inc()
}

// ObserveCompletion records a completion request outcome and latency.
func ObserveCompletion(status string, seconds float64) {
	CompletionRequestsTotal.WithLabelValues(status).Inc()
	CompletionDurationSeconds.Observe(seconds)
}

// RecordCacheResult records a cache hit, miss or error.
func RecordCacheResult(result string) {
	CacheRequestsTotal.WithLabelValues(result).Inc()
}

// RecordGroupCompleted records a group reaching its member target.
func RecordGroupCompleted() {
	GroupsCompletedTotal.Inc()
}

// RecordNotification records a webhook notification attempt.
func RecordNotification(kind, status string) {
	NotificationsSentTotal.WithLabelValues(kind, status).Inc()
}
