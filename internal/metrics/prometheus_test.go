package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordOrderPlaced(t *testing.T) {
	// Reset the counter before test
	OrdersPlacedTotal.Reset()

	before := testutil.ToFloat64(MoneySavedTotal)

	RecordOrderPlaced("cart", 1000, 100, 2.5)
	RecordOrderPlaced("cart", 500, 0, 0)
	RecordOrderPlaced("buy_now", 200, 10, 1)

	count := testutil.ToFloat64(OrdersPlacedTotal.WithLabelValues("cart"))
	if count != 2 {
		t.Errorf("Expected cart order count = 2, got %f", count)
	}

	count = testutil.ToFloat64(OrdersPlacedTotal.WithLabelValues("buy_now"))
	if count != 1 {
		t.Errorf("Expected buy_now order count = 1, got %f", count)
	}

	if saved := testutil.ToFloat64(MoneySavedTotal) - before; saved != 110 {
		t.Errorf("Expected money saved to grow by 110, got %f", saved)
	}
}

func TestRecordOrderFailure(t *testing.T) {
	OrderFailuresTotal.Reset()

	RecordOrderFailure("cart", "validation")
	RecordOrderFailure("cart", "validation")

	count := testutil.ToFloat64(OrderFailuresTotal.WithLabelValues("cart", "validation"))
	if count != 2 {
		t.Errorf("Expected failure count = 2, got %f", count)
	}
}

func TestRecordBadgeAwarded(t *testing.T) {
	BadgesAwardedTotal.Reset()

	RecordBadgeAwarded("weekly")

	count := testutil.ToFloat64(BadgesAwardedTotal.WithLabelValues("weekly"))
	if count != 1 {
		t.Errorf("Expected weekly badge count = 1, got %f", count)
	}
}

func TestRecordChallengeEnrollment_IgnoresZero(t *testing.T) {
	ChallengeEnrollmentsTotal.Reset()

	RecordChallengeEnrollment("purchase", 0)
	RecordChallengeEnrollment("purchase", 3)

	count := testutil.ToFloat64(ChallengeEnrollmentsTotal.WithLabelValues("purchase"))
	if count != 3 {
		t.Errorf("Expected enrollments = 3, got %f", count)
	}
}

func TestRecordRotation(t *testing.T) {
	RotationRunsTotal.Reset()
	RotationChallengesCreatedTotal.Reset()

	RecordRotationRun("success")
	RecordRotationCreated("daily")
	RecordRotationCreated("daily")

	if count := testutil.ToFloat64(RotationRunsTotal.WithLabelValues("success")); count != 1 {
		t.Errorf("Expected rotation run count = 1, got %f", count)
	}
	if count := testutil.ToFloat64(RotationChallengesCreatedTotal.WithLabelValues("daily")); count != 2 {
		t.Errorf("Expected daily created count = 2, got %f", count)
	}
	if ts := testutil.ToFloat64(RotationLastRunTimestamp); ts == 0 {
		t.Error("Expected last run timestamp to be set")
	}
}

func TestRecordChatAndCompletion(t *testing.T) {
	ChatIntentsTotal.Reset()
	CompletionRequestsTotal.Reset()

	RecordChatIntent("carbon_footprint")
	ObserveCompletion("success", 0.4)
	ObserveCompletion("error", 1.2)

	if count := testutil.ToFloat64(ChatIntentsTotal.WithLabelValues("carbon_footprint")); count != 1 {
		t.Errorf("Expected intent count = 1, got %f", count)
	}
	if count := testutil.ToFloat64(CompletionRequestsTotal.WithLabelValues("error")); count != 1 {
		t.Errorf("Expected completion error count = 1, got %f", count)
	}
}

func TestRecordCacheResult(t *testing.T) {
	CacheRequestsTotal.Reset()

	RecordCacheResult("hit")
	RecordCacheResult("miss")
	RecordCacheResult("hit")

	if count := testutil.ToFloat64(CacheRequestsTotal.WithLabelValues("hit")); count != 2 {
		t.Errorf("Expected hit count = 2, got %f", count)
	}
}
