package challenges

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amazongreen/storefront/internal/config"
	"github.com/amazongreen/storefront/internal/models"
)

var defaultRules = config.RulesConfig{DailyOrders: 1, WeeklyCarbon: 5, MonthlyOrders: 10}

// Wednesday.
var wednesday = time.Date(2026, 10, 14, 15, 0, 0, 0, time.UTC)

func ecoOrder(at time.Time, carbon float64) models.Order {
	return models.Order{
		PlacedAt:         at,
		TotalCarbonSaved: carbon,
		Items:            []models.OrderItem{{Name: "bottle", Quantity: 1, EcoScore: 70}},
	}
}

func plainOrder(at time.Time, carbon float64) models.Order {
	return models.Order{
		PlacedAt:         at,
		TotalCarbonSaved: carbon,
		Items:            []models.OrderItem{{Name: "plastic", Quantity: 1}},
	}
}

func TestEvaluateChallengeProgress_Daily(t *testing.T) {
	daily := &models.Challenge{Frequency: models.FrequencyDaily}

	tests := []struct {
		name      string
		orders    []models.Order
		satisfied bool
		progress  float64
	}{
		{"eco order today", []models.Order{ecoOrder(wednesday.Add(-time.Hour), 0)}, true, 1},
		{"only non-eco order today", []models.Order{plainOrder(wednesday.Add(-time.Hour), 0)}, false, 0},
		{"eco order yesterday", []models.Order{ecoOrder(wednesday.AddDate(0, 0, -1), 0)}, false, 0},
		{"no orders", nil, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := EvaluateChallengeProgress(daily, defaultRules, tt.orders, wednesday, time.UTC)
			assert.Equal(t, tt.satisfied, p.Satisfied)
			assert.Equal(t, tt.progress, p.Progress)
			assert.Equal(t, 1.0, p.Target)
			assert.Equal(t, time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC), p.WindowStart)
			assert.Equal(t, time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC), p.WindowEnd)
		})
	}
}

func TestEvaluateChallengeProgress_WeeklyStartsMonday(t *testing.T) {
	weekly := &models.Challenge{Frequency: models.FrequencyWeekly}
	monday := time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC)

	orders := []models.Order{
		ecoOrder(monday, 3),                   // boundary is inclusive
		ecoOrder(monday.Add(30*time.Hour), 2), // Tuesday
		ecoOrder(monday.Add(-time.Minute), 10),
		plainOrder(monday.Add(time.Hour), 10),
	}

	p := EvaluateChallengeProgress(weekly, defaultRules, orders, wednesday, time.UTC)
	assert.Equal(t, monday, p.WindowStart)
	assert.Equal(t, wednesday, p.WindowEnd)
	assert.InDelta(t, 5.0, p.Progress, 1e-9)
	assert.True(t, p.Satisfied)
}

func TestEvaluateChallengeProgress_WeeklyOnSunday(t *testing.T) {
	weekly := &models.Challenge{Frequency: models.FrequencyWeekly}
	sunday := time.Date(2026, 10, 18, 20, 0, 0, 0, time.UTC)

	p := EvaluateChallengeProgress(weekly, defaultRules, nil, sunday, time.UTC)
	assert.Equal(t, time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC), p.WindowStart)
}

func TestEvaluateChallengeProgress_WeeklyPrefersOrderCarbonFootprint(t *testing.T) {
	weekly := &models.Challenge{Frequency: models.FrequencyWeekly}
	figure := 6.0

	o := ecoOrder(wednesday.Add(-time.Hour), 1)
	o.CarbonFootprint = &figure

	p := EvaluateChallengeProgress(weekly, defaultRules, []models.Order{o}, wednesday, time.UTC)
	assert.Equal(t, 6.0, p.Progress)
	assert.True(t, p.Satisfied)
}

func TestEvaluateChallengeProgress_WeeklyExcludesFutureOrders(t *testing.T) {
	weekly := &models.Challenge{Frequency: models.FrequencyWeekly}

	p := EvaluateChallengeProgress(weekly, defaultRules,
		[]models.Order{ecoOrder(wednesday.Add(time.Hour), 9)}, wednesday, time.UTC)
	assert.False(t, p.Satisfied)
}

func TestEvaluateChallengeProgress_WeeklyThreshold(t *testing.T) {
	weekly := &models.Challenge{Frequency: models.FrequencyWeekly}
	monday := time.Date(2026, 10, 12, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		carbon    float64
		satisfied bool
	}{
		{"just below", 4.99, false},
		{"exactly at threshold", 5, true},
		{"above", 5.01, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := EvaluateChallengeProgress(weekly, defaultRules,
				[]models.Order{ecoOrder(monday, tt.carbon)}, wednesday, time.UTC)
			assert.Equal(t, tt.satisfied, p.Satisfied)
			assert.InDelta(t, tt.carbon, p.Progress, 1e-9)
		})
	}

	user := &models.User{
		ID:                1,
		Orders:            []models.Order{ecoOrder(monday, 4.99)},
		CurrentChallenges: []models.UserChallenge{{ChallengeID: 3}},
	}
	weekly.ID = 3
	e := &Evaluator{Rules: defaultRules, Location: time.UTC}
	assert.Empty(t, e.Evaluate(user, []models.Challenge{*weekly}, wednesday))

	user.Orders = []models.Order{ecoOrder(monday, 5)}
	awarded := e.Evaluate(user, []models.Challenge{*weekly}, wednesday)
	require.Len(t, awarded, 1)
	assert.Equal(t, uint(3), awarded[0].ChallengeID)
}

func TestEvaluateChallengeProgress_Monthly(t *testing.T) {
	// TargetValue is display-only.
	monthly := &models.Challenge{Frequency: models.FrequencyMonthly, TargetValue: 1}
	first := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	var orders []models.Order
	for i := 0; i < 9; i++ {
		orders = append(orders, ecoOrder(first.Add(time.Duration(i)*time.Hour), 0))
	}
	orders = append(orders, ecoOrder(first.Add(-time.Second), 0))

	p := EvaluateChallengeProgress(monthly, defaultRules, orders, wednesday, time.UTC)
	assert.Equal(t, 9.0, p.Progress)
	assert.False(t, p.Satisfied)
	assert.Equal(t, time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC), p.WindowEnd)

	orders = append(orders, ecoOrder(wednesday, 0))
	p = EvaluateChallengeProgress(monthly, defaultRules, orders, wednesday, time.UTC)
	assert.True(t, p.Satisfied)
}

func TestEvaluateChallengeProgress_UsesLocation(t *testing.T) {
	daily := &models.Challenge{Frequency: models.FrequencyDaily}
	ist := time.FixedZone("IST", 5*3600+1800)

	// 01:30 on the 14th in IST, 20:00 on the 13th in UTC.
	order := ecoOrder(time.Date(2026, 10, 13, 20, 0, 0, 0, time.UTC), 0)

	assert.True(t, EvaluateChallengeProgress(daily, defaultRules, []models.Order{order}, wednesday, ist).Satisfied)
	assert.False(t, EvaluateChallengeProgress(daily, defaultRules, []models.Order{order}, wednesday, time.UTC).Satisfied)
}

func TestEvaluateChallengeProgress_UnknownFrequency(t *testing.T) {
	p := EvaluateChallengeProgress(&models.Challenge{Frequency: "yearly"}, defaultRules,
		[]models.Order{ecoOrder(wednesday, 100)}, wednesday, time.UTC)
	assert.False(t, p.Satisfied)
	assert.Zero(t, p.Target)
}

func TestEvaluator_Evaluate(t *testing.T) {
	e := &Evaluator{Rules: defaultRules, Location: time.UTC}
	daily := models.Challenge{
		ID:          1,
		Frequency:   models.FrequencyDaily,
		RewardBadge: models.RewardBadge{Name: "Daily Challenge Winner", IconURL: "icon"},
	}
	monthly := models.Challenge{ID: 2, Frequency: models.FrequencyMonthly}
	unjoined := models.Challenge{ID: 3, Frequency: models.FrequencyDaily}

	user := &models.User{ID: 7, Orders: []models.Order{ecoOrder(wednesday.Add(-time.Hour), 0)}}
	require.True(t, user.Join(daily.ID, wednesday))
	require.True(t, user.Join(monthly.ID, wednesday))

	awarded := e.Evaluate(user, []models.Challenge{daily, monthly, unjoined}, wednesday)
	require.Len(t, awarded, 1)
	assert.Equal(t, uint(1), awarded[0].ChallengeID)
	assert.Equal(t, uint(7), awarded[0].UserID)
	assert.Equal(t, "Daily Challenge Winner", awarded[0].Name)
	assert.Equal(t, wednesday, awarded[0].DateEarned)

	assert.False(t, user.HasJoined(daily.ID))
	assert.True(t, user.HasJoined(monthly.ID))
	assert.True(t, user.HasBadgeFor(daily.ID))
	assert.False(t, user.HasBadgeFor(unjoined.ID))

	// Re-evaluating never duplicates a badge.
	user.CurrentChallenges = append(user.CurrentChallenges, models.UserChallenge{ChallengeID: daily.ID})
	assert.Empty(t, e.Evaluate(user, []models.Challenge{daily}, wednesday))
	assert.Len(t, user.Badges, 1)
}

func TestEnrollAll(t *testing.T) {
	user := &models.User{ID: 1}
	user.Badges = []models.UserBadge{{ChallengeID: 2}}
	require.True(t, user.Join(3, wednesday))

	active := []models.Challenge{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}}
	assert.Equal(t, 2, EnrollAll(user, active, wednesday))
	assert.True(t, user.HasJoined(1))
	assert.False(t, user.HasJoined(2))
	assert.True(t, user.HasJoined(4))
	assert.Len(t, user.CurrentChallenges, 3)
}

func TestNewEvaluator_InvalidTimezone(t *testing.T) {
	_, err := NewEvaluator(&config.ChallengesConfig{Timezone: "Mars/Olympus"})
	assert.Error(t, err)

	e, err := NewEvaluator(&config.ChallengesConfig{Timezone: "UTC", Rules: defaultRules})
	require.NoError(t, err)
	assert.Equal(t, time.UTC, e.Location)
}
