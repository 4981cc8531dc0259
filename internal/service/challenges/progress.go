package challenges

import (
	"time"

	"github.com/amazongreen/storefront/internal/config"
	"github.com/amazongreen/storefront/internal/models"
)

// Progress is a challenge's standing for one user at a point in time.
type Progress struct {
	Progress    float64   `json:"progress"`
	Target      float64   `json:"target"`
	Satisfied   bool      `json:"satisfied"`
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`
}

// EvaluateChallengeProgress measures the user's orders against the rule for
// the challenge's frequency. Daily and monthly count eco-qualifying orders in
// the local calendar day or month. Weekly sums the carbon figure of
// eco-qualifying orders from Monday 00:00 local time up to now. Thresholds
// come from rules; the challenge's TargetValue is not consulted.
func EvaluateChallengeProgress(
	challenge *models.Challenge,
	rules config.RulesConfig,
	orders []models.Order,
	now time.Time,
	loc *time.Location,
) Progress {
	if loc == nil {
		loc = time.Local
	}
	local := now.In(loc)
	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	var p Progress
	switch challenge.Frequency {
	case models.FrequencyDaily:
		p.WindowStart, p.WindowEnd = dayStart, dayStart.AddDate(0, 0, 1)
		p.Target = float64(rules.DailyOrders)
		p.Progress = float64(countQualifying(orders, p.WindowStart, p.WindowEnd))

	case models.FrequencyWeekly:
		sinceMonday := (int(local.Weekday()) + 6) % 7
		p.WindowStart, p.WindowEnd = dayStart.AddDate(0, 0, -sinceMonday), now
		p.Target = rules.WeeklyCarbon
		for i := range orders {
			o := &orders[i]
			if o.PlacedAt.Before(p.WindowStart) || o.PlacedAt.After(now) || !o.IsEcoQualifying() {
				continue
			}
			p.Progress += o.CarbonFigure()
		}

	case models.FrequencyMonthly:
		p.WindowStart = time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
		p.WindowEnd = p.WindowStart.AddDate(0, 1, 0)
		p.Target = float64(rules.MonthlyOrders)
		p.Progress = float64(countQualifying(orders, p.WindowStart, p.WindowEnd))

	default:
		return p
	}

	p.Satisfied = p.Target > 0 && p.Progress >= p.Target
	return p
}

// countQualifying counts eco-qualifying orders placed in [start, end).
func countQualifying(orders []models.Order, start, end time.Time) int {
	n := 0
	for i := range orders {
		o := &orders[i]
		if o.PlacedAt.Before(start) || !o.PlacedAt.Before(end) {
			continue
		}
		if o.IsEcoQualifying() {
			n++
		}
	}
	return n
}

// Evaluator applies the completion rules in a fixed timezone.
type Evaluator struct {
	Rules    config.RulesConfig
	Location *time.Location
}

// NewEvaluator creates an evaluator from challenge settings.
func NewEvaluator(cfg *config.ChallengesConfig) (*Evaluator, error) {
	loc, err := cfg.GetLocation()
	if err != nil {
		return nil, err
	}
	return &Evaluator{Rules: cfg.Rules, Location: loc}, nil
}

// Progress returns the user's progress on a challenge.
func (e *Evaluator) Progress(challenge *models.Challenge, orders []models.Order, now time.Time) Progress {
	return EvaluateChallengeProgress(challenge, e.Rules, orders, now, e.Location)
}

// Evaluate awards badges for satisfied challenges in memory. A challenge is
// considered only while it is joined and has no badge yet; a completed one is
// removed from the joined set and its badge appended. It returns the new badges.
func (e *Evaluator) Evaluate(user *models.User, active []models.Challenge, now time.Time) []models.UserBadge {
	var awarded []models.UserBadge
	for i := range active {
		c := &active[i]
		if !user.HasJoined(c.ID) || user.HasBadgeFor(c.ID) {
			continue
		}
		if !e.Progress(c, user.Orders, now).Satisfied {
			continue
		}
		user.Leave(c.ID)
		badge := c.Award(user.ID, now)
		user.Badges = append(user.Badges, badge)
		awarded = append(awarded, badge)
	}
	return awarded
}

// EnrollAll joins every given challenge the user has neither joined nor
// completed. It returns how many were joined.
func EnrollAll(user *models.User, active []models.Challenge, now time.Time) int {
	n := 0
	for i := range active {
		if user.Join(active[i].ID, now) {
			n++
		}
	}
	return n
}
