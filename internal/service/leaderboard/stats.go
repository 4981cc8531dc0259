package leaderboard

import (
	"context"
	"fmt"

	"github.com/amazongreen/storefront/internal/models"
)

// UserStats represents a shopper's sustainability totals and standing.
type UserStats struct {
	UserID           uint               `json:"user_id"`
	Name             string             `json:"name"`
	EcoScore         float64            `json:"eco_score"`
	CarbonSaved      float64            `json:"carbon_saved"`
	MoneySaved       float64            `json:"money_saved"`
	CircularityScore float64            `json:"circularity_score"`
	OrderCount       int                `json:"order_count"`
	ActiveChallenges int                `json:"active_challenges"`
	BadgeCount       int64              `json:"badge_count"`
	Badges           []models.UserBadge `json:"badges"`
	Ranks            map[string]int     `json:"ranks"`
}

// GetUserStats returns a user's totals, badges and rank on every metric.
func (s *Service) GetUserStats(ctx context.Context, userID uint) (*UserStats, error) {
	user, err := s.userRepo.GetDocument(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("leaderboard.GetUserStats: %w", err)
	}

	stats := &UserStats{
		UserID:           user.ID,
		Name:             user.Name,
		EcoScore:         user.EcoScore,
		CarbonSaved:      user.CarbonSaved,
		MoneySaved:       user.MoneySaved,
		CircularityScore: user.CircularityScore,
		OrderCount:       len(user.Orders),
		ActiveChallenges: len(user.CurrentChallenges),
		Badges:           user.Badges,
		Ranks:            make(map[string]int, 4),
	}
	if stats.Badges == nil {
		stats.Badges = []models.UserBadge{}
	}

	count, err := s.badgeRepo.GetUserBadgeCount(ctx, userID)
	if err != nil {
		s.log.Warn().Err(err).Uint("user_id", userID).Msg("Failed to get badge count")
		count = int64(len(user.Badges))
	}
	stats.BadgeCount = count

	for _, metric := range []string{MetricCarbonSaved, MetricEcoScore, MetricMoneySaved, MetricBadges} {
		rank, err := s.GetUserRank(ctx, userID, metric)
		if err != nil {
			s.log.Warn().Err(err).Uint("user_id", userID).Str("metric", metric).Msg("Failed to get rank")
			continue
		}
		stats.Ranks[metric] = rank
	}

	return stats, nil
}
