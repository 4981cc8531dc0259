// Package leaderboard provides leaderboard and ranking services.
package leaderboard

import (
	"context"
	"fmt"
	"sort"

	"github.com/amazongreen/storefront/internal/errs"
	"github.com/amazongreen/storefront/internal/models"
	"github.com/amazongreen/storefront/internal/repository"
	"github.com/amazongreen/storefront/pkg/logger"
)

// Ranking metrics.
const (
	MetricCarbonSaved = "carbon_saved"
	MetricEcoScore    = "eco_score"
	MetricMoneySaved  = "money_saved"
	MetricBadges      = "badges"
)

// StandingsRepository interface for user aggregate queries.
type StandingsRepository interface {
	ListStandings(ctx context.Context) ([]repository.Standing, error)
}

// BadgeRepository interface for badge operations.
type BadgeRepository interface {
	GetUserBadgeCount(ctx context.Context, userID uint) (int64, error)
}

// UserRepository interface for user operations.
type UserRepository interface {
	GetDocument(ctx context.Context, id uint) (*models.User, error)
}

// Entry represents a single entry in a leaderboard.
type Entry struct {
	UserID      uint    `json:"user_id"`
	Name        string  `json:"name"`
	EcoScore    float64 `json:"eco_score"`
	CarbonSaved float64 `json:"carbon_saved"`
	MoneySaved  float64 `json:"money_saved"`
	BadgeCount  int     `json:"badge_count"`
	Rank        int     `json:"rank"`
}

// Service handles leaderboard generation and user statistics.
type Service struct {
	standingsRepo StandingsRepository
	badgeRepo     BadgeRepository
	userRepo      UserRepository
	log           *logger.Logger
}

// NewService creates a new leaderboard service with concrete repository types.
func NewService(
	userRepo *repository.UserRepository,
	badgeRepo *repository.BadgeRepository,
	log *logger.Logger,
) *Service {
	return NewServiceWithInterfaces(userRepo, badgeRepo, userRepo, log)
}

// NewServiceWithInterfaces creates a new leaderboard service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(
	standingsRepo StandingsRepository,
	badgeRepo BadgeRepository,
	userRepo UserRepository,
	log *logger.Logger,
) *Service {
	return &Service{
		standingsRepo: standingsRepo,
		badgeRepo:     badgeRepo,
		userRepo:      userRepo,
		log:           log,
	}
}

// ValidMetric reports whether metric names a ranking.
func ValidMetric(metric string) bool {
	switch metric {
	case MetricCarbonSaved, MetricEcoScore, MetricMoneySaved, MetricBadges:
		return true
	}
	return false
}

// Global returns every shopper ranked by metric. An empty metric ranks by
// carbon saved. A limit of zero or less returns all entries.
func (s *Service) Global(ctx context.Context, metric string, limit int) ([]Entry, error) {
	const op = "leaderboard.Global"

	if metric == "" {
		metric = MetricCarbonSaved
	}
	if !ValidMetric(metric) {
		return nil, errs.E(errs.Validation, op, fmt.Errorf("unknown metric %q", metric))
	}

	standings, err := s.standingsRepo.ListStandings(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	entries := make([]Entry, 0, len(standings))
	for _, st := range standings {
		entries = append(entries, Entry{
			UserID:      st.UserID,
			Name:        st.Name,
			EcoScore:    st.EcoScore,
			CarbonSaved: st.CarbonSaved,
			MoneySaved:  st.MoneySaved,
			BadgeCount:  st.BadgeCount,
		})
	}

	sortLeaderboard(entries, metric)

	for i := range entries {
		entries[i].Rank = i + 1
	}

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// sortLeaderboard orders entries by metric, highest first. Ties fall back
// to the lower user id so ranks are stable.
func sortLeaderboard(entries []Entry, metric string) {
	value := func(e Entry) float64 {
		switch metric {
		case MetricEcoScore:
			return e.EcoScore
		case MetricMoneySaved:
			return e.MoneySaved
		case MetricBadges:
			return float64(e.BadgeCount)
		default:
			return e.CarbonSaved
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		vi, vj := value(entries[i]), value(entries[j])
		if vi != vj {
			return vi > vj
		}
		return entries[i].UserID < entries[j].UserID
	})
}

// GetUserRank returns the rank of a user for a metric.
func (s *Service) GetUserRank(ctx context.Context, userID uint, metric string) (int, error) {
	leaderboard, err := s.Global(ctx, metric, 0)
	if err != nil {
		return 0, err
	}

	for _, entry := range leaderboard {
		if entry.UserID == userID {
			return entry.Rank, nil
		}
	}

	return 0, errs.E(errs.NotFound, "leaderboard.GetUserRank", errs.ErrUserNotFound)
}
