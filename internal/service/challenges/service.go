// Package challenges evaluates sustainability challenges and awards badges.
package challenges

import (
	"context"
	"fmt"
	"time"

	"github.com/amazongreen/storefront/internal/errs"
	prommetrics "github.com/amazongreen/storefront/internal/metrics"
	"github.com/amazongreen/storefront/internal/models"
	"github.com/amazongreen/storefront/internal/repository"
	"github.com/amazongreen/storefront/pkg/logger"
)

// UserRepository interface for user document operations.
type UserRepository interface {
	GetDocument(ctx context.Context, id uint) (*models.User, error)
	SaveDocument(ctx context.Context, user *models.User) error
	SaveJoined(ctx context.Context, user *models.User) error
}

// ChallengeRepository interface for challenge catalog operations.
type ChallengeRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Challenge, error)
	GetActive(ctx context.Context) ([]models.Challenge, error)
	GetAll(ctx context.Context) ([]models.Challenge, error)
}

// BadgeRepository interface for badge queries.
type BadgeRepository interface {
	HasUserEarnedBadge(ctx context.Context, userID, challengeID uint) (bool, error)
	GetUserBadges(ctx context.Context, userID uint) ([]models.UserBadge, error)
	GetRecentlyAwardedBadges(ctx context.Context, since time.Time) ([]models.UserBadge, error)
	GetUsersWithBadge(ctx context.Context, challengeID uint) ([]models.User, error)
	GetBadgeHoldersCount(ctx context.Context, challengeID uint) (int64, error)
}

// Challenge states reported in a user's status.
const (
	StateActive    = "active"
	StateCompleted = "completed"
)

// ChallengeStatus is a challenge with the user's live progress.
type ChallengeStatus struct {
	Challenge models.Challenge `json:"challenge"`
	Progress
	Status    string `json:"status"`
	Completed bool   `json:"completed"`
}

// Status is a user's joined and completed challenges plus earned badges.
type Status struct {
	Challenges []ChallengeStatus  `json:"challenges"`
	Badges     []models.UserBadge `json:"badges"`
}

// Service handles challenge enrollment and completion.
type Service struct {
	userRepo      UserRepository
	challengeRepo ChallengeRepository
	badgeRepo     BadgeRepository
	evaluator     *Evaluator
	now           func() time.Time
	log           *logger.Logger
}

// NewService creates a new challenge service with concrete repository types.
func NewService(
	userRepo *repository.UserRepository,
	challengeRepo *repository.ChallengeRepository,
	badgeRepo *repository.BadgeRepository,
	evaluator *Evaluator,
	log *logger.Logger,
) *Service {
	return NewServiceWithInterfaces(userRepo, challengeRepo, badgeRepo, evaluator, log)
}

// NewServiceWithInterfaces creates a new challenge service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(
	userRepo UserRepository,
	challengeRepo ChallengeRepository,
	badgeRepo BadgeRepository,
	evaluator *Evaluator,
	log *logger.Logger,
) *Service {
	return &Service{
		userRepo:      userRepo,
		challengeRepo: challengeRepo,
		badgeRepo:     badgeRepo,
		evaluator:     evaluator,
		now:           time.Now,
		log:           log,
	}
}

// SetClock overrides the time source.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Evaluator returns the rule evaluator shared with other services.
func (s *Service) Evaluator() *Evaluator {
	return s.evaluator
}

// ListActive returns the active challenge catalog.
func (s *Service) ListActive(ctx context.Context) ([]models.Challenge, error) {
	return s.challengeRepo.GetActive(ctx)
}

// CheckCompletion evaluates the user's joined challenges and persists any
// awards in a single save. When the save fails no award is kept.
func (s *Service) CheckCompletion(ctx context.Context, userID uint) ([]models.UserBadge, error) {
	const op = "challenges.CheckCompletion"

	user, err := s.userRepo.GetDocument(ctx, userID)
	if err != nil {
		prommetrics.RecordChallengeEvaluation("check", "error")
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	active, err := s.challengeRepo.GetActive(ctx)
	if err != nil {
		prommetrics.RecordChallengeEvaluation("check", "error")
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	awarded := s.evaluator.Evaluate(user, active, s.now())
	if len(awarded) == 0 {
		prommetrics.RecordChallengeEvaluation("check", "success")
		return []models.UserBadge{}, nil
	}

	if err := s.userRepo.SaveDocument(ctx, user); err != nil {
		s.log.Error().
			Err(err).
			Uint("user_id", userID).
			Int("badges", len(awarded)).
			Msg("Failed to persist awarded badges")
		prommetrics.RecordChallengeEvaluation("check", "error")
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	RecordAwards(awarded, active)
	prommetrics.RecordChallengeEvaluation("check", "success")

	for _, b := range awarded {
		s.log.Info().
			Uint("user_id", userID).
			Uint("challenge_id", b.ChallengeID).
			Str("badge", b.Name).
			Msg("Badge awarded")
	}

	return awarded, nil
}

// RecordAwards counts awarded badges by their challenge's frequency.
func RecordAwards(awarded []models.UserBadge, challenges []models.Challenge) {
	freq := make(map[uint]models.Frequency, len(challenges))
	for _, c := range challenges {
		freq[c.ID] = c.Frequency
	}
	for _, b := range awarded {
		prommetrics.RecordBadgeAwarded(string(freq[b.ChallengeID]))
	}
}

// Join enrolls the user in an active challenge. Joining a challenge that is
// already joined or already completed is a no-op.
func (s *Service) Join(ctx context.Context, userID, challengeID uint) (*models.Challenge, error) {
	const op = "challenges.Join"

	challenge, err := s.challengeRepo.GetByID(ctx, challengeID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !challenge.IsActive {
		return nil, errs.E(errs.NotFound, op, errs.ErrChallengeNotFound)
	}

	earned, err := s.badgeRepo.HasUserEarnedBadge(ctx, userID, challengeID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if earned {
		return challenge, nil
	}

	user, err := s.userRepo.GetDocument(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !user.Join(challengeID, s.now()) {
		return challenge, nil
	}
	if err := s.userRepo.SaveJoined(ctx, user); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	prommetrics.RecordChallengeEnrollment("explicit", 1)
	s.log.Info().
		Uint("user_id", userID).
		Uint("challenge_id", challengeID).
		Msg("User joined challenge")

	return challenge, nil
}

// UserStatus reports the user's joined challenges with live progress and the
// challenges already completed. Joined ids missing from the catalog are skipped.
func (s *Service) UserStatus(ctx context.Context, userID uint) (*Status, error) {
	const op = "challenges.UserStatus"

	user, err := s.userRepo.GetDocument(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	all, err := s.challengeRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.status(user, all), nil
}

// StatusOf builds the status of an already loaded user document.
func (s *Service) StatusOf(ctx context.Context, user *models.User) (*Status, error) {
	all, err := s.challengeRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("challenges.StatusOf: %w", err)
	}
	return s.status(user, all), nil
}

func (s *Service) status(user *models.User, all []models.Challenge) *Status {
	byID := make(map[uint]*models.Challenge, len(all))
	for i := range all {
		byID[all[i].ID] = &all[i]
	}

	now := s.now()
	st := &Status{
		Challenges: []ChallengeStatus{},
		Badges:     user.Badges,
	}
	if st.Badges == nil {
		st.Badges = []models.UserBadge{}
	}

	for _, uc := range user.CurrentChallenges {
		c, ok := byID[uc.ChallengeID]
		if !ok {
			continue
		}
		st.Challenges = append(st.Challenges, ChallengeStatus{
			Challenge: *c,
			Progress:  s.evaluator.Progress(c, user.Orders, now),
			Status:    StateActive,
		})
	}

	for _, b := range user.Badges {
		c, ok := byID[b.ChallengeID]
		if !ok {
			continue
		}
		p := s.evaluator.Progress(c, user.Orders, now)
		p.Progress = p.Target
		p.Satisfied = true
		st.Challenges = append(st.Challenges, ChallengeStatus{
			Challenge: *c,
			Progress:  p,
			Status:    StateCompleted,
			Completed: true,
		})
	}

	return st
}

// GetUserBadges returns the badges a user has earned, newest first.
func (s *Service) GetUserBadges(ctx context.Context, userID uint) ([]models.UserBadge, error) {
	return s.badgeRepo.GetUserBadges(ctx, userID)
}

// GetBadgeHolders returns the users who completed a challenge.
func (s *Service) GetBadgeHolders(ctx context.Context, challengeID uint) ([]models.User, int64, error) {
	users, err := s.badgeRepo.GetUsersWithBadge(ctx, challengeID)
	if err != nil {
		return nil, 0, err
	}
	count, err := s.badgeRepo.GetBadgeHoldersCount(ctx, challengeID)
	if err != nil {
		return nil, 0, err
	}
	return users, count, nil
}

// GetRecentBadges returns badges awarded since the given time.
func (s *Service) GetRecentBadges(ctx context.Context, since time.Time) ([]models.UserBadge, error) {
	return s.badgeRepo.GetRecentlyAwardedBadges(ctx, since)
}
