// Package rotation keeps one active challenge per frequency and period.
package rotation

import (
	"context"
	"fmt"
	"time"

	"github.com/amazongreen/storefront/internal/config"
	prommetrics "github.com/amazongreen/storefront/internal/metrics"
	"github.com/amazongreen/storefront/internal/models"
	"github.com/amazongreen/storefront/internal/notify"
	"github.com/amazongreen/storefront/pkg/logger"
)

// ChallengeRepository interface for challenge catalog maintenance.
type ChallengeRepository interface {
	FindByPeriod(ctx context.Context, frequency models.Frequency, start, end time.Time) (*models.Challenge, error)
	Create(ctx context.Context, challenge *models.Challenge) error
	RetireExpired(ctx context.Context, now time.Time) ([]uint, error)
}

// Result summarises one rotation pass.
type Result struct {
	Created []models.Challenge
	Retired []uint
}

// Service creates the challenge for each configured template and period.
type Service struct {
	repo          ChallengeRepository
	templates     []config.TemplateConfig
	icons         map[string]string
	location      *time.Location
	retireExpired bool
	notifier      notify.Notifier
	log           *logger.Logger
}

// NewService creates a rotation service.
func NewService(
	repo ChallengeRepository,
	challenges *config.ChallengesConfig,
	rotation *config.RotationConfig,
	notifier notify.Notifier,
	log *logger.Logger,
) (*Service, error) {
	loc, err := challenges.GetLocation()
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", challenges.Timezone, err)
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Service{
		repo:          repo,
		templates:     challenges.Templates,
		icons:         challenges.BadgeIcons,
		location:      loc,
		retireExpired: rotation.RetireExpired,
		notifier:      notifier,
		log:           log,
	}, nil
}

// PeriodBounds returns the [start, end) period containing now: the calendar
// day, the week starting Sunday, or the calendar month.
func PeriodBounds(frequency models.Frequency, now time.Time, loc *time.Location) (start, end time.Time, err error) {
	local := now.In(loc)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	switch frequency {
	case models.FrequencyDaily:
		return day, day.AddDate(0, 0, 1), nil
	case models.FrequencyWeekly:
		start = day.AddDate(0, 0, -int(local.Weekday()))
		return start, start.AddDate(0, 0, 7), nil
	case models.FrequencyMonthly:
		start = time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(0, 1, 0), nil
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("unknown frequency %q", frequency)
	}
}

// Run retires expired challenges when configured and then ensures the
// current period's challenges exist.
func (s *Service) Run(ctx context.Context, now time.Time) (*Result, error) {
	start := time.Now()
	res := &Result{}

	if s.retireExpired {
		ids, err := s.repo.RetireExpired(ctx, now)
		if err != nil {
			prommetrics.RecordRotationRun("error")
			return nil, err
		}
		res.Retired = ids
		if len(ids) > 0 {
			s.log.Info().Interface("challenge_ids", ids).Msg("Retired expired challenges")
		}
	}

	created, err := s.EnsurePeriodChallenges(ctx, now)
	res.Created = created
	if err != nil {
		prommetrics.RecordRotationRun("error")
		return res, err
	}

	prommetrics.RecordRotationRun("success")
	s.log.Info().
		Int("created", len(res.Created)).
		Int("retired", len(res.Retired)).
		Dur("duration", time.Since(start)).
		Msg("Challenge rotation complete")

	return res, nil
}

// EnsurePeriodChallenges creates each template's challenge for the period
// containing now unless one already exists. The check and the insert are not
// atomic: two concurrent runs can both create the same period.
func (s *Service) EnsurePeriodChallenges(ctx context.Context, now time.Time) ([]models.Challenge, error) {
	var created []models.Challenge

	for _, tmpl := range s.templates {
		freq := models.Frequency(tmpl.Frequency)
		start, end, err := PeriodBounds(freq, now, s.location)
		if err != nil {
			return created, err
		}

		existing, err := s.repo.FindByPeriod(ctx, freq, start, end)
		if err != nil {
			return created, fmt.Errorf("failed to look up %s challenge: %w", freq, err)
		}
		if existing != nil {
			s.log.Debug().
				Str("frequency", string(freq)).
				Uint("challenge_id", existing.ID).
				Msg("Challenge already exists for this period")
			continue
		}

		challenge := s.build(tmpl, start, end)
		if err := s.repo.Create(ctx, &challenge); err != nil {
			return created, fmt.Errorf("failed to create %s challenge: %w", freq, err)
		}
		created = append(created, challenge)
		prommetrics.RecordRotationCreated(string(freq))

		s.log.Info().
			Str("frequency", string(freq)).
			Uint("challenge_id", challenge.ID).
			Time("start", start).
			Time("end", end).
			Msg("Created challenge for period")

		if err := s.notifier.AnnounceChallenge(ctx, &challenge); err != nil {
			s.log.Warn().Err(err).Uint("challenge_id", challenge.ID).Msg("Failed to announce challenge")
		}
	}

	return created, nil
}

func (s *Service) build(tmpl config.TemplateConfig, start, end time.Time) models.Challenge {
	freq := models.Frequency(tmpl.Frequency)
	return models.Challenge{
		Name:        tmpl.Name,
		Description: tmpl.Description,
		Type:        models.ChallengeType(tmpl.Type),
		Frequency:   freq,
		TargetValue: tmpl.TargetValue,
		RewardBadge: models.RewardBadge{
			Name:        freq.Title() + " Challenge Winner",
			Description: fmt.Sprintf("Awarded for completing the %s challenge", freq),
			IconURL:     s.icons[tmpl.Frequency],
		},
		IsActive:  true,
		StartDate: start,
		EndDate:   end,
	}
}
