package rotation

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/amazongreen/storefront/pkg/logger"
)

// Runner performs one rotation pass.
type Runner interface {
	Run(ctx context.Context, now time.Time) (*Result, error)
}

// Scheduler runs rotation passes on a cron schedule.
type Scheduler struct {
	runner   Runner
	schedule string
	location *time.Location
	log      *logger.Logger
	cron     *cron.Cron
}

// NewScheduler creates a scheduler. The schedule is a five-field cron
// expression, a descriptor such as "@daily", or a daily "HH:MM" time.
func NewScheduler(runner Runner, schedule string, location *time.Location, log *logger.Logger) *Scheduler {
	if location == nil {
		location = time.Local
	}
	return &Scheduler{
		runner:   runner,
		schedule: schedule,
		location: location,
		log:      log,
	}
}

// Start registers the rotation job and starts the cron scheduler.
func (s *Scheduler) Start() error {
	cronExpr, err := buildCronExpression(s.schedule)
	if err != nil {
		return fmt.Errorf("failed to build cron expression: %w", err)
	}

	s.cron = cron.New(cron.WithLocation(s.location))

	_, err = s.cron.AddFunc(cronExpr, func() {
		s.runOnce(context.Background())
	})
	if err != nil {
		return fmt.Errorf("failed to register rotation job: %w", err)
	}

	s.cron.Start()

	nextRun := ""
	if entries := s.cron.Entries(); len(entries) > 0 {
		nextRun = entries[0].Next.Format(time.RFC3339)
	}

	s.log.Info().
		Str("schedule", cronExpr).
		Str("timezone", s.location.String()).
		Str("next_run", nextRun).
		Msg("Rotation scheduler started")

	return nil
}

// Stop waits for a running job and shuts the scheduler down.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
		s.log.Info().Msg("Rotation scheduler stopped")
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	start := time.Now()
	if _, err := s.runner.Run(ctx, start); err != nil {
		s.log.Error().
			Err(err).
			Dur("duration", time.Since(start)).
			Msg("Challenge rotation failed")
	}
}

// buildCronExpression accepts a cron expression or a daily "HH:MM" time.
func buildCronExpression(schedule string) (string, error) {
	schedule = strings.TrimSpace(schedule)
	if schedule == "" {
		return "", fmt.Errorf("schedule is empty")
	}

	if strings.HasPrefix(schedule, "@") || strings.Contains(schedule, " ") {
		if _, err := cron.ParseStandard(schedule); err != nil {
			return "", fmt.Errorf("invalid cron expression %q: %w", schedule, err)
		}
		return schedule, nil
	}

	parts := strings.Split(schedule, ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid time format %q, expected HH:MM", schedule)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("invalid hour %q", parts[0])
	}

	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid minute %q", parts[1])
	}

	// Format: "minute hour day month weekday"
	return fmt.Sprintf("%d %d * * *", minute, hour), nil
}
