package rotation

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amazongreen/storefront/pkg/logger"
)

func TestBuildCronExpression(t *testing.T) {
	tests := []struct {
		name     string
		schedule string
		want     string
		wantErr  bool
	}{
		{name: "daily at midnight", schedule: "00:00", want: "0 0 * * *"},
		{name: "daily at 14:30", schedule: "14:30", want: "30 14 * * *"},
		{name: "cron expression", schedule: "5 0 * * *", want: "5 0 * * *"},
		{name: "descriptor", schedule: "@hourly", want: "@hourly"},
		{name: "empty", schedule: "", wantErr: true},
		{name: "invalid format no colon", schedule: "0900", wantErr: true},
		{name: "invalid hour", schedule: "25:00", wantErr: true},
		{name: "invalid minute", schedule: "09:60", wantErr: true},
		{name: "invalid cron", schedule: "61 * * * *", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildCronExpression(tt.schedule)

			if (err != nil) != tt.wantErr {
				t.Errorf("buildCronExpression() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("buildCronExpression() = %v, want %v", got, tt.want)
			}
		})
	}
}

type countingRunner struct {
	calls atomic.Int32
	err   error
}

func (r *countingRunner) Run(context.Context, time.Time) (*Result, error) {
	r.calls.Add(1)
	return &Result{}, r.err
}

func TestScheduler_RunOnceSurvivesErrors(t *testing.T) {
	runner := &countingRunner{err: errors.New("database unavailable")}
	s := NewScheduler(runner, "@daily", time.UTC, logger.Nop())

	s.runOnce(context.Background())
	s.runOnce(context.Background())

	if got := runner.calls.Load(); got != 2 {
		t.Errorf("Expected 2 runs, got %d", got)
	}
}

func TestScheduler_StartStop(t *testing.T) {
	s := NewScheduler(&countingRunner{}, "@daily", time.UTC, logger.Nop())
	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	s.Stop()

	bad := NewScheduler(&countingRunner{}, "not a schedule", time.UTC, logger.Nop())
	if err := bad.Start(); err == nil {
		t.Error("Expected error for invalid schedule")
	}
}
