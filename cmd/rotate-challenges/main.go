package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amazongreen/storefront/internal/config"
	"github.com/amazongreen/storefront/internal/notify"
	"github.com/amazongreen/storefront/internal/repository"
	"github.com/amazongreen/storefront/internal/service/rotation"
	"github.com/amazongreen/storefront/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	schedule := flag.String("schedule", "", "Cron expression or daily HH:MM; overrides rotation.schedule")
	once := flag.Bool("once", false, "Run a single rotation pass and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Close() }()

	if *schedule != "" {
		cfg.Rotation.Schedule = *schedule
	}
	if *once {
		cfg.Rotation.Schedule = ""
	}

	if err := run(cfg, log); err != nil {
		log.Error().Err(err).Msg("Challenge rotation exited with error")
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	db, err := repository.NewDB(&cfg.Database.Postgres, log.Component("database"))
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := db.Migrate(&cfg.Database.Postgres, log.Component("migrate")); err != nil {
		return err
	}

	notifier, err := notify.NewClient(&cfg.Notify, log.Component("notify"))
	if err != nil {
		return err
	}

	svc, err := rotation.NewService(
		repository.NewChallengeRepository(db),
		&cfg.Challenges,
		&cfg.Rotation,
		notifier,
		log.Component("rotation"),
	)
	if err != nil {
		return err
	}

	if cfg.Rotation.Schedule == "" {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		res, err := svc.Run(ctx, time.Now())
		if err != nil {
			return err
		}
		log.Info().
			Int("created", len(res.Created)).
			Int("retired", len(res.Retired)).
			Msg("Challenge rotation finished")
		return nil
	}

	loc, err := cfg.Challenges.GetLocation()
	if err != nil {
		return err
	}

	scheduler := rotation.NewScheduler(svc, cfg.Rotation.Schedule, loc, log.Component("scheduler"))
	if err := scheduler.Start(); err != nil {
		return err
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Stopping challenge rotation")
	scheduler.Stop()
	return nil
}
