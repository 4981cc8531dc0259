package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/amazongreen/storefront/internal/app"
	"github.com/amazongreen/storefront/internal/cache"
	"github.com/amazongreen/storefront/internal/completion"
	"github.com/amazongreen/storefront/internal/config"
	"github.com/amazongreen/storefront/internal/notify"
	"github.com/amazongreen/storefront/internal/repository"
	"github.com/amazongreen/storefront/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (default: search ./config.yaml, ./config/, /etc/amazon-green/)")
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

	if err := run(cfg, log); err != nil {
		log.Error().Err(err).Msg("Server exited with error")
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := repository.NewDB(&cfg.Database.Postgres, log.Component("database"))
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := db.Migrate(&cfg.Database.Postgres, log.Component("migrate")); err != nil {
		return err
	}

	deps := app.Deps{
		DB:        db,
		Completer: completion.NewClient(&cfg.Completion, log.Component("completion")),
	}

	if cfg.Cache.Enabled {
		redisCache, err := cache.NewRedis(&cfg.Database.Redis, log.Component("cache"))
		if err != nil {
			return err
		}
		defer func() { _ = redisCache.Close() }()
		deps.Cache = redisCache
	} else {
		log.Info().Msg("Catalog cache disabled")
	}

	notifier, err := notify.NewClient(&cfg.Notify, log.Component("notify"))
	if err != nil {
		return err
	}
	deps.Notifier = notifier

	application, err := app.New(cfg, deps, log)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           application.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().
			Int("port", cfg.Server.Port).
			Str("environment", cfg.Server.Environment).
			Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Shutting down server")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	log.Info().Msg("Server stopped")
	return nil
}
