package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/amazongreen/storefront/internal/cache"
	"github.com/amazongreen/storefront/internal/config"
	"github.com/amazongreen/storefront/internal/repository"
	"github.com/amazongreen/storefront/internal/service/catalog"
	"github.com/amazongreen/storefront/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	productsPath := flag.String("products", "config/products.yaml", "Path to the product catalog YAML")
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

	db, err := repository.NewDB(&cfg.Database.Postgres, log.Component("database"))
	if err != nil {
		log.Error().Err(err).Msg("Failed to connect to database")
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if err := db.Migrate(&cfg.Database.Postgres, log.Component("migrate")); err != nil {
		log.Error().Err(err).Msg("Failed to migrate database")
		os.Exit(1)
	}

	var productCache cache.Cache
	if cfg.Cache.Enabled {
		redisCache, err := cache.NewRedis(&cfg.Database.Redis, log.Component("cache"))
		if err != nil {
			log.Warn().Err(err).Msg("Cache unavailable, stale product entries expire on their TTL")
		} else {
			defer func() { _ = redisCache.Close() }()
			productCache = redisCache
		}
	}

	svc := catalog.NewService(repository.NewProductRepository(db), productCache, &cfg.Cache, log.Component("catalog"))

	n, err := svc.Seed(context.Background(), *productsPath)
	if err != nil {
		log.Error().Err(err).Str("path", *productsPath).Msg("Failed to seed products")
		os.Exit(1)
	}

	log.Info().Int("products", n).Str("path", *productsPath).Msg("Product catalog seeded")
}
