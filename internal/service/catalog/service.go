// Package catalog serves the product catalog with a read-through cache.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/amazongreen/storefront/internal/cache"
	"github.com/amazongreen/storefront/internal/config"
	prommetrics "github.com/amazongreen/storefront/internal/metrics"
	"github.com/amazongreen/storefront/internal/models"
	"github.com/amazongreen/storefront/internal/repository"
	"github.com/amazongreen/storefront/pkg/logger"
)

const (
	keyAll     = "products:all"
	keyProduct = "products:id:%d"
)

// ProductRepository interface for product operations.
type ProductRepository interface {
	GetAll(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id uint) (*models.Product, error)
	Search(ctx context.Context, query string) ([]models.Product, error)
	GetByCategory(ctx context.Context, category string) ([]models.Product, error)
	GetHigherEcoInCategory(ctx context.Context, category string, minEcoScore float64) ([]models.Product, error)
	Upsert(ctx context.Context, products []models.Product) error
}

// Service handles catalog reads and seeding.
type Service struct {
	repo  ProductRepository
	cache cache.Cache
	ttl   time.Duration
	log   *logger.Logger
}

// NewService creates a catalog service with a concrete repository. A nil
// cache disables caching.
func NewService(repo *repository.ProductRepository, c cache.Cache, cfg *config.CacheConfig, log *logger.Logger) *Service {
	return NewServiceWithInterfaces(repo, c, cfg, log)
}

// NewServiceWithInterfaces creates a catalog service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(repo ProductRepository, c cache.Cache, cfg *config.CacheConfig, log *logger.Logger) *Service {
	s := &Service{repo: repo, log: log, ttl: 10 * time.Minute}
	if cfg != nil {
		if !cfg.Enabled {
			c = nil
		}
		if cfg.ProductTTL > 0 {
			s.ttl = cfg.ProductTTL
		}
	}
	s.cache = c
	return s
}

// List returns every product.
func (s *Service) List(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if s.lookup(ctx, keyAll, &products) {
		return products, nil
	}

	products, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	s.store(ctx, keyAll, products)
	return products, nil
}

// Get returns one product.
func (s *Service) Get(ctx context.Context, id uint) (*models.Product, error) {
	key := fmt.Sprintf(keyProduct, id)

	var product models.Product
	if s.lookup(ctx, key, &product) {
		return &product, nil
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.store(ctx, key, p)
	return p, nil
}

// Search matches products whose name contains the query, ignoring case.
func (s *Service) Search(ctx context.Context, query string) ([]models.Product, error) {
	return s.repo.Search(ctx, query)
}

// ByCategory returns the products in a category.
func (s *Service) ByCategory(ctx context.Context, category string) ([]models.Product, error) {
	return s.repo.GetByCategory(ctx, category)
}

// HigherEcoInCategory returns products in the category scoring strictly
// above minEcoScore, best first.
func (s *Service) HigherEcoInCategory(ctx context.Context, category string, minEcoScore float64) ([]models.Product, error) {
	return s.repo.GetHigherEcoInCategory(ctx, category, minEcoScore)
}

// lookup reads a cached JSON value. Any cache failure counts as a miss.
func (s *Service) lookup(ctx context.Context, key string, dst interface{}) bool {
	if s.cache == nil {
		return false
	}

	raw, err := s.cache.Get(ctx, key)
	switch {
	case errors.Is(err, cache.ErrMiss):
		prommetrics.RecordCacheResult("miss")
		return false
	case err != nil:
		prommetrics.RecordCacheResult("error")
		s.log.Warn().Err(err).Str("key", key).Msg("Cache read failed")
		return false
	}

	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		prommetrics.RecordCacheResult("error")
		s.log.Warn().Err(err).Str("key", key).Msg("Discarding undecodable cache entry")
		return false
	}

	prommetrics.RecordCacheResult("hit")
	return true
}

func (s *Service) store(ctx context.Context, key string, v interface{}) {
	if s.cache == nil {
		return
	}

	data, err := json.Marshal(v)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Failed to encode cache entry")
		return
	}
	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Cache write failed")
	}
}

func (s *Service) invalidate(ctx context.Context, products []models.Product) {
	if s.cache == nil {
		return
	}

	keys := []string{keyAll}
	for _, p := range products {
		keys = append(keys, fmt.Sprintf(keyProduct, p.ID))
	}
	if err := s.cache.Del(ctx, keys...); err != nil {
		s.log.Warn().Err(err).Int("keys", len(keys)).Msg("Cache invalidation failed")
	}
}
