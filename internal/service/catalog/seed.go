package catalog

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/amazongreen/storefront/internal/models"
)

// SeedFile is the product fixture document.
type SeedFile struct {
	Products []models.Product `yaml:"products"`
}

// ParseProducts decodes and validates a product fixture document.
func ParseProducts(r io.Reader) ([]models.Product, error) {
	var doc SeedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	seen := make(map[string]bool, len(doc.Products))
	for i := range doc.Products {
		p := &doc.Products[i]
		p.SKU = strings.TrimSpace(p.SKU)
		if p.SKU == "" {
			return nil, fmt.Errorf("product %d: sku is required", i)
		}
		if seen[p.SKU] {
			return nil, fmt.Errorf("product %d: duplicate sku %q", i, p.SKU)
		}
		seen[p.SKU] = true
		if strings.TrimSpace(p.Name) == "" {
			return nil, fmt.Errorf("product %s: name is required", p.SKU)
		}
		if p.Price < 0 {
			return nil, fmt.Errorf("product %s: price must not be negative", p.SKU)
		}
		if p.Category == "" {
			p.Category = "General"
		}
	}
	return doc.Products, nil
}

// Seed loads products from a YAML file and upserts them by SKU.
func (s *Service) Seed(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()

	products, err := ParseProducts(f)
	if err != nil {
		return 0, err
	}
	return s.Import(ctx, products)
}

// Import upserts products and drops their cache entries.
func (s *Service) Import(ctx context.Context, products []models.Product) (int, error) {
	if err := s.repo.Upsert(ctx, products); err != nil {
		return 0, err
	}

	stored, err := s.repo.GetAll(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to list products for cache invalidation")
		stored = products
	}
	s.invalidate(ctx, stored)

	s.log.Info().Int("products", len(products)).Msg("Catalog seeded")
	return len(products), nil
}
