package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amazongreen/storefront/internal/config"
	"github.com/amazongreen/storefront/internal/errs"
	"github.com/amazongreen/storefront/internal/models"
	"github.com/amazongreen/storefront/internal/repository"
	"github.com/amazongreen/storefront/pkg/logger"
	"github.com/amazongreen/storefront/test/mocks"
	"github.com/amazongreen/storefront/test/testutil"
)

func setup(t *testing.T) (*Service, *mocks.MockCache, *repository.DB) {
	t.Helper()

	db := testutil.NewDB(t)
	c := mocks.NewMockCache()
	svc := NewService(repository.NewProductRepository(db), c,
		&config.CacheConfig{Enabled: true, ProductTTL: time.Minute}, logger.Nop())
	return svc, c, db
}

func TestList_ReadThrough(t *testing.T) {
	svc, c, db := setup(t)
	ctx := context.Background()

	p := testutil.CreateProduct(t, db, models.Product{Name: "Bamboo toothbrush", Price: 99})

	first, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.True(t, c.Has(keyAll))

	// Served from cache even after the row is gone.
	require.NoError(t, db.Delete(&models.Product{}, p.ID).Error)
	second, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, "Bamboo toothbrush", second[0].Name)
}

func TestGet_ReadThrough(t *testing.T) {
	svc, c, db := setup(t)
	ctx := context.Background()

	p := testutil.CreateProduct(t, db, models.Product{Name: "Steel straw", Price: 49, Points: []string{"reusable"}})

	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"reusable"}, got.Points)
	assert.True(t, c.Has(fmt.Sprintf(keyProduct, p.ID)))

	_, err = svc.Get(ctx, 12345)
	assert.ErrorIs(t, err, errs.ErrProductNotFound)
}

func TestList_CacheFailureFallsBackToDatabase(t *testing.T) {
	svc, c, db := setup(t)
	c.Err = errors.New("connection refused")

	testutil.CreateProduct(t, db, models.Product{Name: "Cloth bag", Price: 10})

	products, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 1)
}

func TestCacheDisabled(t *testing.T) {
	db := testutil.NewDB(t)
	c := mocks.NewMockCache()
	svc := NewService(repository.NewProductRepository(db), c, &config.CacheConfig{Enabled: false}, logger.Nop())

	_, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Zero(t, c.Gets)
	assert.Zero(t, c.Sets)
}

func TestHigherEcoInCategory(t *testing.T) {
	svc, _, db := setup(t)

	testutil.CreateProduct(t, db, models.Product{Name: "A", Category: "Kitchen", EcoScore: 50})
	testutil.CreateProduct(t, db, models.Product{Name: "B", Category: "Kitchen", EcoScore: 90})
	testutil.CreateProduct(t, db, models.Product{Name: "C", Category: "Kitchen", EcoScore: 70})
	testutil.CreateProduct(t, db, models.Product{Name: "D", Category: "Bath", EcoScore: 99})

	got, err := svc.HigherEcoInCategory(context.Background(), "Kitchen", 50)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "B", got[0].Name)
	assert.Equal(t, "C", got[1].Name)
}

const seedYAML = `
products:
  - sku: ECO-001
    name: Bamboo Toothbrush
    category: Personal Care
    price: 99
    mrp: 149
    points: ["biodegradable handle"]
    carbon_footprint: 0.2
    eco_score: 88
    is_eco_friendly: true
  - sku: ECO-002
    name: Steel Bottle
    price: 499
    eco_score: 75
`

func TestParseProducts(t *testing.T) {
	products, err := ParseProducts(strings.NewReader(seedYAML))
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Personal Care", products[0].Category)
	assert.Equal(t, "General", products[1].Category)
	assert.True(t, products[0].IsEcoFriendly)

	tests := map[string]string{
		"missing sku":   "products:\n  - name: X\n    price: 1\n",
		"duplicate sku": "products:\n  - sku: A\n    name: X\n  - sku: A\n    name: Y\n",
		"missing name":  "products:\n  - sku: A\n",
		"negative":      "products:\n  - sku: A\n    name: X\n    price: -1\n",
		"unknown field": "products:\n  - sku: A\n    name: X\n    colour: green\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseProducts(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestSeed_UpsertsAndInvalidates(t *testing.T) {
	svc, c, _ := setup(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "products.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seedYAML), 0o600))

	n, err := svc.Seed(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	products, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.True(t, c.Has(keyAll))

	updated := strings.Replace(seedYAML, "price: 499", "price: 449", 1)
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o600))
	_, err = svc.Seed(ctx, path)
	require.NoError(t, err)
	assert.False(t, c.Has(keyAll))

	products, err = svc.Search(ctx, "steel")
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, 449.0, products[0].Price)

	_, err = svc.Seed(ctx, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
