package repository

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm/clause"

	"github.com/amazongreen/storefront/internal/errs"
	"github.com/amazongreen/storefront/internal/models"
)

// ProductRepository handles catalog database operations.
type ProductRepository struct {
	db *DB
}

// NewProductRepository creates a new product repository.
func NewProductRepository(db *DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// GetAll returns every product ordered by id.
func (r *ProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&products).Error; err != nil {
		return nil, errs.E(errs.Persistence, "products.GetAll", err)
	}
	return products, nil
}

// GetByID retrieves a product by its ID.
func (r *ProductRepository) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, translate(fmt.Sprintf("products.GetByID(%d)", id), err, errs.ErrProductNotFound)
	}
	return &product, nil
}

// Search returns products whose name contains query, ignoring case.
func (r *ProductRepository) Search(ctx context.Context, query string) ([]models.Product, error) {
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE ? ESCAPE '\\'", pattern).
		Order("id ASC").
		Find(&products).Error
	if err != nil {
		return nil, errs.E(errs.Persistence, "products.Search", err)
	}
	return products, nil
}

// GetByCategory returns all products in a category.
func (r *ProductRepository) GetByCategory(ctx context.Context, category string) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("category = ?", category).
		Order("id ASC").
		Find(&products).Error
	if err != nil {
		return nil, errs.E(errs.Persistence, "products.GetByCategory", err)
	}
	return products, nil
}

// GetHigherEcoInCategory returns products in category with an eco score
// strictly above minEcoScore, highest first.
func (r *ProductRepository) GetHigherEcoInCategory(ctx context.Context, category string, minEcoScore float64) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("category = ? AND eco_score > ?", category, minEcoScore).
		Order("eco_score DESC, id ASC").
		Find(&products).Error
	if err != nil {
		return nil, errs.E(errs.Persistence, "products.GetHigherEcoInCategory", err)
	}
	return products, nil
}

// Upsert inserts products or updates them in place by SKU.
func (r *ProductRepository) Upsert(ctx context.Context, products []models.Product) error {
	if len(products) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "sku"}},
			DoUpdates: clause.AssignmentColumns(upsertColumns),
		}).
		Create(&products).Error
	if err != nil {
		return errs.E(errs.Persistence, "products.Upsert", err)
	}
	return nil
}

var upsertColumns = []string{
	"name", "category", "price", "mrp", "discount", "url", "image_url", "points",
	"rating", "reviews", "carbon_footprint", "eco_score", "is_eco_friendly",
	"group_buy_eligible", "updated_at",
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
