package mocks

import (
	"context"

	"github.com/amazongreen/storefront/internal/errs"
	"github.com/amazongreen/storefront/internal/models"
)

// MockUserRepository is a simple mock for the user document store
type MockUserRepository struct {
	GetDocumentFunc  func(ctx context.Context, id uint) (*models.User, error)
	SaveDocumentFunc func(ctx context.Context, user *models.User) error

	Saved []*models.User
}

func (m *MockUserRepository) GetDocument(ctx context.Context, id uint) (*models.User, error) {
	if m.GetDocumentFunc != nil {
		return m.GetDocumentFunc(ctx, id)
	}
	return nil, errs.E(errs.NotFound, "users.GetDocument", errs.ErrUserNotFound)
}

func (m *MockUserRepository) SaveDocument(ctx context.Context, user *models.User) error {
	m.Saved = append(m.Saved, user)
	if m.SaveDocumentFunc != nil {
		return m.SaveDocumentFunc(ctx, user)
	}
	return nil
}

// MockProductRepository is a simple mock for catalog lookups
type MockProductRepository struct {
	Products []models.Product
}

func (m *MockProductRepository) GetByID(_ context.Context, id uint) (*models.Product, error) {
	for i := range m.Products {
		if m.Products[i].ID == id {
			p := m.Products[i]
			return &p, nil
		}
	}
	return nil, errs.E(errs.NotFound, "products.GetByID", errs.ErrProductNotFound)
}

// HigherEcoInCategory returns products in category scoring above minEcoScore,
// in stored order.
func (m *MockProductRepository) HigherEcoInCategory(_ context.Context, category string, minEcoScore float64) ([]models.Product, error) {
	var out []models.Product
	for _, p := range m.Products {
		if p.Category == category && p.EcoScore > minEcoScore {
			out = append(out, p)
		}
	}
	return out, nil
}
