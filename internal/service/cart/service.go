// Package cart manages a user's shopping cart.
package cart

import (
	"context"
	"fmt"

	"github.com/amazongreen/storefront/internal/models"
	"github.com/amazongreen/storefront/internal/repository"
	"github.com/amazongreen/storefront/pkg/logger"
)

// UserRepository interface for cart persistence.
type UserRepository interface {
	GetDocument(ctx context.Context, id uint) (*models.User, error)
	SaveCart(ctx context.Context, user *models.User) error
}

// ProductRepository interface for product lookups.
type ProductRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Product, error)
}

// Service handles cart changes.
type Service struct {
	userRepo    UserRepository
	productRepo ProductRepository
	log         *logger.Logger
}

// NewService creates a new cart service with concrete repository types.
func NewService(userRepo *repository.UserRepository, productRepo *repository.ProductRepository, log *logger.Logger) *Service {
	return NewServiceWithInterfaces(userRepo, productRepo, log)
}

// NewServiceWithInterfaces creates a new cart service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(userRepo UserRepository, productRepo ProductRepository, log *logger.Logger) *Service {
	return &Service{userRepo: userRepo, productRepo: productRepo, log: log}
}

// Get returns the user's cart.
func (s *Service) Get(ctx context.Context, userID uint) ([]models.CartItem, error) {
	user, err := s.userRepo.GetDocument(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("cart.Get: %w", err)
	}
	return items(user), nil
}

// Add puts one unit of the product in the cart, incrementing an existing line.
func (s *Service) Add(ctx context.Context, userID, productID uint) ([]models.CartItem, error) {
	const op = "cart.Add"

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user, err := s.userRepo.GetDocument(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if line := find(user, productID); line != nil {
		line.Quantity++
	} else {
		user.Cart = append(user.Cart, models.CartItem{
			ProductID: product.ID,
			Product:   product.Snapshot(),
			Quantity:  1,
		})
	}

	if err := s.userRepo.SaveCart(ctx, user); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Debug().Uint("user_id", userID).Uint("product_id", productID).Msg("Added to cart")
	return items(user), nil
}

// UpdateQuantity sets a line's quantity. A quantity of zero or less removes it.
func (s *Service) UpdateQuantity(ctx context.Context, userID, productID uint, quantity int) ([]models.CartItem, error) {
	const op = "cart.UpdateQuantity"

	user, err := s.userRepo.GetDocument(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if quantity <= 0 {
		remove(user, productID)
	} else if line := find(user, productID); line != nil {
		line.Quantity = quantity
	} else {
		product, err := s.productRepo.GetByID(ctx, productID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		user.Cart = append(user.Cart, models.CartItem{
			ProductID: product.ID,
			Product:   product.Snapshot(),
			Quantity:  quantity,
		})
	}

	if err := s.userRepo.SaveCart(ctx, user); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return items(user), nil
}

// Remove drops the product's line from the cart. Removing an absent product is a no-op.
func (s *Service) Remove(ctx context.Context, userID, productID uint) ([]models.CartItem, error) {
	const op = "cart.Remove"

	user, err := s.userRepo.GetDocument(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !remove(user, productID) {
		return items(user), nil
	}
	if err := s.userRepo.SaveCart(ctx, user); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return items(user), nil
}

func find(user *models.User, productID uint) *models.CartItem {
	for i := range user.Cart {
		if user.Cart[i].ProductID == productID {
			return &user.Cart[i]
		}
	}
	return nil
}

func remove(user *models.User, productID uint) bool {
	kept := user.Cart[:0]
	removed := false
	for _, ci := range user.Cart {
		if ci.ProductID == productID {
			removed = true
			continue
		}
		kept = append(kept, ci)
	}
	user.Cart = kept
	return removed
}

func items(user *models.User) []models.CartItem {
	if user.Cart == nil {
		return []models.CartItem{}
	}
	return user.Cart
}
