// Package orders turns carts and direct purchases into orders.
package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/amazongreen/storefront/internal/config"
	"github.com/amazongreen/storefront/internal/errs"
	prommetrics "github.com/amazongreen/storefront/internal/metrics"
	"github.com/amazongreen/storefront/internal/models"
	"github.com/amazongreen/storefront/internal/repository"
	"github.com/amazongreen/storefront/internal/service/challenges"
	"github.com/amazongreen/storefront/pkg/logger"
)

// UserRepository interface for user document operations.
type UserRepository interface {
	GetDocument(ctx context.Context, id uint) (*models.User, error)
	SaveDocument(ctx context.Context, user *models.User) error
	GetOrders(ctx context.Context, userID uint) ([]models.Order, error)
	GetOrder(ctx context.Context, userID, orderID uint) (*models.Order, error)
}

// ProductRepository interface for product lookups.
type ProductRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Product, error)
}

// ChallengeRepository interface for the active challenge catalog.
type ChallengeRepository interface {
	GetActive(ctx context.Context) ([]models.Challenge, error)
}

// Result is a placed order with its side effects.
type Result struct {
	Order   models.Order       `json:"order"`
	Joined  int                `json:"joined_challenges"`
	Awarded []models.UserBadge `json:"new_badges"`
}

// Service handles order placement.
type Service struct {
	userRepo      UserRepository
	productRepo   ProductRepository
	challengeRepo ChallengeRepository
	evaluator     *challenges.Evaluator
	policy        string
	now           func() time.Time
	log           *logger.Logger
}

// NewService creates a new order service with concrete repository types.
func NewService(
	userRepo *repository.UserRepository,
	productRepo *repository.ProductRepository,
	challengeRepo *repository.ChallengeRepository,
	evaluator *challenges.Evaluator,
	policy string,
	log *logger.Logger,
) *Service {
	return NewServiceWithInterfaces(userRepo, productRepo, challengeRepo, evaluator, policy, log)
}

// NewServiceWithInterfaces creates a new order service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(
	userRepo UserRepository,
	productRepo ProductRepository,
	challengeRepo ChallengeRepository,
	evaluator *challenges.Evaluator,
	policy string,
	log *logger.Logger,
) *Service {
	if policy == "" {
		policy = config.EnrollOnPurchase
	}
	return &Service{
		userRepo:      userRepo,
		productRepo:   productRepo,
		challengeRepo: challengeRepo,
		evaluator:     evaluator,
		policy:        policy,
		now:           time.Now,
		log:           log,
	}
}

// SetClock overrides the time source.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Checkout places an order for the user's cart and clears it.
func (s *Service) Checkout(ctx context.Context, userID uint) (*Result, error) {
	const op = "orders.Checkout"

	user, err := s.userRepo.GetDocument(ctx, userID)
	if err != nil {
		prommetrics.RecordOrderFailure(models.OrderSourceCart, errs.KindOf(err).String())
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(user.Cart) == 0 {
		prommetrics.RecordOrderFailure(models.OrderSourceCart, errs.Validation.String())
		return nil, errs.E(errs.Validation, op, errs.ErrEmptyCart)
	}

	items := make([]models.OrderItem, 0, len(user.Cart))
	for _, ci := range user.Cart {
		qty := ci.Quantity
		if qty < 1 {
			qty = 1
		}
		items = append(items, SnapshotItem(ci.ProductID, ci.Product, qty))
	}
	user.Cart = nil

	return s.place(ctx, op, user, items, models.OrderSourceCart)
}

// BuyNow places a single-product order without touching the cart.
func (s *Service) BuyNow(ctx context.Context, userID, productID uint, quantity int) (*Result, error) {
	const op = "orders.BuyNow"

	if quantity < 1 {
		quantity = 1
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		prommetrics.RecordOrderFailure(models.OrderSourceBuyNow, errs.KindOf(err).String())
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.userRepo.GetDocument(ctx, userID)
	if err != nil {
		prommetrics.RecordOrderFailure(models.OrderSourceBuyNow, errs.KindOf(err).String())
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	items := []models.OrderItem{SnapshotItem(product.ID, product.Snapshot(), quantity)}
	return s.place(ctx, op, user, items, models.OrderSourceBuyNow)
}

// place appends the order, applies the enrollment policy, evaluates
// challenges and saves the whole document at once.
func (s *Service) place(ctx context.Context, op string, user *models.User, items []models.OrderItem, source string) (*Result, error) {
	now := s.now()

	active, err := s.challengeRepo.GetActive(ctx)
	if err != nil {
		prommetrics.RecordOrderFailure(source, errs.KindOf(err).String())
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	order := BuildOrder(items, source, now)
	applyOrder(user, order)

	res := &Result{}
	if s.policy == config.EnrollOnPurchase {
		res.Joined = challenges.EnrollAll(user, active, now)
	}
	res.Awarded = s.evaluator.Evaluate(user, active, now)

	if err := s.userRepo.SaveDocument(ctx, user); err != nil {
		s.log.Error().
			Err(err).
			Uint("user_id", user.ID).
			Str("source", source).
			Msg("Failed to save order")
		prommetrics.RecordOrderFailure(source, errs.KindOf(err).String())
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	res.Order = user.Orders[len(user.Orders)-1]
	if res.Awarded == nil {
		res.Awarded = []models.UserBadge{}
	}

	prommetrics.RecordOrderPlaced(source, order.TotalAmount, order.MoneySaved, order.TotalCarbonSaved)
	prommetrics.RecordChallengeEnrollment("purchase", res.Joined)
	prommetrics.RecordChallengeEvaluation("purchase", "success")
	challenges.RecordAwards(res.Awarded, active)

	s.log.Info().
		Uint("user_id", user.ID).
		Str("order_number", order.OrderNumber).
		Str("source", source).
		Int("items", len(items)).
		Float64("total_amount", order.TotalAmount).
		Int("joined", res.Joined).
		Int("badges", len(res.Awarded)).
		Msg("Order placed")

	return res, nil
}

// ListOrders returns the user's orders, newest first.
func (s *Service) ListOrders(ctx context.Context, userID uint) ([]models.Order, error) {
	return s.userRepo.GetOrders(ctx, userID)
}

// GetOrder returns one of the user's orders.
func (s *Service) GetOrder(ctx context.Context, userID, orderID uint) (*models.Order, error) {
	return s.userRepo.GetOrder(ctx, userID, orderID)
}
