// Package storefront provides REST API handlers for shopping, challenges,
// group-buys and the chat assistant.
package storefront

import (
	"context"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/amazongreen/storefront/internal/api/middleware"
	"github.com/amazongreen/storefront/internal/api/respond"
	"github.com/amazongreen/storefront/internal/config"
	"github.com/amazongreen/storefront/internal/models"
	"github.com/amazongreen/storefront/internal/service/auth"
	"github.com/amazongreen/storefront/internal/service/challenges"
	"github.com/amazongreen/storefront/internal/service/chat"
	"github.com/amazongreen/storefront/internal/service/groupbuy"
	"github.com/amazongreen/storefront/internal/service/orders"
	"github.com/amazongreen/storefront/pkg/logger"
)

// AuthService interface for account operations.
type AuthService interface {
	Register(ctx context.Context, reg auth.Registration) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	CurrentUser(ctx context.Context, userID uint) (*models.User, error)
}

// CatalogService interface for product queries.
type CatalogService interface {
	List(ctx context.Context) ([]models.Product, error)
	Get(ctx context.Context, id uint) (*models.Product, error)
	Search(ctx context.Context, query string) ([]models.Product, error)
	ByCategory(ctx context.Context, category string) ([]models.Product, error)
}

// CartService interface for cart operations.
type CartService interface {
	Get(ctx context.Context, userID uint) ([]models.CartItem, error)
	Add(ctx context.Context, userID, productID uint) ([]models.CartItem, error)
	UpdateQuantity(ctx context.Context, userID, productID uint, quantity int) ([]models.CartItem, error)
	Remove(ctx context.Context, userID, productID uint) ([]models.CartItem, error)
}

// OrderService interface for placing and reading orders.
type OrderService interface {
	Checkout(ctx context.Context, userID uint) (*orders.Result, error)
	BuyNow(ctx context.Context, userID, productID uint, quantity int) (*orders.Result, error)
	ListOrders(ctx context.Context, userID uint) ([]models.Order, error)
	GetOrder(ctx context.Context, userID, orderID uint) (*models.Order, error)
}

// ChallengeService interface for challenge operations.
type ChallengeService interface {
	ListActive(ctx context.Context) ([]models.Challenge, error)
	Join(ctx context.Context, userID, challengeID uint) (*models.Challenge, error)
	CheckCompletion(ctx context.Context, userID uint) ([]models.UserBadge, error)
	UserStatus(ctx context.Context, userID uint) (*challenges.Status, error)
}

// GroupService interface for group-buy operations.
type GroupService interface {
	Create(ctx context.Context, adminID uint, name string, productID uint, membersNeeded int) (*models.Group, error)
	Join(ctx context.Context, groupID, userID uint, items []groupbuy.Item) (*models.Group, error)
	Get(ctx context.Context, groupID uint) (*models.Group, error)
	List(ctx context.Context, status string) ([]models.Group, error)
	PostMessage(ctx context.Context, groupID, userID uint, content string) (*models.GroupMessage, error)
	Messages(ctx context.Context, groupID, userID uint) ([]models.GroupMessage, error)
}

// ChatService interface for the chat assistant.
type ChatService interface {
	Handle(ctx context.Context, req chat.Request) (*chat.Response, error)
}

// Services groups the handler's dependencies.
type Services struct {
	Auth       AuthService
	Catalog    CatalogService
	Cart       CartService
	Orders     OrderService
	Challenges ChallengeService
	Groups     GroupService
	Chat       ChatService
}

// Handler handles storefront API requests.
type Handler struct {
	svc  Services
	auth config.AuthConfig
	log  *logger.Logger
}

// NewHandler creates a new storefront handler.
func NewHandler(svc Services, authCfg config.AuthConfig, log *logger.Logger) *Handler {
	return &Handler{svc: svc, auth: authCfg, log: log}
}

// Helper functions

// currentUser returns the authenticated user id set by middleware.Auth.
func (h *Handler) currentUser(c *gin.Context) uint {
	id, _ := middleware.UserID(c)
	return id
}

// parseID extracts and validates a numeric URL parameter.
func (h *Handler) parseID(c *gin.Context, param string) (uint, error) {
	idStr := c.Param(param)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s: %s", param, idStr)
	}
	return uint(id), nil
}

// errorResponse sends a standardized error response.
func (h *Handler) errorResponse(c *gin.Context, statusCode int, message string) {
	respond.Error(c, statusCode, message)
}
