// Package app wires repositories, services and HTTP handlers together.
package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/amazongreen/storefront/internal/api"
	"github.com/amazongreen/storefront/internal/api/dashboard"
	"github.com/amazongreen/storefront/internal/api/storefront"
	"github.com/amazongreen/storefront/internal/cache"
	"github.com/amazongreen/storefront/internal/completion"
	"github.com/amazongreen/storefront/internal/config"
	"github.com/amazongreen/storefront/internal/notify"
	"github.com/amazongreen/storefront/internal/repository"
	"github.com/amazongreen/storefront/internal/service/auth"
	"github.com/amazongreen/storefront/internal/service/cart"
	"github.com/amazongreen/storefront/internal/service/catalog"
	"github.com/amazongreen/storefront/internal/service/challenges"
	"github.com/amazongreen/storefront/internal/service/chat"
	"github.com/amazongreen/storefront/internal/service/groupbuy"
	"github.com/amazongreen/storefront/internal/service/leaderboard"
	"github.com/amazongreen/storefront/internal/service/orders"
	"github.com/amazongreen/storefront/pkg/logger"
)

// Deps are the external resources the application runs on.
type Deps struct {
	DB        *repository.DB
	Cache     cache.Cache // nil disables the catalog cache
	Completer completion.Completer
	Notifier  notify.Notifier
}

// App holds the wired services and router.
type App struct {
	Router     *gin.Engine
	Auth       *auth.Service
	Catalog    *catalog.Service
	Cart       *cart.Service
	Orders     *orders.Service
	Challenges *challenges.Service
	Groups     *groupbuy.Service
	Chat       *chat.Service
	Ranking    *leaderboard.Service
}

// New builds the application from configuration.
func New(cfg *config.Config, deps Deps, log *logger.Logger) (*App, error) {
	if deps.Notifier == nil {
		deps.Notifier = notify.Nop{}
	}

	userRepo := repository.NewUserRepository(deps.DB)
	productRepo := repository.NewProductRepository(deps.DB)
	challengeRepo := repository.NewChallengeRepository(deps.DB)
	badgeRepo := repository.NewBadgeRepository(deps.DB)
	groupRepo := repository.NewGroupRepository(deps.DB)

	evaluator, err := challenges.NewEvaluator(&cfg.Challenges)
	if err != nil {
		return nil, fmt.Errorf("failed to create challenge evaluator: %w", err)
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	a := &App{
		Auth:       auth.NewService(userRepo, tokens, log.Component("auth")),
		Catalog:    catalog.NewService(productRepo, deps.Cache, &cfg.Cache, log.Component("catalog")),
		Cart:       cart.NewService(userRepo, productRepo, log.Component("cart")),
		Orders:     orders.NewService(userRepo, productRepo, challengeRepo, evaluator, cfg.Challenges.EnrollmentPolicy, log.Component("orders")),
		Challenges: challenges.NewService(userRepo, challengeRepo, badgeRepo, evaluator, log.Component("challenges")),
		Groups:     groupbuy.NewService(groupRepo, productRepo, deps.Notifier, log.Component("groupbuy")),
		Ranking:    leaderboard.NewService(userRepo, badgeRepo, log.Component("leaderboard")),
	}
	a.Chat = chat.NewService(userRepo, a.Catalog, a.Challenges, deps.Completer, evaluator.Location, log.Component("chat"))

	handlerLog := log.Component("api")
	shop := storefront.NewHandler(storefront.Services{
		Auth:       a.Auth,
		Catalog:    a.Catalog,
		Cart:       a.Cart,
		Orders:     a.Orders,
		Challenges: a.Challenges,
		Groups:     a.Groups,
		Chat:       a.Chat,
	}, cfg.Auth, handlerLog)
	board := dashboard.NewHandler(a.Challenges, a.Ranking, handlerLog)

	health := map[string]api.HealthCheck{
		"database": func(context.Context) error { return deps.DB.Health() },
	}
	if deps.Cache != nil {
		health["cache"] = deps.Cache.Health
	}

	a.Router = api.NewRouter(api.Options{
		Storefront: shop,
		Dashboard:  board,
		Tokens:     tokens,
		Auth:       cfg.Auth,
		Metrics:    cfg.Metrics,
		Health:     health,
		Log:        log.Component("http"),
	})
	return a, nil
}
