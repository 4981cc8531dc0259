// Package api assembles the HTTP router.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/amazongreen/storefront/internal/api/dashboard"
	"github.com/amazongreen/storefront/internal/api/middleware"
	"github.com/amazongreen/storefront/internal/api/storefront"
	"github.com/amazongreen/storefront/internal/config"
	"github.com/amazongreen/storefront/pkg/logger"
)

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

// Options configures the router.
type Options struct {
	Storefront *storefront.Handler
	Dashboard  *dashboard.Handler
	Tokens     middleware.TokenParser
	Auth       config.AuthConfig
	Metrics    config.MetricsConfig
	Health     map[string]HealthCheck
	Log        *logger.Logger
}

// NewRouter builds the gin engine with every route.
func NewRouter(opts Options) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(opts.Log))

	router.GET("/healthz", healthz(opts.Health))
	if opts.Metrics.Enabled {
		path := opts.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		router.GET(path, gin.WrapH(promhttp.Handler()))
	}

	requireAuth := middleware.Auth(opts.Tokens, opts.Auth.CookieName)
	optionalAuth := middleware.Optional(opts.Tokens, opts.Auth.CookieName)

	s := opts.Storefront
	d := opts.Dashboard
	api := router.Group("/api")
	{
		api.POST("/register", s.Register)
		api.POST("/login", s.Login)
		api.GET("/logout", requireAuth, s.Logout)
		api.GET("/me", requireAuth, s.Me)

		api.GET("/products", s.ListProducts)
		api.GET("/products/search", s.SearchProducts)
		api.GET("/products/category/:category", s.ProductsByCategory)
		api.GET("/products/:id", s.GetProduct)

		cart := api.Group("/cart", requireAuth)
		cart.GET("", s.GetCart)
		cart.POST("/:productId", s.AddToCart)
		cart.PUT("/:productId", s.UpdateCartItem)
		cart.DELETE("/:productId", s.RemoveFromCart)

		api.POST("/checkout", requireAuth, s.Checkout)
		api.POST("/buy/:productId", requireAuth, s.BuyNow)
		api.GET("/orders", requireAuth, s.ListOrders)
		api.GET("/orders/:id", requireAuth, s.GetOrder)

		api.GET("/challenges", s.ListChallenges)
		api.GET("/challenges/me", requireAuth, s.MyChallenges)
		api.POST("/challenges/check-completion", requireAuth, s.CheckCompletion)
		api.POST("/challenges/:id/join", requireAuth, s.JoinChallenge)
		api.GET("/challenges/:id/holders", d.GetBadgeHolders)

		api.GET("/leaderboard", d.GetGlobalLeaderboard)
		api.GET("/badges/recent", d.GetRecentBadges)
		api.GET("/users/:id/badges", d.GetUserBadges)
		api.GET("/users/:id/stats", d.GetUserStats)

		api.POST("/chat", optionalAuth, s.Chat)

		api.GET("/groups", s.ListGroups)
		api.POST("/groups", requireAuth, s.CreateGroup)
		api.GET("/groups/:id", s.GetGroup)
		api.POST("/groups/:id/join", requireAuth, s.JoinGroup)
		api.GET("/groups/:id/messages", requireAuth, s.GroupMessages)
		api.POST("/groups/:id/messages", requireAuth, s.PostGroupMessage)
	}

	return router
}

func healthz(checks map[string]HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				results[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}

		state := "ok"
		if status != http.StatusOK {
			state = "degraded"
		}
		c.JSON(status, gin.H{"status": state, "checks": results})
	}
}
