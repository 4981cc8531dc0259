// Package dashboard provides REST API handlers for the sustainability dashboard.
// It exposes endpoints for leaderboards, user statistics, badges, and badge holders.
package dashboard

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/amazongreen/storefront/internal/api/respond"
	"github.com/amazongreen/storefront/internal/models"
	"github.com/amazongreen/storefront/internal/service/challenges"
	"github.com/amazongreen/storefront/internal/service/leaderboard"
	"github.com/amazongreen/storefront/pkg/logger"
)

// BadgeService interface for badge operations.
type BadgeService interface {
	GetUserBadges(ctx context.Context, userID uint) ([]models.UserBadge, error)
	GetBadgeHolders(ctx context.Context, challengeID uint) ([]models.User, int64, error)
	GetRecentBadges(ctx context.Context, since time.Time) ([]models.UserBadge, error)
}

// LeaderboardService interface for leaderboard operations.
type LeaderboardService interface {
	Global(ctx context.Context, metric string, limit int) ([]leaderboard.Entry, error)
	GetUserStats(ctx context.Context, userID uint) (*leaderboard.UserStats, error)
}

// Handler handles dashboard API requests.
type Handler struct {
	badgeService       BadgeService
	leaderboardService LeaderboardService
	log                *logger.Logger
}

// NewHandler creates a new dashboard handler.
func NewHandler(badgeService *challenges.Service, leaderboardService *leaderboard.Service, log *logger.Logger) *Handler {
	return NewHandlerWithInterfaces(badgeService, leaderboardService, log)
}

// NewHandlerWithInterfaces creates a new dashboard handler with interface dependencies (useful for testing).
func NewHandlerWithInterfaces(badgeService BadgeService, leaderboardService LeaderboardService, log *logger.Logger) *Handler {
	return &Handler{
		badgeService:       badgeService,
		leaderboardService: leaderboardService,
		log:                log,
	}
}

// GetGlobalLeaderboard returns the global leaderboard.
// GET /api/leaderboard?metric=carbon_saved&limit=10.
func (h *Handler) GetGlobalLeaderboard(c *gin.Context) {
	metric := c.DefaultQuery("metric", leaderboard.MetricCarbonSaved)
	limit, err := h.parseLimit(c, 10)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.validateMetric(metric); err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := h.leaderboardService.Global(c.Request.Context(), metric, limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get global leaderboard")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve leaderboard")
		return
	}

	h.log.Debug().
		Str("metric", metric).
		Int("limit", limit).
		Int("entries", len(entries)).
		Msg("Retrieved global leaderboard")

	c.JSON(http.StatusOK, gin.H{
		"leaderboard":   entries,
		"metric":        metric,
		"total_entries": len(entries),
		"generated_at":  time.Now().UTC(),
	})
}

// GetUserStats returns statistics for a specific user.
// GET /api/users/:id/stats.
func (h *Handler) GetUserStats(c *gin.Context) {
	userID, err := h.parseID(c, "user")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	stats, err := h.leaderboardService.GetUserStats(c.Request.Context(), userID)
	if err != nil {
		respond.Fail(c, h.log, err, "Failed to retrieve user statistics")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stats":        stats,
		"generated_at": time.Now().UTC(),
	})
}

// GetUserBadges returns badges earned by a specific user.
// GET /api/users/:id/badges.
func (h *Handler) GetUserBadges(c *gin.Context) {
	userID, err := h.parseID(c, "user")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	userBadges, err := h.badgeService.GetUserBadges(c.Request.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to get user badges")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve user badges")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":      userID,
		"badges":       userBadges,
		"total_badges": len(userBadges),
		"generated_at": time.Now().UTC(),
	})
}

// GetBadgeHolders returns users who completed a challenge.
// GET /api/challenges/:id/holders?limit=50.
func (h *Handler) GetBadgeHolders(c *gin.Context) {
	challengeID, err := h.parseID(c, "challenge")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	limit, err := h.parseLimit(c, 50)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	holders, total, err := h.badgeService.GetBadgeHolders(c.Request.Context(), challengeID)
	if err != nil {
		h.log.Error().Err(err).Uint("challenge_id", challengeID).Msg("Failed to get badge holders")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve badge holders")
		return
	}

	if limit > 0 && len(holders) > limit {
		holders = holders[:limit]
	}

	c.JSON(http.StatusOK, gin.H{
		"challenge_id":  challengeID,
		"holders":       holders,
		"total_holders": total,
		"limited_to":    len(holders),
		"generated_at":  time.Now().UTC(),
	})
}

// GetRecentBadges returns badges awarded in the last N days.
// GET /api/badges/recent?days=7.
func (h *Handler) GetRecentBadges(c *gin.Context) {
	days := 7
	if s := c.Query("days"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > 365 {
			h.errorResponse(c, http.StatusBadRequest, fmt.Sprintf("invalid days parameter: %s", s))
			return
		}
		days = n
	}

	since := time.Now().UTC().AddDate(0, 0, -days)
	recent, err := h.badgeService.GetRecentBadges(c.Request.Context(), since)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get recent badges")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve recent badges")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"badges":       recent,
		"days":         days,
		"total_badges": len(recent),
		"generated_at": time.Now().UTC(),
	})
}

// Helper functions

// parseID extracts and validates the :id URL parameter.
func (h *Handler) parseID(c *gin.Context, what string) (uint, error) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s ID: %s", what, idStr)
	}
	return uint(id), nil
}

// parseLimit extracts and validates the limit query parameter.
func (h *Handler) parseLimit(c *gin.Context, defaultLimit int) (int, error) {
	limitStr := c.Query("limit")
	if limitStr == "" {
		return defaultLimit, nil
	}

	limit, err := strconv.Atoi(limitStr)
	if err != nil {
		return 0, fmt.Errorf("invalid limit parameter: %s", limitStr)
	}

	if limit < 1 {
		return 0, fmt.Errorf("limit must be greater than 0")
	}

	if limit > 1000 {
		return 0, fmt.Errorf("limit cannot exceed 1000")
	}

	return limit, nil
}

// validateMetric validates the metric parameter.
func (h *Handler) validateMetric(metric string) error {
	if !leaderboard.ValidMetric(metric) {
		return fmt.Errorf("invalid metric: %s (valid: carbon_saved, eco_score, money_saved, badges)", metric)
	}
	return nil
}

// errorResponse sends a standardized error response.
func (h *Handler) errorResponse(c *gin.Context, statusCode int, message string) {
	respond.Error(c, statusCode, message)
}
