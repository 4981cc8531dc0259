package storefront

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amazongreen/storefront/internal/api/respond"
)

// ListChallenges returns the active challenges.
// GET /api/challenges.
func (h *Handler) ListChallenges(c *gin.Context) {
	list, err := h.svc.Challenges.ListActive(c.Request.Context())
	if err != nil {
		respond.Fail(c, h.log, err, "Failed to fetch challenges")
		return
	}
	c.JSON(http.StatusOK, gin.H{"challenges": list, "total": len(list)})
}

// JoinChallenge enrolls the user in a challenge.
// POST /api/challenges/:id/join.
func (h *Handler) JoinChallenge(c *gin.Context) {
	challengeID, err := h.parseID(c, "id")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	challenge, err := h.svc.Challenges.Join(c.Request.Context(), h.currentUser(c), challengeID)
	if err != nil {
		respond.Fail(c, h.log, err, "Failed to join challenge")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Joined challenge", "challenge": challenge})
}

// CheckCompletion evaluates joined challenges and awards badges.
// POST /api/challenges/check-completion.
func (h *Handler) CheckCompletion(c *gin.Context) {
	awarded, err := h.svc.Challenges.CheckCompletion(c.Request.Context(), h.currentUser(c))
	if err != nil {
		respond.Fail(c, h.log, err, "Failed to check challenge completion")
		return
	}
	c.JSON(http.StatusOK, gin.H{"new_badges": awarded, "awarded": len(awarded)})
}

// MyChallenges returns joined challenges with live progress.
// GET /api/challenges/me.
func (h *Handler) MyChallenges(c *gin.Context) {
	status, err := h.svc.Challenges.UserStatus(c.Request.Context(), h.currentUser(c))
	if err != nil {
		respond.Fail(c, h.log, err, "Failed to fetch challenge status")
		return
	}
	c.JSON(http.StatusOK, status)
}
