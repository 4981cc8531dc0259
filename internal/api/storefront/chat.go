package storefront

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amazongreen/storefront/internal/api/respond"
	"github.com/amazongreen/storefront/internal/errs"
	"github.com/amazongreen/storefront/internal/service/chat"
)

type chatRequest struct {
	Message string `json:"message"`
}

// Chat routes a message to the assistant.
// POST /api/chat.
//
// Data intents answer for the session user only; a userId in the body is ignored.
func (h *Handler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}
	userID := h.currentUser(c)

	resp, err := h.svc.Chat.Handle(c.Request.Context(), chat.Request{Message: req.Message, UserID: userID})
	if err != nil {
		if errs.Is(err, errs.Validation) {
			respond.Fail(c, h.log, err, "Invalid chat request")
			return
		}
		h.log.Error().Err(err).Uint("user_id", userID).Msg("Chat request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"reply": "Something went wrong.", "intent": nil})
		return
	}

	body := gin.H{"reply": resp.Reply, "intent": resp.Intent}
	switch resp.Intent {
	case chat.IntentCarbonFootprint:
		body["breakdown"] = resp.Breakdown
		body["total"] = resp.Total
	case chat.IntentMyChallenges:
		body["challenges"] = resp.Challenges
		body["badges"] = resp.Badges
	}
	c.JSON(http.StatusOK, body)
}
