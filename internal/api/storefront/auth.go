package storefront

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amazongreen/storefront/internal/api/respond"
	"github.com/amazongreen/storefront/internal/service/auth"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register creates an account.
// POST /api/register.
func (h *Handler) Register(c *gin.Context) {
	var req auth.Registration
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.svc.Auth.Register(c.Request.Context(), req)
	if err != nil {
		respond.Fail(c, h.log, err, "Failed to register")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Registered successfully",
		"user":    user,
	})
}

// Login checks credentials and sets the session cookie.
// POST /api/login.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "email and password are required")
		return
	}

	user, token, err := h.svc.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respond.Fail(c, h.log, err, "Failed to log in")
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.auth.CookieName, token, int(h.auth.TokenTTL.Seconds()), "/", "", h.auth.CookieSecure, true)

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged in successfully",
		"token":   token,
		"user":    user,
	})
}

// Logout clears the session cookie.
// GET /api/logout.
func (h *Handler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.auth.CookieName, "", -1, "/", "", h.auth.CookieSecure, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// Me returns the authenticated user.
// GET /api/me.
func (h *Handler) Me(c *gin.Context) {
	user, err := h.svc.Auth.CurrentUser(c.Request.Context(), h.currentUser(c))
	if err != nil {
		respond.Fail(c, h.log, err, "Failed to fetch user")
		return
	}
	c.JSON(http.StatusOK, user)
}
