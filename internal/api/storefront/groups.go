package storefront

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amazongreen/storefront/internal/api/respond"
	"github.com/amazongreen/storefront/internal/service/groupbuy"
)

type createGroupRequest struct {
	Name          string `json:"name" binding:"required"`
	ProductID     uint   `json:"productId" binding:"required"`
	MembersNeeded int    `json:"membersNeeded" binding:"required"`
}

type joinGroupRequest struct {
	Items []groupbuy.Item `json:"items" binding:"dive"`
}

type groupMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// ListGroups returns group-buys, optionally filtered by status.
// GET /api/groups?status=pending.
func (h *Handler) ListGroups(c *gin.Context) {
	groups, err := h.svc.Groups.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		respond.Fail(c, h.log, err, "Failed to fetch groups")
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": groups, "total": len(groups)})
}

// CreateGroup opens a group-buy.
// POST /api/groups.
func (h *Handler) CreateGroup(c *gin.Context) {
	var req createGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "name, productId and membersNeeded are required")
		return
	}

	group, err := h.svc.Groups.Create(c.Request.Context(), h.currentUser(c), req.Name, req.ProductID, req.MembersNeeded)
	if err != nil {
		respond.Fail(c, h.log, err, "Failed to create group")
		return
	}
	c.JSON(http.StatusCreated, group)
}

// GetGroup returns a group with its members.
// GET /api/groups/:id.
func (h *Handler) GetGroup(c *gin.Context) {
	groupID, err := h.parseID(c, "id")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	group, err := h.svc.Groups.Get(c.Request.Context(), groupID)
	if err != nil {
		respond.Fail(c, h.log, err, "Failed to fetch group")
		return
	}
	c.JSON(http.StatusOK, group)
}

// JoinGroup adds the user to a group-buy.
// POST /api/groups/:id/join.
func (h *Handler) JoinGroup(c *gin.Context) {
	groupID, err := h.parseID(c, "id")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	var req joinGroupRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.errorResponse(c, http.StatusBadRequest, "invalid items")
			return
		}
	}

	group, err := h.svc.Groups.Join(c.Request.Context(), groupID, h.currentUser(c), req.Items)
	if err != nil {
		respond.Fail(c, h.log, err, "Failed to join group")
		return
	}
	c.JSON(http.StatusOK, group)
}

// GroupMessages returns a group's chat history to its members.
// GET /api/groups/:id/messages.
func (h *Handler) GroupMessages(c *gin.Context) {
	groupID, err := h.parseID(c, "id")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	msgs, err := h.svc.Groups.Messages(c.Request.Context(), groupID, h.currentUser(c))
	if err != nil {
		respond.Fail(c, h.log, err, "Failed to fetch messages")
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs, "total": len(msgs)})
}

// PostGroupMessage posts to a group's chat.
// POST /api/groups/:id/messages.
func (h *Handler) PostGroupMessage(c *gin.Context) {
	groupID, err := h.parseID(c, "id")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	var req groupMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "content is required")
		return
	}

	msg, err := h.svc.Groups.PostMessage(c.Request.Context(), groupID, h.currentUser(c), req.Content)
	if err != nil {
		respond.Fail(c, h.log, err, "Failed to post message")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": msg})
}
