package storefront

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amazongreen/storefront/internal/api/respond"
)

type quantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// GetCart returns the user's cart.
// GET /api/cart.
func (h *Handler) GetCart(c *gin.Context) {
	items, err := h.svc.Cart.Get(c.Request.Context(), h.currentUser(c))
	if err != nil {
		respond.Fail(c, h.log, err, "Failed to fetch cart")
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": items})
}

// AddToCart adds one unit of a product.
// POST /api/cart/:productId.
func (h *Handler) AddToCart(c *gin.Context) {
	productID, err := h.parseID(c, "productId")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	items, err := h.svc.Cart.Add(c.Request.Context(), h.currentUser(c), productID)
	if err != nil {
		respond.Fail(c, h.log, err, "Failed to add item to cart")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"cart": items})
}

// UpdateCartItem sets a line's quantity.
// PUT /api/cart/:productId.
func (h *Handler) UpdateCartItem(c *gin.Context) {
	productID, err := h.parseID(c, "productId")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "quantity is required")
		return
	}

	items, err := h.svc.Cart.UpdateQuantity(c.Request.Context(), h.currentUser(c), productID, *req.Quantity)
	if err != nil {
		respond.Fail(c, h.log, err, "Failed to update cart")
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": items})
}

// RemoveFromCart drops a line.
// DELETE /api/cart/:productId.
func (h *Handler) RemoveFromCart(c *gin.Context) {
	productID, err := h.parseID(c, "productId")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	items, err := h.svc.Cart.Remove(c.Request.Context(), h.currentUser(c), productID)
	if err != nil {
		respond.Fail(c, h.log, err, "Failed to remove item")
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": items})
}
