package storefront

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amazongreen/storefront/internal/api/respond"
)

type buyNowRequest struct {
	Quantity int `json:"quantity"`
}

// Checkout turns the cart into an order.
// POST /api/checkout.
func (h *Handler) Checkout(c *gin.Context) {
	result, err := h.svc.Orders.Checkout(c.Request.Context(), h.currentUser(c))
	if err != nil {
		respond.Fail(c, h.log, err, "Failed to place order")
		return
	}
	c.JSON(http.StatusCreated, result)
}

// BuyNow orders a single product directly.
// POST /api/buy/:productId.
func (h *Handler) BuyNow(c *gin.Context) {
	productID, err := h.parseID(c, "productId")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	var req buyNowRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.errorResponse(c, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	result, err := h.svc.Orders.BuyNow(c.Request.Context(), h.currentUser(c), productID, req.Quantity)
	if err != nil {
		respond.Fail(c, h.log, err, "Failed to place order")
		return
	}
	c.JSON(http.StatusCreated, result)
}

// ListOrders returns the user's orders, newest first.
// GET /api/orders.
func (h *Handler) ListOrders(c *gin.Context) {
	list, err := h.svc.Orders.ListOrders(c.Request.Context(), h.currentUser(c))
	if err != nil {
		respond.Fail(c, h.log, err, "Failed to fetch orders")
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": list, "total": len(list)})
}

// GetOrder returns one of the user's orders.
// GET /api/orders/:id.
func (h *Handler) GetOrder(c *gin.Context) {
	orderID, err := h.parseID(c, "id")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	order, err := h.svc.Orders.GetOrder(c.Request.Context(), h.currentUser(c), orderID)
	if err != nil {
		respond.Fail(c, h.log, err, "Failed to fetch order")
		return
	}
	c.JSON(http.StatusOK, order)
}
