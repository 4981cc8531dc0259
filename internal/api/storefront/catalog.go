package storefront

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/amazongreen/storefront/internal/api/respond"
)

// ListProducts returns the whole catalog.
// GET /api/products.
func (h *Handler) ListProducts(c *gin.Context) {
	products, err := h.svc.Catalog.List(c.Request.Context())
	if err != nil {
		respond.Fail(c, h.log, err, "Failed to fetch products")
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products, "total": len(products)})
}

// GetProduct returns one product.
// GET /api/products/:id.
func (h *Handler) GetProduct(c *gin.Context) {
	id, err := h.parseID(c, "id")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	product, err := h.svc.Catalog.Get(c.Request.Context(), id)
	if err != nil {
		respond.Fail(c, h.log, err, "Failed to fetch product")
		return
	}
	c.JSON(http.StatusOK, product)
}

// SearchProducts matches product names.
// GET /api/products/search?q=bamboo.
func (h *Handler) SearchProducts(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		h.errorResponse(c, http.StatusBadRequest, "q parameter is required")
		return
	}

	products, err := h.svc.Catalog.Search(c.Request.Context(), q)
	if err != nil {
		respond.Fail(c, h.log, err, "Search failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"query": q, "products": products, "total": len(products)})
}

// ProductsByCategory lists a category.
// GET /api/products/category/:category.
func (h *Handler) ProductsByCategory(c *gin.Context) {
	category := c.Param("category")

	products, err := h.svc.Catalog.ByCategory(c.Request.Context(), category)
	if err != nil {
		respond.Fail(c, h.log, err, "Failed to fetch products")
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category, "products": products, "total": len(products)})
}
