package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// listVariants serves variant snapshots from the process-wide cache. The
// checkout flow sets force_refresh to get authoritative prices and stock.
func (h *handlers) listVariants(c *gin.Context) {
	sc := h.scope(c)

	var req struct {
		SKUList      []string `json:"sku_list" binding:"required"`
		ForceRefresh bool     `json:"force_refresh"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sku_list required"})
		return
	}

	variants := h.variants.Variants(c.Request.Context(), req.SKUList, req.ForceRefresh)
	h.respond(c, sc, http.StatusOK, gin.H{"variants": variants})
}
