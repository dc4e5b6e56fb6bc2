package httpserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// postHistory records product views. Fire-and-forget: failures never reach
// the visitor.
func (h *handlers) postHistory(c *gin.Context) {
	sc := h.scope(c)

	var req struct {
		ProductSlugs []string `json:"product_slugs" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product_slugs required"})
		return
	}

	sc.coord.PushViewHistory(c.Request.Context(), req.ProductSlugs)
	h.respond(c, sc, http.StatusAccepted, gin.H{"accepted": true})
}

func (h *handlers) getHistory(c *gin.Context) {
	sc := h.scope(c)

	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 10)

	raw := sc.coord.ViewHistory(c.Request.Context(), page, pageSize)
	if raw == nil {
		h.respond(c, sc, http.StatusOK, gin.H{"items": []any{}})
		return
	}
	h.respond(c, sc, http.StatusOK, gin.H{"items": raw})
}

func queryInt(c *gin.Context, key string, fallback int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil || v < 1 {
		return fallback
	}
	return v
}
