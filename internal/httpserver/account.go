package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *handlers) userInfo(c *gin.Context) {
	sc := h.scope(c)

	raw := sc.api.Authed(c.Request.Context(), "GET", "/provider/user-info/", nil, false)
	if raw == nil {
		h.upstreamFailed(c, sc)
		return
	}
	h.respond(c, sc, http.StatusOK, gin.H{"user": raw})
}

func (h *handlers) userOrders(c *gin.Context) {
	sc := h.scope(c)

	var query map[string]any
	if err := c.ShouldBindJSON(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query"})
		return
	}

	raw := sc.api.Authed(c.Request.Context(), "POST", "/provider/user-orders/", query, false)
	if raw == nil {
		h.upstreamFailed(c, sc)
		return
	}
	h.respond(c, sc, http.StatusOK, gin.H{"orders": raw})
}
