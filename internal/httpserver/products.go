package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// listProducts forwards the catalog query as-is; filtering, search and
// pagination semantics belong to the remote API.
func (h *handlers) listProducts(c *gin.Context) {
	sc := h.scope(c)

	var query map[string]any
	if err := c.ShouldBindJSON(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query"})
		return
	}

	raw := sc.api.Public(c.Request.Context(), "POST", "/product/list/", query, true, false)
	if raw == nil {
		h.upstreamFailed(c, sc)
		return
	}
	h.respond(c, sc, http.StatusOK, gin.H{"result": raw})
}
