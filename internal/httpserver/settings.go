package httpserver

import (
	"encoding/json"
	"net/http"

	"storefront-web/internal/domain"

	"github.com/gin-gonic/gin"
)

// getSettings fetches the store configuration from the remote API.
func (h *handlers) getSettings(c *gin.Context) {
	sc := h.scope(c)

	raw := sc.api.Public(c.Request.Context(), "GET", "/setup/get/", nil, true, false)
	if raw == nil {
		h.upstreamFailed(c, sc)
		return
	}

	var settings domain.StoreSettings
	if err := json.Unmarshal(raw, &settings); err != nil {
		h.respond(c, sc, http.StatusBadGateway, gin.H{"error": "malformed upstream response"})
		return
	}
	settings.Normalize()
	h.respond(c, sc, http.StatusOK, gin.H{"settings": settings})
}
