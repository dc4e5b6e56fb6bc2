package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

// submitOrder forwards the checkout payload. Logged-in visitors submit
// through the provider so the order lands on their account; guests use the
// open endpoint. A successful submission empties the cart.
func (h *handlers) submitOrder(c *gin.Context) {
	sc := h.scope(c)
	ctx := c.Request.Context()

	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order payload"})
		return
	}

	var raw json.RawMessage
	if sc.session.IsLoggedIn() {
		raw = sc.api.Authed(ctx, "POST", "/provider/submit-order/", payload, false)
	} else {
		raw = sc.api.Public(ctx, "POST", "/order/create/", payload, true, false)
	}
	if raw == nil {
		h.upstreamFailed(c, sc)
		return
	}

	var resp struct {
		Order struct {
			ID string `json:"id"`
		} `json:"order"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil || resp.Order.ID == "" {
		h.respond(c, sc, http.StatusBadGateway, gin.H{"error": "malformed upstream response"})
		return
	}

	sc.cart.Clear(ctx)
	h.respond(c, sc, http.StatusOK, gin.H{"order_id": resp.Order.ID, "redirect": "/order/" + resp.Order.ID})
}

// trackOrder looks up one order by its public uuid.
func (h *handlers) trackOrder(c *gin.Context) {
	sc := h.scope(c)
	ctx := c.Request.Context()
	uuid := c.Param("uuid")

	var raw json.RawMessage
	if sc.session.IsLoggedIn() {
		raw = sc.api.Authed(ctx, "POST", "/provider/track-order/", gin.H{"uuid": uuid}, true)
	} else {
		raw = sc.api.Public(ctx, "GET", "/order/track/?uuid="+uuid, nil, true, true)
	}
	if raw == nil {
		h.respond(c, sc, http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}
	h.respond(c, sc, http.StatusOK, gin.H{"order": raw})
}
