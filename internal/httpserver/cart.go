package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *handlers) getCart(c *gin.Context) {
	sc := h.scope(c)
	items := sc.cart.Items()
	h.respond(c, sc, http.StatusOK, gin.H{"items": items, "total_count": sc.cart.TotalCount()})
}

func (h *handlers) addCartItem(c *gin.Context) {
	sc := h.scope(c)

	var req struct {
		SKU    string  `json:"sku" binding:"required"`
		Amount *int    `json:"amount"`
		Price  float64 `json:"price"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sku required"})
		return
	}
	amount := 1
	if req.Amount != nil {
		amount = *req.Amount
	}

	sc.cart.Add(c.Request.Context(), req.SKU, amount, req.Price)
	h.respond(c, sc, http.StatusOK, gin.H{"items": sc.cart.Items(), "total_count": sc.cart.TotalCount()})
}

func (h *handlers) editCartItem(c *gin.Context) {
	sc := h.scope(c)

	var req struct {
		SKU    string  `json:"sku" binding:"required"`
		Amount int     `json:"amount"`
		Price  float64 `json:"price"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sku required"})
		return
	}

	sc.cart.Edit(c.Request.Context(), req.SKU, req.Amount, req.Price)
	h.respond(c, sc, http.StatusOK, gin.H{"items": sc.cart.Items(), "total_count": sc.cart.TotalCount()})
}

func (h *handlers) clearCart(c *gin.Context) {
	sc := h.scope(c)
	sc.cart.Clear(c.Request.Context())
	h.respond(c, sc, http.StatusOK, gin.H{"items": sc.cart.Items(), "total_count": 0})
}

// syncCart pulls the authoritative server cart and replaces the local copy;
// on failure the local copy stands.
func (h *handlers) syncCart(c *gin.Context) {
	sc := h.scope(c)
	sc.coord.SyncCart(c.Request.Context())
	h.respond(c, sc, http.StatusOK, gin.H{"items": sc.cart.Items(), "total_count": sc.cart.TotalCount()})
}
