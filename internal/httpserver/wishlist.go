package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *handlers) getWishlist(c *gin.Context) {
	sc := h.scope(c)
	h.respond(c, sc, http.StatusOK, gin.H{"items": sc.wishlist.Items()})
}

func (h *handlers) addWishlistItem(c *gin.Context) {
	sc := h.scope(c)

	var req struct {
		Slug string `json:"slug" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "slug required"})
		return
	}

	sc.wishlist.AddSlug(c.Request.Context(), req.Slug)
	h.respond(c, sc, http.StatusOK, gin.H{"items": sc.wishlist.Items()})
}

func (h *handlers) removeWishlistItem(c *gin.Context) {
	sc := h.scope(c)
	sc.wishlist.Remove(c.Request.Context(), c.Param("slug"))
	h.respond(c, sc, http.StatusOK, gin.H{"items": sc.wishlist.Items()})
}

func (h *handlers) clearWishlist(c *gin.Context) {
	sc := h.scope(c)
	sc.wishlist.Clear(c.Request.Context())
	h.respond(c, sc, http.StatusOK, gin.H{"items": sc.wishlist.Items()})
}

func (h *handlers) syncWishlist(c *gin.Context) {
	sc := h.scope(c)
	sc.coord.SyncWishlist(c.Request.Context())
	h.respond(c, sc, http.StatusOK, gin.H{"items": sc.wishlist.Items()})
}
