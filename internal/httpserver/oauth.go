package httpserver

import (
	"errors"
	"net/http"

	"storefront-web/internal/service/analytics"
	"storefront-web/internal/service/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// oauthExchange trades the OAuth code for tokens, persists them (the refresh
// token goes into the HttpOnly cookie), merges the anonymous session into
// the account and returns the hydrated state.
func (h *handlers) oauthExchange(c *gin.Context) {
	sc := h.scope(c)
	ctx := c.Request.Context()

	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code required"})
		return
	}

	tokens, err := sc.session.Exchange(ctx, req.Code)
	if err != nil {
		h.log.Warn("token exchange failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sc.coord.Merge(ctx, analytics.MergeAll())

	h.respond(c, sc, http.StatusOK, gin.H{
		"username": tokens.Username,
		"cart":     sc.cart.Items(),
		"wishlist": sc.wishlist.Items(),
	})
}

// oauthRefresh renews the access token from the refresh cookie. A rejected
// credential has already run the logout cascade by the time this responds.
func (h *handlers) oauthRefresh(c *gin.Context) {
	sc := h.scope(c)

	token, err := sc.session.Refresh(c.Request.Context())
	if err != nil {
		if errors.Is(err, session.ErrUnauthorized) {
			h.respond(c, sc, http.StatusUnauthorized, gin.H{"error": "refresh failed", "redirect": "/account"})
			return
		}
		h.respond(c, sc, http.StatusBadGateway, gin.H{"error": "refresh failed"})
		return
	}

	username, _ := sc.session.Username()
	h.respond(c, sc, http.StatusOK, gin.H{"access_token": token, "username": username})
}

func (h *handlers) oauthLogout(c *gin.Context) {
	sc := h.scope(c)
	sc.session.Logout(c.Request.Context())
	h.respond(c, sc, http.StatusOK, gin.H{"success": true, "redirect": "/account"})
}
