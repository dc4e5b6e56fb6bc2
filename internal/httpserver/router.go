package httpserver

import (
	"time"

	"storefront-web/internal/config"
	"storefront-web/internal/gateway"
	"storefront-web/internal/repository/clientstate"
	"storefront-web/internal/service/session"
	"storefront-web/internal/service/variant"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Deps carries the process-wide collaborators into the router.
type Deps struct {
	Cfg       config.Config
	Gateway   *gateway.Client
	Exchanger session.Exchanger
	Sessions  *session.Coordinator
	Variants  *variant.Cache
	Secondary clientstate.SecondaryProvider
	DB        *pgxpool.Pool
}

// buildRouter wires the storefront routes.
func buildRouter(log *zap.Logger, deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(requestLogger(log), gin.Recovery())
	router.Use(cors.New(corsConfig(deps.Cfg)))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(deps.DB))

	h := newHandlers(log, deps)

	api := router.Group("/api")
	{
		oauth := api.Group("/oauth")
		{
			oauth.POST("/exchange", h.oauthExchange)
			oauth.POST("/refresh", h.oauthRefresh)
			oauth.POST("/logout", h.oauthLogout)
		}

		api.GET("/cart", h.getCart)
		api.POST("/cart", h.addCartItem)
		api.PUT("/cart", h.editCartItem)
		api.DELETE("/cart", h.clearCart)
		api.POST("/cart/sync", h.syncCart)

		api.GET("/wishlist", h.getWishlist)
		api.POST("/wishlist", h.addWishlistItem)
		api.DELETE("/wishlist", h.clearWishlist)
		api.DELETE("/wishlist/:slug", h.removeWishlistItem)
		api.POST("/wishlist/sync", h.syncWishlist)

		api.POST("/variants", h.listVariants)
		api.GET("/settings", h.getSettings)
		api.POST("/products", h.listProducts)

		api.POST("/orders", h.submitOrder)
		api.GET("/orders/:uuid", h.trackOrder)

		api.GET("/me", h.userInfo)
		api.POST("/me/orders", h.userOrders)

		api.POST("/history", h.postHistory)
		api.GET("/history", h.getHistory)
	}

	return router
}

func corsConfig(cfg config.Config) cors.Config {
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	if len(cfg.CORSOrigins) == 1 && cfg.CORSOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
		return corsCfg
	}
	corsCfg.AllowOrigins = cfg.CORSOrigins
	corsCfg.AllowCredentials = true
	return corsCfg
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
