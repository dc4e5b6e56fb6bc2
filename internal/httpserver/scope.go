package httpserver

import (
	"net/http"

	"storefront-web/internal/config"
	"storefront-web/internal/gateway"
	"storefront-web/internal/notify"
	"storefront-web/internal/repository/clientstate"
	"storefront-web/internal/service/analytics"
	cartsvc "storefront-web/internal/service/cart"
	"storefront-web/internal/service/session"
	"storefront-web/internal/service/variant"
	wishsvc "storefront-web/internal/service/wishlist"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type handlers struct {
	cfg       config.Config
	ttls      clientstate.TTLs
	gateway   *gateway.Client
	exchanger session.Exchanger
	sessions  *session.Coordinator
	variants  *variant.Cache
	secondary clientstate.SecondaryProvider
	log       *zap.Logger
}

func newHandlers(log *zap.Logger, deps Deps) *handlers {
	return &handlers{
		cfg: deps.Cfg,
		ttls: clientstate.TTLs{
			Access:     deps.Cfg.AccessTokenTTL,
			Refresh:    deps.Cfg.RefreshTokenTTL,
			Cart:       deps.Cfg.CartTTL,
			Wishlist:   deps.Cfg.WishlistTTL,
			AnalyticID: deps.Cfg.AnalyticIDTTL,
		},
		gateway:   deps.Gateway,
		exchanger: deps.Exchanger,
		sessions:  deps.Sessions,
		variants:  deps.Variants,
		secondary: deps.Secondary,
		log:       log,
	}
}

// scope assembles the per-visitor object graph for one request: cookie
// store, mirrored analytic-id store, session manager, bound gateway,
// analytics coordinator, and the two engines chained to it.
type scope struct {
	store    *clientstate.CookieStore
	notices  *notify.Buffer
	session  *session.Manager
	api      *gateway.Caller
	coord    *analytics.Coordinator
	cart     *cartsvc.Engine
	wishlist *wishsvc.Engine
}

func (h *handlers) scope(c *gin.Context) *scope {
	store := clientstate.NewCookieStore(c.Writer, c.Request, h.cfg.SecureCookies)
	ids := clientstate.NewMirror(store, h.secondary.For(h.deviceKey(store)), h.ttls.AnalyticID)

	notices := notify.NewBuffer()
	mgr := session.NewManager(store, store, h.exchanger, h.sessions, h.ttls, h.log)
	api := h.gateway.Bind(notices, mgr)
	coord := analytics.New(api, store, ids, h.ttls, h.cfg.AnalyticsEnabled, h.log)

	return &scope{
		store:    store,
		notices:  notices,
		session:  mgr,
		api:      api,
		coord:    coord,
		cart:     cartsvc.New(store, h.ttls.Cart, coord, h.log),
		wishlist: wishsvc.New(store, h.ttls.Wishlist, coord, h.log),
	}
}

// deviceKey returns the stable identifier that namespaces the visitor's rows
// in the mirror secondary, minting one on first sight.
func (h *handlers) deviceKey(store clientstate.Store) string {
	if key, ok := store.Get(clientstate.KeyDevice); ok {
		return key
	}
	key := uuid.NewString()
	store.Set(clientstate.KeyDevice, key, h.ttls.AnalyticID)
	return key
}

// respond attaches any buffered notifications and writes the payload.
func (h *handlers) respond(c *gin.Context, sc *scope, status int, payload gin.H) {
	if msgs := sc.notices.Drain(); len(msgs) > 0 {
		payload["notices"] = msgs
	}
	c.JSON(status, payload)
}

// upstreamFailed translates a nil gateway result. A logged-out session
// redirects to the account surface; anything else is a bad upstream.
func (h *handlers) upstreamFailed(c *gin.Context, sc *scope) {
	if sc.session.LoggedOut() {
		h.respond(c, sc, http.StatusUnauthorized, gin.H{"error": "session expired", "redirect": "/account"})
		return
	}
	h.respond(c, sc, http.StatusBadGateway, gin.H{"error": "upstream request failed"})
}
