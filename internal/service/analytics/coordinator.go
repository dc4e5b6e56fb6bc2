// Package analytics keeps the visitor's cart, wishlist and view history
// consistent with the server across the anonymous-to-authenticated
// transition. All failures here are logged and swallowed: a flaky sync must
// never cost the visitor their local state.
package analytics

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"storefront-web/internal/domain"
	"storefront-web/internal/repository/clientstate"
	"storefront-web/internal/service/cart"
	"storefront-web/internal/service/wishlist"

	"go.uber.org/zap"
)

// API is the slice of the request gateway the coordinator needs.
type API interface {
	Public(ctx context.Context, method, path string, body any, addStorePrefix, silent bool) json.RawMessage
	Authed(ctx context.Context, method, path string, body any, silent bool) json.RawMessage
}

// MergeOptions selects which collections the server folds into the account.
type MergeOptions struct {
	Cart        bool `json:"merge_cart"`
	ViewHistory bool `json:"merge_view_history"`
	Wishlist    bool `json:"merge_wishlist"`
}

// MergeAll folds everything, the default on login.
func MergeAll() MergeOptions {
	return MergeOptions{Cart: true, ViewHistory: true, Wishlist: true}
}

// Coordinator bridges anonymous-session state and authenticated-account
// state for one visitor.
type Coordinator struct {
	api     API
	store   clientstate.Store
	ids     clientstate.Store
	ttls    clientstate.TTLs
	enabled bool
	log     *zap.Logger
}

// New builds a Coordinator. store is the visitor's primary store; ids is the
// mirrored store holding the analytic id, so a cleared cookie can be
// recovered from the secondary medium.
func New(api API, store, ids clientstate.Store, ttls clientstate.TTLs, enabled bool, log *zap.Logger) *Coordinator {
	return &Coordinator{
		api:     api,
		store:   store,
		ids:     ids,
		ttls:    ttls,
		enabled: enabled,
		log:     log,
	}
}

// AnalyticID returns the visitor's anonymous session id, creating it lazily
// through the server when neither storage leg has one.
func (c *Coordinator) AnalyticID(ctx context.Context) (string, bool) {
	if id, ok := c.ids.Get(clientstate.KeyAnalyticID); ok {
		// Re-stamp both legs so the expiries stay fresh.
		c.ids.Set(clientstate.KeyAnalyticID, id, c.ttls.AnalyticID)
		return id, true
	}

	raw := c.api.Public(ctx, "GET", "/analytic/get/", nil, true, true)
	if raw == nil {
		return "", false
	}
	var resp struct {
		UUID string `json:"uuid"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil || resp.UUID == "" {
		return "", false
	}
	c.ids.Set(clientstate.KeyAnalyticID, resp.UUID, c.ttls.AnalyticID)
	return resp.UUID, true
}

// ensureID resolves the analytic id for a write, creating one only for
// anonymous visitors.
func (c *Coordinator) ensureID(ctx context.Context) (string, bool) {
	if id, ok := c.ids.Get(clientstate.KeyAnalyticID); ok {
		return id, true
	}
	if clientstate.IsLoggedIn(c.store) {
		return "", false
	}
	return c.AnalyticID(ctx)
}

// PushCart reconciles the server-side cart copy with the local one. The
// local mutation has already happened; this call is fire-and-forget.
func (c *Coordinator) PushCart(ctx context.Context, items []domain.CartItem) {
	id, hasID := c.ensureID(ctx)
	if !c.enabled {
		return
	}
	if items == nil {
		items = []domain.CartItem{}
	}
	if clientstate.IsLoggedIn(c.store) {
		c.api.Authed(ctx, "POST", "/provider/analytics/cart/post/", map[string]any{"items": items}, true)
	} else if hasID {
		c.api.Public(ctx, "POST", "/cart/post/", map[string]any{"uuid": id, "items": items}, true, true)
	}
}

// PushWishlist reconciles the server-side wishlist copy.
func (c *Coordinator) PushWishlist(ctx context.Context, slugs []string) {
	id, hasID := c.ids.Get(clientstate.KeyAnalyticID)
	if !c.enabled {
		return
	}
	if slugs == nil {
		slugs = []string{}
	}
	if clientstate.IsLoggedIn(c.store) {
		c.api.Authed(ctx, "POST", "/provider/analytics/wishlist/post/", map[string]any{"uuid": id, "product_slugs": slugs}, true)
	} else if hasID {
		c.api.Public(ctx, "POST", "/wishlist/post/", map[string]any{"uuid": id, "product_slugs": slugs}, true, true)
	}
}

// PushViewHistory records product views, batched to accommodate mass posts.
func (c *Coordinator) PushViewHistory(ctx context.Context, slugs []string) {
	id, hasID := c.ensureID(ctx)
	if !c.enabled || len(slugs) == 0 {
		return
	}
	payload := map[string]any{"uuid": id, "product_slugs": slugs}
	if clientstate.IsLoggedIn(c.store) {
		c.api.Authed(ctx, "POST", "/provider/analytics/view-history/post/", payload, true)
	} else if hasID {
		c.api.Public(ctx, "POST", "/view/history/post/", payload, true, true)
	}
}

// ViewHistory reads a page of the visitor's view history.
func (c *Coordinator) ViewHistory(ctx context.Context, page, pageSize int) json.RawMessage {
	id, hasID := c.ensureID(ctx)
	if !c.enabled {
		return nil
	}
	payload := map[string]any{"uuid": id, "page": page, "page_size": pageSize}
	if clientstate.IsLoggedIn(c.store) {
		return c.api.Authed(ctx, "POST", "/provider/analytics/view-history/get/", payload, true)
	}
	if hasID {
		return c.api.Public(ctx, "POST", "/view/history/get/", payload, true, true)
	}
	return nil
}

// Merge folds the anonymous session's data into the now-identified account,
// discards the anonymous id from both storage legs, then replaces the local
// cart and wishlist with the server's authoritative copies. Every step is
// best effort: a failed merge or pull leaves the pre-merge local state.
func (c *Coordinator) Merge(ctx context.Context, opts MergeOptions) {
	if !c.enabled {
		return
	}
	if id, ok := c.ids.Get(clientstate.KeyAnalyticID); ok {
		payload := map[string]any{
			"uuid":               id,
			"merge_cart":         opts.Cart,
			"merge_view_history": opts.ViewHistory,
			"merge_wishlist":     opts.Wishlist,
		}
		if c.api.Authed(ctx, "POST", "/provider/analytics/merge/", payload, true) == nil {
			c.log.Warn("analytics merge failed, keeping local state")
		}
	}
	c.ids.Remove(clientstate.KeyAnalyticID)
	c.SyncCart(ctx)
	c.SyncWishlist(ctx)
}

// SyncCart pulls the server cart and replaces the local copy. It reports
// whether a replacement happened; on failure the local cart is untouched.
func (c *Coordinator) SyncCart(ctx context.Context) bool {
	id, _ := c.ids.Get(clientstate.KeyAnalyticID)
	raw := c.api.Authed(ctx, "POST", "/provider/analytics/cart/get/", map[string]any{"uuid": id}, true)
	if raw == nil {
		c.log.Debug("cart sync failed, keeping local cart")
		return false
	}
	var resp struct {
		Items []serverCartItem `json:"items"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil || resp.Items == nil {
		c.log.Debug("cart sync returned no items", zap.Error(err))
		return false
	}
	items := make([]domain.CartItem, 0, len(resp.Items))
	for _, item := range resp.Items {
		items = append(items, domain.CartItem{
			SKU:    item.SKU,
			Amount: item.Amount,
			Price:  float64(item.Price),
		})
	}
	cart.Write(c.store, items, c.ttls.Cart)
	return true
}

// SyncWishlist pulls the server wishlist and replaces the local copy.
func (c *Coordinator) SyncWishlist(ctx context.Context) bool {
	id, _ := c.ids.Get(clientstate.KeyAnalyticID)
	raw := c.api.Authed(ctx, "POST", "/provider/analytics/wishlist/get/", map[string]any{"uuid": id}, true)
	if raw == nil {
		c.log.Debug("wishlist sync failed, keeping local wishlist")
		return false
	}
	var serverItems []struct {
		Slug    string `json:"slug"`
		AddedAt string `json:"added_at"`
	}
	if err := json.Unmarshal(raw, &serverItems); err != nil || serverItems == nil {
		c.log.Debug("wishlist sync returned no items", zap.Error(err))
		return false
	}
	items := make([]domain.WishlistItem, 0, len(serverItems))
	for _, item := range serverItems {
		items = append(items, domain.WishlistItem{Slug: item.Slug, AddedAt: item.AddedAt})
	}
	wishlist.Write(c.store, items, c.ttls.Wishlist)
	return true
}

type serverCartItem struct {
	SKU    string    `json:"sku"`
	Amount int       `json:"amount"`
	Price  flexFloat `json:"price"`
}

// flexFloat tolerates prices arriving as either JSON numbers or quoted
// numeric strings.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}
