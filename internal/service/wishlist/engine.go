// Package wishlist maintains the locally persisted wishlist. Unlike the
// cart, add is set-like: a slug is either saved or it is not.
package wishlist

import (
	"context"
	"sync"
	"time"

	"storefront-web/internal/domain"
	"storefront-web/internal/repository/clientstate"

	"go.uber.org/zap"
)

// Pusher receives the post-mutation slug list for server-side
// reconciliation. Best effort, outcome ignored.
type Pusher interface {
	PushWishlist(ctx context.Context, slugs []string)
}

// Engine operates on one visitor's wishlist.
type Engine struct {
	store  clientstate.Store
	ttl    time.Duration
	pusher Pusher
	log    *zap.Logger

	mu      sync.Mutex
	subs    map[int]func([]domain.WishlistItem)
	nextSub int
}

func New(store clientstate.Store, ttl time.Duration, pusher Pusher, log *zap.Logger) *Engine {
	return &Engine{
		store:  store,
		ttl:    ttl,
		pusher: pusher,
		log:    log,
		subs:   make(map[int]func([]domain.WishlistItem)),
	}
}

// Read returns the persisted wishlist, empty on missing or corrupt data.
func Read(store clientstate.Store, log *zap.Logger) []domain.WishlistItem {
	var items []domain.WishlistItem
	if !clientstate.ReadJSON(store, clientstate.KeyWishlist, &items, log) || items == nil {
		return []domain.WishlistItem{}
	}
	return items
}

// Write persists items wholesale without touching the push path.
func Write(store clientstate.Store, items []domain.WishlistItem, ttl time.Duration) {
	clientstate.WriteJSON(store, clientstate.KeyWishlist, items, ttl)
}

// Items returns the current wishlist.
func (e *Engine) Items() []domain.WishlistItem {
	return Read(e.store, e.log)
}

// Contains reports whether slug is saved.
func (e *Engine) Contains(slug string) bool {
	for _, item := range e.Items() {
		if item.Slug == slug {
			return true
		}
	}
	return false
}

// Add saves the item unless its slug is already present.
func (e *Engine) Add(ctx context.Context, item domain.WishlistItem) {
	if item.Slug == "" {
		return
	}
	items := e.Items()
	for _, existing := range items {
		if existing.Slug == item.Slug {
			return
		}
	}
	items = append(items, item)
	Write(e.store, items, e.ttl)
	e.settle(ctx)
}

// AddSlug saves slug stamped with the current time.
func (e *Engine) AddSlug(ctx context.Context, slug string) {
	e.Add(ctx, domain.WishlistItem{
		Slug:    slug,
		AddedAt: time.Now().UTC().Format(time.RFC3339),
	})
}

// Remove drops slug from the wishlist; removing an absent slug is a no-op.
func (e *Engine) Remove(ctx context.Context, slug string) {
	items := e.Items()
	kept := items[:0]
	for _, item := range items {
		if item.Slug != slug {
			kept = append(kept, item)
		}
	}
	Write(e.store, kept, e.ttl)
	e.settle(ctx)
}

// Clear deletes the persisted wishlist entirely.
func (e *Engine) Clear(ctx context.Context) {
	e.store.Remove(clientstate.KeyWishlist)
	e.settle(ctx)
}

// ReplaceAll installs the authoritative server copy wholesale. Subscribers
// are notified but nothing is pushed back.
func (e *Engine) ReplaceAll(items []domain.WishlistItem) {
	if items == nil {
		items = []domain.WishlistItem{}
	}
	Write(e.store, items, e.ttl)
	e.notify(items)
}

// Subscribe registers a listener invoked synchronously after each mutation.
// The returned function unsubscribes.
func (e *Engine) Subscribe(fn func([]domain.WishlistItem)) func() {
	e.mu.Lock()
	id := e.nextSub
	e.nextSub++
	e.subs[id] = fn
	e.mu.Unlock()
	return func() {
		e.mu.Lock()
		delete(e.subs, id)
		e.mu.Unlock()
	}
}

func (e *Engine) settle(ctx context.Context) {
	items := e.Items()
	e.notify(items)
	if e.pusher != nil {
		e.pusher.PushWishlist(ctx, domain.Slugs(items))
	}
}

func (e *Engine) notify(items []domain.WishlistItem) {
	e.mu.Lock()
	subs := make([]func([]domain.WishlistItem), 0, len(e.subs))
	for _, fn := range e.subs {
		subs = append(subs, fn)
	}
	e.mu.Unlock()
	for _, fn := range subs {
		fn(items)
	}
}
