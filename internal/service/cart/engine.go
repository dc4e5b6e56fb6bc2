// Package cart maintains the locally persisted shopping cart. Mutations are
// applied to the visitor's store first, then subscribers are notified
// synchronously, then the new snapshot is pushed to the analytics layer.
// The local state is always the one a re-render observes.
package cart

import (
	"context"
	"sync"
	"time"

	"storefront-web/internal/domain"
	"storefront-web/internal/repository/clientstate"

	"go.uber.org/zap"
)

// Pusher receives the post-mutation snapshot for server-side reconciliation.
// Pushes are best effort; the engine never inspects the outcome.
type Pusher interface {
	PushCart(ctx context.Context, items []domain.CartItem)
}

// Engine operates on one visitor's cart.
type Engine struct {
	store  clientstate.Store
	ttl    time.Duration
	pusher Pusher
	log    *zap.Logger

	mu      sync.Mutex
	subs    map[int]func([]domain.CartItem)
	nextSub int
}

func New(store clientstate.Store, ttl time.Duration, pusher Pusher, log *zap.Logger) *Engine {
	return &Engine{
		store:  store,
		ttl:    ttl,
		pusher: pusher,
		log:    log,
		subs:   make(map[int]func([]domain.CartItem)),
	}
}

// Read returns the persisted cart, empty on missing or corrupt data.
func Read(store clientstate.Store, log *zap.Logger) []domain.CartItem {
	var items []domain.CartItem
	if !clientstate.ReadJSON(store, clientstate.KeyCart, &items, log) || items == nil {
		return []domain.CartItem{}
	}
	return items
}

// Write persists items wholesale. Used by the engine and by server
// hydration, which must not loop back through the push path.
func Write(store clientstate.Store, items []domain.CartItem, ttl time.Duration) {
	clientstate.WriteJSON(store, clientstate.KeyCart, items, ttl)
}

// Items returns the current cart.
func (e *Engine) Items() []domain.CartItem {
	return Read(e.store, e.log)
}

// TotalCount sums the amounts across the cart.
func (e *Engine) TotalCount() int {
	return domain.TotalCount(e.Items())
}

// Count returns the amount held for one SKU, zero when absent.
func (e *Engine) Count(sku string) int {
	for _, item := range e.Items() {
		if item.SKU == sku {
			return item.Amount
		}
	}
	return 0
}

// Add increments the amount for sku, overwriting the cached price with the
// latest one, or appends a new item. An amount of zero or less is a no-op.
func (e *Engine) Add(ctx context.Context, sku string, amount int, price float64) {
	if amount <= 0 {
		return
	}
	items := e.Items()
	found := false
	for i := range items {
		if items[i].SKU == sku {
			items[i].Amount += amount
			items[i].Price = price
			found = true
			break
		}
	}
	if !found {
		items = append(items, domain.CartItem{SKU: sku, Amount: amount, Price: price})
	}
	Write(e.store, items, e.ttl)
	e.settle(ctx)
}

// Edit sets amount and price for sku outright. An amount of zero or less
// removes the item; this is the sole removal path. Editing an absent SKU
// leaves the cart untouched.
func (e *Engine) Edit(ctx context.Context, sku string, amount int, price float64) {
	items := e.Items()
	idx := -1
	for i := range items {
		if items[i].SKU == sku {
			idx = i
			break
		}
	}
	if idx >= 0 {
		if amount <= 0 {
			items = append(items[:idx], items[idx+1:]...)
		} else {
			items[idx].Amount = amount
			items[idx].Price = price
		}
		Write(e.store, items, e.ttl)
	}
	e.settle(ctx)
}

// Clear deletes the persisted cart entirely.
func (e *Engine) Clear(ctx context.Context) {
	e.store.Remove(clientstate.KeyCart)
	e.settle(ctx)
}

// Replace installs the authoritative server copy wholesale. Subscribers are
// notified but nothing is pushed back: the server is the source here.
func (e *Engine) Replace(items []domain.CartItem) {
	if items == nil {
		items = []domain.CartItem{}
	}
	Write(e.store, items, e.ttl)
	e.notify(items)
}

// Subscribe registers a listener invoked synchronously after each mutation
// with the post-mutation snapshot. The returned function unsubscribes.
func (e *Engine) Subscribe(fn func([]domain.CartItem)) func() {
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

// settle finishes a mutation: notify subscribers with the fresh snapshot,
// then hand it to the pusher.
func (e *Engine) settle(ctx context.Context) {
	items := e.Items()
	e.notify(items)
	if e.pusher != nil {
		e.pusher.PushCart(ctx, items)
	}
}

func (e *Engine) notify(items []domain.CartItem) {
	e.mu.Lock()
	subs := make([]func([]domain.CartItem), 0, len(e.subs))
	for _, fn := range e.subs {
		subs = append(subs, fn)
	}
	e.mu.Unlock()
	for _, fn := range subs {
		fn(items)
	}
}
