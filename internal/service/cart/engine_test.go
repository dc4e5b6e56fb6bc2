package cart

import (
	"context"
	"testing"
	"time"

	"storefront-web/internal/domain"
	"storefront-web/internal/repository/clientstate"

	"go.uber.org/zap"
)

type pusherStub struct {
	calls     int
	lastItems []domain.CartItem
}

func (p *pusherStub) PushCart(_ context.Context, items []domain.CartItem) {
	p.calls++
	p.lastItems = items
}

func newTestEngine() (*Engine, *clientstate.Memory, *pusherStub) {
	store := clientstate.NewMemory()
	pusher := &pusherStub{}
	return New(store, time.Hour, pusher, zap.NewNop()), store, pusher
}

func TestAddAccumulatesAmountAndOverwritesPrice(t *testing.T) {
	e, _, _ := newTestEngine()
	ctx := context.Background()

	e.Add(ctx, "sku-1", 2, 10.0)
	e.Add(ctx, "sku-1", 3, 12.5)

	items := e.Items()
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].Amount != 5 {
		t.Fatalf("expected amount 5, got %d", items[0].Amount)
	}
	if items[0].Price != 12.5 {
		t.Fatalf("expected latest price 12.5, got %v", items[0].Price)
	}
}

func TestAddRejectsNonPositiveAmount(t *testing.T) {
	e, _, pusher := newTestEngine()
	ctx := context.Background()

	e.Add(ctx, "sku-1", 0, 10.0)
	e.Add(ctx, "sku-1", -3, 10.0)

	if len(e.Items()) != 0 {
		t.Fatalf("expected empty cart, got %v", e.Items())
	}
	if pusher.calls != 0 {
		t.Fatalf("expected no pushes for rejected adds, got %d", pusher.calls)
	}
}

func TestEditSetsAbsoluteAmount(t *testing.T) {
	e, _, _ := newTestEngine()
	ctx := context.Background()

	e.Add(ctx, "sku-1", 5, 10.0)
	e.Edit(ctx, "sku-1", 2, 9.0)

	items := e.Items()
	if items[0].Amount != 2 {
		t.Fatalf("expected amount 2 after edit, got %d", items[0].Amount)
	}
	if items[0].Price != 9.0 {
		t.Fatalf("expected price 9.0 after edit, got %v", items[0].Price)
	}
}

func TestEditToZeroRemovesItem(t *testing.T) {
	e, _, _ := newTestEngine()
	ctx := context.Background()

	e.Add(ctx, "sku-1", 1, 10.0)
	e.Add(ctx, "sku-2", 1, 20.0)
	e.Edit(ctx, "sku-1", 0, 0)

	items := e.Items()
	if len(items) != 1 || items[0].SKU != "sku-2" {
		t.Fatalf("expected only sku-2 to remain, got %v", items)
	}
}

func TestEditAbsentSKULeavesCartUntouched(t *testing.T) {
	e, _, _ := newTestEngine()
	ctx := context.Background()

	e.Add(ctx, "sku-1", 1, 10.0)
	e.Edit(ctx, "ghost", 3, 5.0)

	items := e.Items()
	if len(items) != 1 || items[0].SKU != "sku-1" || items[0].Amount != 1 {
		t.Fatalf("expected cart unchanged, got %v", items)
	}
}

func TestClearEmptiesCart(t *testing.T) {
	e, store, _ := newTestEngine()
	ctx := context.Background()

	e.Add(ctx, "sku-1", 1, 10.0)
	e.Clear(ctx)

	if len(e.Items()) != 0 {
		t.Fatalf("expected empty cart after clear, got %v", e.Items())
	}
	if _, ok := store.Get(clientstate.KeyCart); ok {
		t.Fatal("expected cart key removed from store")
	}
}

func TestCorruptValueReadsAsEmpty(t *testing.T) {
	e, store, _ := newTestEngine()

	store.Set(clientstate.KeyCart, "%%%not-json", time.Hour)

	items := e.Items()
	if len(items) != 0 {
		t.Fatalf("expected empty cart from corrupt value, got %v", items)
	}
}

func TestMutationPushesPostMutationSnapshot(t *testing.T) {
	e, _, pusher := newTestEngine()
	ctx := context.Background()

	e.Add(ctx, "sku-1", 2, 10.0)

	if pusher.calls != 1 {
		t.Fatalf("expected 1 push, got %d", pusher.calls)
	}
	if len(pusher.lastItems) != 1 || pusher.lastItems[0].Amount != 2 {
		t.Fatalf("expected pushed snapshot to reflect mutation, got %v", pusher.lastItems)
	}
}

func TestReplaceNotifiesWithoutPushing(t *testing.T) {
	e, _, pusher := newTestEngine()

	var notified []domain.CartItem
	e.Subscribe(func(items []domain.CartItem) { notified = items })

	e.Replace([]domain.CartItem{{SKU: "sku-9", Amount: 4, Price: 7.0}})

	if pusher.calls != 0 {
		t.Fatalf("expected no push on replace, got %d", pusher.calls)
	}
	if len(notified) != 1 || notified[0].SKU != "sku-9" {
		t.Fatalf("expected subscriber notified with replacement, got %v", notified)
	}
	if e.Count("sku-9") != 4 {
		t.Fatalf("expected replaced cart persisted, got %v", e.Items())
	}
}

func TestSubscribeAndUnsubscribe(t *testing.T) {
	e, _, _ := newTestEngine()
	ctx := context.Background()

	calls := 0
	unsubscribe := e.Subscribe(func([]domain.CartItem) { calls++ })

	e.Add(ctx, "sku-1", 1, 10.0)
	unsubscribe()
	e.Add(ctx, "sku-1", 1, 10.0)

	if calls != 1 {
		t.Fatalf("expected 1 notification before unsubscribe, got %d", calls)
	}
}

func TestTotalCount(t *testing.T) {
	e, _, _ := newTestEngine()
	ctx := context.Background()

	e.Add(ctx, "sku-1", 2, 10.0)
	e.Add(ctx, "sku-2", 3, 20.0)

	if got := e.TotalCount(); got != 5 {
		t.Fatalf("expected total count 5, got %d", got)
	}
}
