package wishlist

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
	lastSlugs []string
}

func (p *pusherStub) PushWishlist(_ context.Context, slugs []string) {
	p.calls++
	p.lastSlugs = slugs
}

func newTestEngine() (*Engine, *clientstate.Memory, *pusherStub) {
	store := clientstate.NewMemory()
	pusher := &pusherStub{}
	return New(store, time.Hour, pusher, zap.NewNop()), store, pusher
}

func TestAddSlugSavesOnce(t *testing.T) {
	e, _, pusher := newTestEngine()
	ctx := context.Background()

	e.AddSlug(ctx, "red-shirt")
	e.AddSlug(ctx, "red-shirt")

	items := e.Items()
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].AddedAt == "" {
		t.Fatal("expected added_at to be stamped")
	}
	if pusher.calls != 1 {
		t.Fatalf("expected 1 push, duplicate add must not push, got %d", pusher.calls)
	}
}

func TestAddEmptySlugIsNoOp(t *testing.T) {
	e, _, pusher := newTestEngine()

	e.Add(context.Background(), domain.WishlistItem{Slug: ""})

	if len(e.Items()) != 0 || pusher.calls != 0 {
		t.Fatalf("expected no write for empty slug, got %v pushes %d", e.Items(), pusher.calls)
	}
}

func TestRemoveDropsSlug(t *testing.T) {
	e, _, _ := newTestEngine()
	ctx := context.Background()

	e.AddSlug(ctx, "red-shirt")
	e.AddSlug(ctx, "blue-shirt")
	e.Remove(ctx, "red-shirt")

	items := e.Items()
	if len(items) != 1 || items[0].Slug != "blue-shirt" {
		t.Fatalf("expected only blue-shirt to remain, got %v", items)
	}
}

func TestRemoveAbsentSlug(t *testing.T) {
	e, _, _ := newTestEngine()
	ctx := context.Background()

	e.AddSlug(ctx, "red-shirt")
	e.Remove(ctx, "ghost")

	if len(e.Items()) != 1 {
		t.Fatalf("expected wishlist unchanged, got %v", e.Items())
	}
}

func TestContains(t *testing.T) {
	e, _, _ := newTestEngine()
	ctx := context.Background()

	e.AddSlug(ctx, "red-shirt")

	if !e.Contains("red-shirt") {
		t.Fatal("expected red-shirt to be saved")
	}
	if e.Contains("blue-shirt") {
		t.Fatal("expected blue-shirt to be absent")
	}
}

func TestClearRemovesKey(t *testing.T) {
	e, store, _ := newTestEngine()
	ctx := context.Background()

	e.AddSlug(ctx, "red-shirt")
	e.Clear(ctx)

	if len(e.Items()) != 0 {
		t.Fatalf("expected empty wishlist, got %v", e.Items())
	}
	if _, ok := store.Get(clientstate.KeyWishlist); ok {
		t.Fatal("expected wishlist key removed from store")
	}
}

func TestReplaceAllInstallsServerCopyWithoutPush(t *testing.T) {
	e, _, pusher := newTestEngine()
	ctx := context.Background()

	e.AddSlug(ctx, "local-only")
	pushesBefore := pusher.calls

	e.ReplaceAll([]domain.WishlistItem{{Slug: "server-a"}, {Slug: "server-b"}})

	items := e.Items()
	if len(items) != 2 || items[0].Slug != "server-a" {
		t.Fatalf("expected server copy to replace local, got %v", items)
	}
	if pusher.calls != pushesBefore {
		t.Fatalf("expected no push on replace, got %d extra", pusher.calls-pushesBefore)
	}
}

func TestMutationPushesSlugList(t *testing.T) {
	e, _, pusher := newTestEngine()
	ctx := context.Background()

	e.AddSlug(ctx, "red-shirt")
	e.AddSlug(ctx, "blue-shirt")

	if len(pusher.lastSlugs) != 2 || pusher.lastSlugs[1] != "blue-shirt" {
		t.Fatalf("expected pushed slugs [red-shirt blue-shirt], got %v", pusher.lastSlugs)
	}
}
