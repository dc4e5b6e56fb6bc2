package variant

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"storefront-web/internal/domain"
)

func TestVariantsCachesResult(t *testing.T) {
	var fetches int32
	cache := NewCache(func(_ context.Context, skus []string) []domain.VariantFull {
		atomic.AddInt32(&fetches, 1)
		return []domain.VariantFull{{SKU: skus[0]}}
	})
	ctx := context.Background()

	first := cache.Variants(ctx, []string{"sku-1"}, false)
	second := cache.Variants(ctx, []string{"sku-1"}, false)

	if atomic.LoadInt32(&fetches) != 1 {
		t.Fatalf("expected 1 fetch, got %d", fetches)
	}
	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("expected cached result, got %v and %v", first, second)
	}
}

func TestConcurrentMissesShareOneFetch(t *testing.T) {
	var fetches int32
	release := make(chan struct{})
	cache := NewCache(func(_ context.Context, _ []string) []domain.VariantFull {
		atomic.AddInt32(&fetches, 1)
		<-release
		return []domain.VariantFull{{SKU: "sku-1"}}
	})
	ctx := context.Background()

	var wg sync.WaitGroup
	started := make(chan struct{}, 3)
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			started <- struct{}{}
			cache.Variants(ctx, []string{"sku-1"}, false)
		}()
	}
	for i := 0; i < 3; i++ {
		<-started
	}
	close(release)
	wg.Wait()

	if got := atomic.LoadInt32(&fetches); got != 1 {
		t.Fatalf("expected coalesced single fetch, got %d", got)
	}
}

func TestForceRefreshRefetches(t *testing.T) {
	var fetches int32
	cache := NewCache(func(_ context.Context, _ []string) []domain.VariantFull {
		atomic.AddInt32(&fetches, 1)
		return []domain.VariantFull{{SKU: "sku-1"}}
	})
	ctx := context.Background()

	cache.Variants(ctx, []string{"sku-1"}, false)
	cache.Variants(ctx, []string{"sku-1"}, true)

	if got := atomic.LoadInt32(&fetches); got != 2 {
		t.Fatalf("expected refetch on force refresh, got %d fetches", got)
	}
}

func TestFailedFetchYieldsEmptySlice(t *testing.T) {
	cache := NewCache(func(_ context.Context, _ []string) []domain.VariantFull {
		return nil
	})

	got := cache.Variants(context.Background(), []string{"sku-1"}, false)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil result, got %v", got)
	}
}

func TestCacheKeyNormalization(t *testing.T) {
	var fetches int32
	cache := NewCache(func(_ context.Context, _ []string) []domain.VariantFull {
		atomic.AddInt32(&fetches, 1)
		return []domain.VariantFull{}
	})
	ctx := context.Background()

	cache.Variants(ctx, []string{"SKU-B", "sku-a"}, false)
	cache.Variants(ctx, []string{"sku-a", "sku-b"}, false)

	if got := atomic.LoadInt32(&fetches); got != 1 {
		t.Fatalf("expected equal sets to share one entry, got %d fetches", got)
	}
}
