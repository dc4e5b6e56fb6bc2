package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"storefront-web/internal/repository/clientstate"

	"go.uber.org/zap"
)

type exchangerStub struct {
	refreshCalls int32
	logoutCalls  int32
	refreshFn    func() (Tokens, error)
	exchangeFn   func(code string) (Tokens, error)
}

func (s *exchangerStub) Exchange(_ context.Context, code string) (Tokens, error) {
	if s.exchangeFn != nil {
		return s.exchangeFn(code)
	}
	return Tokens{}, errors.New("not configured")
}

func (s *exchangerStub) Refresh(_ context.Context, _ string) (Tokens, error) {
	atomic.AddInt32(&s.refreshCalls, 1)
	return s.refreshFn()
}

func (s *exchangerStub) Logout(_ context.Context, _ string) error {
	atomic.AddInt32(&s.logoutCalls, 1)
	return nil
}

func testTTLs() clientstate.TTLs {
	return clientstate.TTLs{
		Access:     59 * time.Minute,
		Refresh:    time.Hour * 24,
		Cart:       time.Hour,
		Wishlist:   time.Hour,
		AnalyticID: time.Hour,
	}
}

func newTestManager(exch Exchanger) (*Manager, *clientstate.Memory) {
	store := clientstate.NewMemory()
	mgr := NewManager(store, store, exch, NewCoordinator(), testTTLs(), zap.NewNop())
	return mgr, store
}

func TestTokenReturnsCachedWithoutRefresh(t *testing.T) {
	exch := &exchangerStub{}
	mgr, store := newTestManager(exch)
	store.Set(clientstate.KeyAccessToken, "cached", time.Hour)

	token, err := mgr.Token(context.Background())
	if err != nil || token != "cached" {
		t.Fatalf("expected cached token, got %q err=%v", token, err)
	}
	if atomic.LoadInt32(&exch.refreshCalls) != 0 {
		t.Fatal("expected no refresh for cached token")
	}
}

func TestConcurrentRefreshesShareOneCall(t *testing.T) {
	release := make(chan struct{})
	exch := &exchangerStub{
		refreshFn: func() (Tokens, error) {
			<-release
			return Tokens{AccessToken: "fresh", Username: "alice"}, nil
		},
	}
	mgr, store := newTestManager(exch)
	store.SetRefreshToken("refresh-1", time.Hour)

	var wg sync.WaitGroup
	results := make([]string, 3)
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			token, _ := mgr.Refresh(context.Background())
			results[i] = token
		}(i)
	}
	// Give the goroutines a moment to pile onto the same flight.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := atomic.LoadInt32(&exch.refreshCalls); got != 1 {
		t.Fatalf("expected 1 provider call for concurrent refreshes, got %d", got)
	}
	for i, token := range results {
		if token != "fresh" {
			t.Fatalf("waiter %d got %q, want fresh", i, token)
		}
	}
}

func TestRefreshPersistsTokens(t *testing.T) {
	exch := &exchangerStub{
		refreshFn: func() (Tokens, error) {
			return Tokens{AccessToken: "fresh", RefreshToken: "rotated", Username: "alice"}, nil
		},
	}
	mgr, store := newTestManager(exch)
	store.SetRefreshToken("refresh-1", time.Hour)

	if _, err := mgr.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	if v, _ := store.Get(clientstate.KeyAccessToken); v != "fresh" {
		t.Fatalf("expected access token persisted, got %q", v)
	}
	if v, _ := store.Get(clientstate.KeyUsername); v != "alice" {
		t.Fatalf("expected username persisted, got %q", v)
	}
	if v, _ := store.RefreshToken(); v != "rotated" {
		t.Fatalf("expected rotated refresh token, got %q", v)
	}
	if mgr.State() != StateHasToken {
		t.Fatalf("expected StateHasToken, got %v", mgr.State())
	}
}

func TestRejectedCredentialLogsOutOnce(t *testing.T) {
	release := make(chan struct{})
	exch := &exchangerStub{
		refreshFn: func() (Tokens, error) {
			<-release
			return Tokens{}, ErrUnauthorized
		},
	}
	mgr, store := newTestManager(exch)
	store.SetRefreshToken("refresh-1", time.Hour)
	store.Set(clientstate.KeyAccessToken, "stale", time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			mgr.Refresh(context.Background())
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := atomic.LoadInt32(&exch.logoutCalls); got != 1 {
		t.Fatalf("expected logout cascade exactly once, got %d", got)
	}
	if !mgr.LoggedOut() {
		t.Fatal("expected manager to report logged out")
	}
	if _, ok := store.RefreshToken(); ok {
		t.Fatal("expected refresh credential cleared")
	}
	if _, ok := store.Get(clientstate.KeyAccessToken); ok {
		t.Fatal("expected access token cleared")
	}
}

func TestTransientRefreshFailureKeepsSession(t *testing.T) {
	exch := &exchangerStub{
		refreshFn: func() (Tokens, error) {
			return Tokens{}, errors.New("connection refused")
		},
	}
	mgr, store := newTestManager(exch)
	store.SetRefreshToken("refresh-1", time.Hour)

	_, err := mgr.Refresh(context.Background())
	if err == nil || errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected transient error, got %v", err)
	}

	if atomic.LoadInt32(&exch.logoutCalls) != 0 {
		t.Fatal("expected no logout on transient failure")
	}
	if _, ok := store.RefreshToken(); !ok {
		t.Fatal("expected refresh credential preserved")
	}
	if mgr.State() != StateNoToken {
		t.Fatalf("expected StateNoToken, got %v", mgr.State())
	}
}

func TestRefreshWithoutCredentialLogsOut(t *testing.T) {
	exch := &exchangerStub{}
	mgr, _ := newTestManager(exch)

	_, err := mgr.Refresh(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if !mgr.LoggedOut() {
		t.Fatal("expected logged-out state")
	}
	if atomic.LoadInt32(&exch.refreshCalls) != 0 {
		t.Fatal("expected no provider call without a credential")
	}
}

func TestLogoutPurgesSessionState(t *testing.T) {
	exch := &exchangerStub{}
	mgr, store := newTestManager(exch)
	store.SetRefreshToken("refresh-1", time.Hour)
	store.Set(clientstate.KeyAccessToken, "token", time.Hour)
	store.Set(clientstate.KeyUsername, "alice", time.Hour)
	store.Set(clientstate.KeyCart, "cart-blob", time.Hour)
	store.Set(clientstate.KeyWishlist, "wishlist-blob", time.Hour)
	store.Set(clientstate.KeyAnalyticID, "anon-id", time.Hour)

	mgr.Logout(context.Background())

	if atomic.LoadInt32(&exch.logoutCalls) != 1 {
		t.Fatalf("expected provider logout, got %d calls", exch.logoutCalls)
	}
	for _, key := range []string{
		clientstate.KeyAccessToken,
		clientstate.KeyUsername,
		clientstate.KeyCart,
		clientstate.KeyWishlist,
	} {
		if _, ok := store.Get(key); ok {
			t.Fatalf("expected %s removed on logout", key)
		}
	}
	// The anonymous analytics id survives a logout.
	if _, ok := store.Get(clientstate.KeyAnalyticID); !ok {
		t.Fatal("expected analytic id preserved")
	}
	if _, ok := store.RefreshToken(); ok {
		t.Fatal("expected refresh credential cleared")
	}
}

func TestExchangePersistsTokens(t *testing.T) {
	exch := &exchangerStub{
		exchangeFn: func(code string) (Tokens, error) {
			if code != "auth-code" {
				return Tokens{}, errors.New("bad code")
			}
			return Tokens{AccessToken: "fresh", RefreshToken: "refresh-1", Username: "alice"}, nil
		},
	}
	mgr, store := newTestManager(exch)

	tokens, err := mgr.Exchange(context.Background(), "auth-code")
	if err != nil {
		t.Fatalf("exchange failed: %v", err)
	}
	if tokens.Username != "alice" {
		t.Fatalf("expected username alice, got %q", tokens.Username)
	}
	if !mgr.IsLoggedIn() {
		t.Fatal("expected logged in after exchange")
	}
	if v, _ := store.RefreshToken(); v != "refresh-1" {
		t.Fatalf("expected refresh token persisted, got %q", v)
	}
}
