// Package session owns the short-lived access credential: it refreshes it
// through the provider with at most one network call in flight, and it runs
// the logout cascade exactly once when the session turns out to be dead.
package session

import (
	"context"
	"errors"
	"sync"

	"storefront-web/internal/repository/clientstate"

	"go.uber.org/zap"
)

// State is the observable position of the token manager.
type State int

const (
	StateNoToken State = iota
	StateRefreshing
	StateHasToken
	StateLoggedOut
)

// Manager drives the token lifecycle for one visitor. It is cheap to build
// per request; the cross-request concurrency control lives in Coordinator.
type Manager struct {
	store clientstate.Store
	creds clientstate.Credentials
	exch  Exchanger
	coord *Coordinator
	ttls  clientstate.TTLs
	log   *zap.Logger

	mu    sync.Mutex
	state State
}

func NewManager(store clientstate.Store, creds clientstate.Credentials, exch Exchanger, coord *Coordinator, ttls clientstate.TTLs, log *zap.Logger) *Manager {
	return &Manager{
		store: store,
		creds: creds,
		exch:  exch,
		coord: coord,
		ttls:  ttls,
		log:   log,
	}
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}

// LoggedOut reports whether this manager ran the logout cascade.
func (m *Manager) LoggedOut() bool {
	return m.State() == StateLoggedOut
}

// IsLoggedIn reports whether a username is persisted for the visitor.
func (m *Manager) IsLoggedIn() bool {
	return clientstate.IsLoggedIn(m.store)
}

// Username returns the persisted username, if any.
func (m *Manager) Username() (string, bool) {
	return clientstate.Username(m.store)
}

// Token returns the cached access token, refreshing it when absent. A cached
// token is returned as-is even if stale; the server rejecting it with 401 is
// handled by HandleUnauthorized, never by a retry loop here.
func (m *Manager) Token(ctx context.Context) (string, error) {
	if token, ok := clientstate.AccessToken(m.store); ok {
		m.setState(StateHasToken)
		return token, nil
	}
	return m.Refresh(ctx)
}

// Refresh exchanges the refresh credential for a new access token. All
// concurrent callers holding the same credential share one network call.
// A rejected credential logs the visitor out exactly once; any other failure
// leaves the session intact with no token.
func (m *Manager) Refresh(ctx context.Context) (string, error) {
	refreshToken, ok := m.creds.RefreshToken()
	if !ok {
		// No credential at all behaves like a rejected one, minus the
		// provider round-trip.
		m.runLogout(ctx)
		m.setState(StateLoggedOut)
		return "", ErrUnauthorized
	}

	m.setState(StateRefreshing)
	tokens, err := m.coord.refresh(refreshToken, func() (Tokens, error) {
		return m.exch.Refresh(ctx, refreshToken)
	})
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			m.coord.logoutOnce(refreshToken, func() { m.runLogout(ctx) })
			m.setState(StateLoggedOut)
			return "", err
		}
		m.setState(StateNoToken)
		return "", err
	}

	m.persist(tokens)
	m.setState(StateHasToken)
	return tokens.AccessToken, nil
}

// Exchange trades an OAuth code for a full credential set and persists it.
func (m *Manager) Exchange(ctx context.Context, code string) (Tokens, error) {
	tokens, err := m.exch.Exchange(ctx, code)
	if err != nil {
		return Tokens{}, err
	}
	m.persist(tokens)
	m.setState(StateHasToken)
	return tokens, nil
}

// HandleUnauthorized reacts to a 401 on an authenticated call: the session is
// dead, so log out. The latch guarantees the cascade runs once no matter how
// many concurrent calls fail together.
func (m *Manager) HandleUnauthorized(ctx context.Context) {
	m.logoutLatched(ctx)
}

// Logout ends the session on explicit user request.
func (m *Manager) Logout(ctx context.Context) {
	m.logoutLatched(ctx)
}

func (m *Manager) logoutLatched(ctx context.Context) {
	key := m.latchKey()
	if key == "" {
		// Nothing identifies the session across requests; the purge is
		// idempotent, run it directly.
		m.runLogout(ctx)
	} else {
		m.coord.logoutOnce(key, func() { m.runLogout(ctx) })
	}
	m.setState(StateLoggedOut)
}

func (m *Manager) latchKey() string {
	if refreshToken, ok := m.creds.RefreshToken(); ok {
		return refreshToken
	}
	if token, ok := clientstate.AccessToken(m.store); ok {
		return token
	}
	return ""
}

// runLogout purges everything session-scoped: provider-side session
// (best effort), refresh cookie, cart, wishlist, tokens.
func (m *Manager) runLogout(ctx context.Context) {
	if token, ok := clientstate.AccessToken(m.store); ok {
		if err := m.exch.Logout(ctx, token); err != nil {
			m.log.Debug("provider logout failed", zap.Error(err))
		}
	}
	m.creds.ClearRefreshToken()
	m.store.Remove(clientstate.KeyCart)
	m.store.Remove(clientstate.KeyWishlist)
	clientstate.ClearTokens(m.store)
}

func (m *Manager) persist(tokens Tokens) {
	m.store.Set(clientstate.KeyAccessToken, tokens.AccessToken, m.ttls.Access)
	if tokens.Username != "" {
		m.store.Set(clientstate.KeyUsername, tokens.Username, m.ttls.Refresh)
	}
	if tokens.RefreshToken != "" {
		m.creds.SetRefreshToken(tokens.RefreshToken, m.ttls.Refresh)
	}
}
