// Package clientstate persists the per-visitor shopping session: cart and
// wishlist blobs, tokens, username and the analytic id. The browser cookie
// jar is the primary medium; a server-side mirror provides the recovery
// fallback for keys that must survive a cleared cookie.
package clientstate

import (
	"encoding/json"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// Cookie keys shared by the whole stack.
const (
	KeyAccessToken = "access_token"
	KeyUsername    = "username"
	KeyCart        = "hex_cart"
	KeyWishlist    = "wishlist"
	KeyAnalyticID  = "analytic_id"
	KeyDevice      = "device_key"
)

// Store is durable key/value storage for one visitor. Operations never fail:
// a missing or unreadable value reports absent, writes that cannot be applied
// are logged by the implementation and dropped.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string, ttl time.Duration)
	Remove(key string)
}

// Credentials manages the refresh token, which lives outside the readable
// store and is only ever touched by the session layer.
type Credentials interface {
	RefreshToken() (string, bool)
	SetRefreshToken(token string, ttl time.Duration)
	ClearRefreshToken()
}

// SecondaryProvider hands out the per-device secondary leg of a Mirror.
type SecondaryProvider interface {
	For(deviceID string) Store
}

// TTLs groups the cookie lifetimes so they travel together through wiring.
type TTLs struct {
	Access     time.Duration
	Refresh    time.Duration
	Cart       time.Duration
	Wishlist   time.Duration
	AnalyticID time.Duration
}

// WriteJSON stores v as URL-escaped JSON text under key.
func WriteJSON(s Store, key string, v any, ttl time.Duration) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	s.Set(key, url.QueryEscape(string(raw)), ttl)
}

// ReadJSON decodes the URL-escaped JSON value under key into out. It reports
// false on missing or malformed data; malformed data is the caller's cue to
// treat the value as empty, never as an error.
func ReadJSON(s Store, key string, out any, log *zap.Logger) bool {
	raw, ok := s.Get(key)
	if !ok || raw == "" {
		return false
	}
	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		logCorrupt(log, key, err)
		return false
	}
	if err := json.Unmarshal([]byte(decoded), out); err != nil {
		logCorrupt(log, key, err)
		return false
	}
	return true
}

func logCorrupt(log *zap.Logger, key string, err error) {
	if log != nil {
		log.Warn("corrupt persisted value, treating as empty",
			zap.String("key", key), zap.Error(err))
	}
}

// AccessToken returns the cached access token, if any. Absence does not mean
// logged out; it means the session layer should try a refresh first.
func AccessToken(s Store) (string, bool) {
	return s.Get(KeyAccessToken)
}

// Username returns the persisted username. Its presence is the sole local
// signal of "logged in".
func Username(s Store) (string, bool) {
	return s.Get(KeyUsername)
}

// IsLoggedIn reports whether a username is persisted.
func IsLoggedIn(s Store) bool {
	_, ok := Username(s)
	return ok
}

// ClearTokens removes the access token and username.
func ClearTokens(s Store) {
	s.Remove(KeyAccessToken)
	s.Remove(KeyUsername)
}
