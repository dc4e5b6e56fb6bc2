package clientstate

import "time"

// Mirror writes through to two backing stores and reads preferring the
// primary. A hit served from the secondary is copied back into the primary so
// the canonical location recovers after the browser cleared it.
type Mirror struct {
	primary   Store
	secondary Store
	ttl       time.Duration
}

// NewMirror builds a Mirror; ttl is used when reconciling a secondary hit
// back into the primary.
func NewMirror(primary, secondary Store, ttl time.Duration) *Mirror {
	return &Mirror{primary: primary, secondary: secondary, ttl: ttl}
}

func (m *Mirror) Get(key string) (string, bool) {
	if v, ok := m.primary.Get(key); ok {
		return v, true
	}
	v, ok := m.secondary.Get(key)
	if !ok {
		return "", false
	}
	m.primary.Set(key, v, m.ttl)
	return v, true
}

func (m *Mirror) Set(key, value string, ttl time.Duration) {
	m.primary.Set(key, value, ttl)
	m.secondary.Set(key, value, ttl)
}

func (m *Mirror) Remove(key string) {
	m.primary.Remove(key)
	m.secondary.Remove(key)
}
