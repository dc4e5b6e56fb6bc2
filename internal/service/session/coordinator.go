package session

import (
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/sync/singleflight"
)

// Coordinator holds the process-wide concurrency state of the session layer:
// one in-flight refresh per refresh token, and a one-shot logout latch per
// credential so the destructive logout routine runs at most once even when
// several calls hit 401 together. Construct once at startup and inject.
type Coordinator struct {
	flight  singleflight.Group
	latches *ttlcache.Cache[string, *sync.Once]
}

func NewCoordinator() *Coordinator {
	c := &Coordinator{
		latches: ttlcache.New(
			ttlcache.WithTTL[string, *sync.Once](time.Hour),
		),
	}
	go c.latches.Start()
	return c
}

// refresh coalesces concurrent refresh attempts for the same credential into
// a single network call; every waiter receives the same result.
func (c *Coordinator) refresh(key string, fn func() (Tokens, error)) (Tokens, error) {
	v, err, _ := c.flight.Do(key, func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		return Tokens{}, err
	}
	return v.(Tokens), nil
}

// logoutOnce runs fn at most once per key.
func (c *Coordinator) logoutOnce(key string, fn func()) {
	item, _ := c.latches.GetOrSet(key, &sync.Once{})
	item.Value().Do(fn)
}
