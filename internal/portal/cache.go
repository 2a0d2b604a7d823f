package portal

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/javiermolinar/timetable/internal/timetable"
)

// EventSource returns the raw events of one entity for one week.
type EventSource interface {
	Events(ctx context.Context, search string, offset int) (timetable.Events, error)
}

// CachedSource memoizes an EventSource for a while and serializes access to
// it, which makes a Session usable from concurrent handlers.
type CachedSource struct {
	mu    sync.Mutex
	src   EventSource
	cache *cache.Cache
}

// NewCachedSource wraps src. Entries expire after ttl.
func NewCachedSource(src EventSource, ttl time.Duration) *CachedSource {
	return &CachedSource{
		src:   src,
		cache: cache.New(ttl, 2*ttl),
	}
}

// Events returns cached events when fresh, otherwise asks the source.
func (c *CachedSource) Events(ctx context.Context, search string, offset int) (timetable.Events, error) {
	key := fmt.Sprintf("%s|%d", search, offset)
	if v, ok := c.cache.Get(key); ok {
		return v.(timetable.Events), nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.cache.Get(key); ok {
		return v.(timetable.Events), nil
	}

	events, err := c.src.Events(ctx, search, offset)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(key, events)
	return events, nil
}

// Flush drops every cached entry.
func (c *CachedSource) Flush() {
	c.cache.Flush()
}
