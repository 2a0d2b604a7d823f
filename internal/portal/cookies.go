package portal

import (
	"maps"
	"sync"
)

// CookieStore holds the session cookies. SetCookie is expected to persist.
type CookieStore interface {
	Cookies() map[string]string
	SetCookie(name, value string) error
}

// MemoryCookies is a CookieStore that lives only in memory.
type MemoryCookies struct {
	mu      sync.Mutex
	cookies map[string]string
}

// NewMemoryCookies returns a store seeded with a copy of initial.
func NewMemoryCookies(initial map[string]string) *MemoryCookies {
	return &MemoryCookies{cookies: maps.Clone(initial)}
}

// Cookies returns a copy of the stored cookies.
func (m *MemoryCookies) Cookies() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := maps.Clone(m.cookies)
	if out == nil {
		out = map[string]string{}
	}
	return out
}

// SetCookie stores a cookie.
func (m *MemoryCookies) SetCookie(name, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cookies == nil {
		m.cookies = map[string]string{}
	}
	m.cookies[name] = value
	return nil
}
