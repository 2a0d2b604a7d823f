package portal

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/javiermolinar/timetable/internal/timetable"
)

// Session drives one schedule grid component. It loads the page lazily,
// converges the remote cursor on demand and persists every cookie the portal
// rotates. A Session is not safe for concurrent use.
type Session struct {
	kind      Kind
	instance  string
	transport Transport
	cookies   CookieStore
	logger    *zap.Logger
	newCallID func() string

	csrfToken string
	component *Component
	hasEvents bool

	converged     bool
	convergedHash uint64
}

// NewSession creates a session for the given portal page kind.
func NewSession(kind Kind, instance string, transport Transport, cookies CookieStore, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		kind:      kind,
		instance:  instance,
		transport: transport,
		cookies:   cookies,
		logger:    logger.With(zap.String("kind", kind.Name)),
		newCallID: func() string { return uuid.NewString()[:4] },
	}
}

// Cursor returns the remote cursor as last reported, or false before the
// page was loaded.
func (s *Session) Cursor() (Cursor, bool) {
	if s.component == nil {
		return Cursor{}, false
	}
	return s.component.Cursor(s.kind.SearchField), true
}

// Goto moves the remote cursor to search and offset.
func (s *Session) Goto(ctx context.Context, search string, offset int) error {
	if s.component == nil {
		if err := s.load(ctx); err != nil {
			return err
		}
	}

	// A failed walk leaves the remote cursor anywhere.
	s.converged = false

	target := Cursor{Search: search, Offset: offset}
	start := s.component.Cursor(s.kind.SearchField)
	limit := 2 + abs(target.Offset-start.Offset) + abs(target.Offset)
	if planned := Plan(start, target); len(planned) > 0 {
		s.logger.Debug("moving cursor",
			zap.String("search", search),
			zap.Int("offset", offset),
			zap.Int("planned_calls", len(planned)))
	}

	for calls := 0; ; calls++ {
		call, ok := Next(s.component.Cursor(s.kind.SearchField), target)
		if !ok {
			break
		}
		if calls >= limit {
			return fmt.Errorf("%w: %d calls towards %q %+d", ErrCursorStuck, calls, search, offset)
		}
		if err := s.call(ctx, call); err != nil {
			return err
		}
	}

	s.converged = true
	s.convergedHash = s.paramsHash(target)
	return nil
}

// Events returns the raw events for search at offset weeks from the current
// one. No remote call is made when the cursor already points there.
func (s *Session) Events(ctx context.Context, search string, offset int) (timetable.Events, error) {
	target := Cursor{Search: search, Offset: offset}
	if s.component == nil || !s.converged || s.convergedHash != s.paramsHash(target) {
		if err := s.Goto(ctx, search, offset); err != nil {
			return nil, err
		}
	}
	if !s.hasEvents {
		return timetable.Events{}, nil
	}
	return s.component.Events()
}

func (s *Session) load(ctx context.Context) error {
	resp, err := s.do(ctx, Request{Method: http.MethodGet, Path: s.kind.Page})
	if err != nil {
		return fmt.Errorf("loading %s: %w", s.kind.Page, err)
	}

	page, err := ParsePage(bytes.NewReader(resp.Body))
	if err != nil {
		return err
	}
	s.csrfToken = page.CSRFToken
	s.component = page.Component
	s.hasEvents = page.Component.HasData("events")
	s.converged = false

	s.logger.Debug("schedule page loaded",
		zap.String("search", page.Component.Cursor(s.kind.SearchField).Search),
		zap.Bool("has_events", s.hasEvents))
	return nil
}

func (s *Session) call(ctx context.Context, c Call) error {
	body, err := s.component.Payload(s.newCallID(), c)
	if err != nil {
		return fmt.Errorf("encoding %s call: %w", c.Method, err)
	}

	header := http.Header{}
	header.Set("X-CSRF-TOKEN", s.csrfToken)
	header.Set("X-Livewire", "true")
	header.Set("Content-Type", "application/json")
	header.Set("Accept", "application/json")

	resp, err := s.do(ctx, Request{
		Method: http.MethodPost,
		Path:   s.kind.Endpoint,
		Header: header,
		Body:   body,
	})
	if err != nil {
		return fmt.Errorf("calling %s: %w", c.Method, err)
	}

	hasEvents, err := s.component.Merge(resp.Body)
	if err != nil {
		return fmt.Errorf("calling %s: %w", c.Method, err)
	}
	s.hasEvents = hasEvents

	s.logger.Debug("component method called",
		zap.String("method", c.Method),
		zap.Strings("params", c.Params),
		zap.Bool("has_events", hasEvents))
	return nil
}

func (s *Session) do(ctx context.Context, req Request) (Response, error) {
	req.Cookies = s.cookies.Cookies()
	resp, err := s.transport.Do(ctx, req)
	if err != nil {
		return Response{}, err
	}
	if err := s.persistCookies(req.Cookies, resp.Cookies); err != nil {
		return Response{}, err
	}
	return resp, nil
}

func (s *Session) persistCookies(sent, received map[string]string) error {
	names := make([]string, 0, len(received))
	for name := range received {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		value := received[name]
		if old, ok := sent[name]; ok && old == value {
			continue
		}
		if err := s.cookies.SetCookie(name, value); err != nil {
			return fmt.Errorf("saving cookie %s: %w", name, err)
		}
		s.logger.Debug("session cookie rotated", zap.String("cookie", name))
	}
	return nil
}

// paramsHash fingerprints everything a converged cursor depends on.
func (s *Session) paramsHash(target Cursor) uint64 {
	d := xxhash.New()
	write := func(parts ...string) {
		for _, p := range parts {
			_, _ = d.WriteString(p)
			_, _ = d.WriteString("\x00")
		}
	}
	write(target.Search, strconv.Itoa(target.Offset), s.instance)

	cookies := s.cookies.Cookies()
	names := make([]string, 0, len(cookies))
	for name := range cookies {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		write(name, cookies[name])
	}
	return d.Sum64()
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
