package integration

import (
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"sync"

	"github.com/tidwall/gjson"

	"github.com/javiermolinar/timetable/internal/config"
	"github.com/javiermolinar/timetable/internal/portal"
)

// event is one portal event as the schedule grid serializes it.
type event struct {
	ID         string         `json:"id"`
	Place      string         `json:"place"`
	Group      string         `json:"group,omitempty"`
	Discipline string         `json:"discipline"`
	Comment    *string        `json:"comment"`
	Teachers   map[string]any `json:"teachers"`
	Day        int            `json:"dayWeekNum"`
	Pair       int            `json:"numberPair"`
}

// cursor is the server side state of one component.
type cursor struct {
	search     *string
	add, minus int
}

// fakePortal serves the group and teacher grids of one egov66 instance.
// Timetables are keyed by search value and week offset.
type fakePortal struct {
	mu sync.Mutex

	timetables map[string]map[int][]event
	cursors    map[string]*cursor // by kind name
	session    int
	lastCookie string
}

func newFakePortal() *fakePortal {
	return &fakePortal{
		timetables: map[string]map[int][]event{},
		cursors:    map[string]*cursor{},
	}
}

func (f *fakePortal) set(search string, offset int, events ...event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.timetables[search] == nil {
		f.timetables[search] = map[int][]event{}
	}
	f.timetables[search][offset] = events
}

func (f *fakePortal) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if c, err := r.Cookie(config.SessionCookie); err == nil {
		f.lastCookie = c.Value
	}
	f.session++
	http.SetCookie(w, &http.Cookie{Name: config.SessionCookie, Value: fmt.Sprintf("rotated-%d", f.session)})

	for _, kind := range []portal.Kind{portal.Groups, portal.Teachers} {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == kind.Page:
			f.page(w, kind)
			return
		case r.Method == http.MethodPost && r.URL.Path == kind.Endpoint:
			f.message(w, r, kind)
			return
		}
	}
	http.NotFound(w, r)
}

func (f *fakePortal) cursor(kind portal.Kind) *cursor {
	c, ok := f.cursors[kind.Name]
	if !ok {
		c = &cursor{}
		f.cursors[kind.Name] = c
	}
	return c
}

func (f *fakePortal) data(kind portal.Kind) map[string]any {
	c := f.cursor(kind)
	var search any
	if c.search != nil {
		search = *c.search
	}
	return map[string]any{
		kind.SearchField:       search,
		"addNumWeek":           c.add,
		"minusNumWeek":         c.minus,
		"scheduleGridWeekType": 1,
	}
}

func (f *fakePortal) events(kind portal.Kind) map[string][]event {
	c := f.cursor(kind)
	slots := map[string][]event{}
	for _, ev := range f.timetables[*c.search][c.add-c.minus] {
		key := fmt.Sprintf("%d-%d", ev.Day, ev.Pair)
		slots[key] = append(slots[key], ev)
	}
	return slots
}

func (f *fakePortal) page(w http.ResponseWriter, kind portal.Kind) {
	// A fresh page starts on the current week with no search.
	f.cursors[kind.Name] = &cursor{}

	initial, _ := json.Marshal(map[string]any{
		"fingerprint": map[string]any{"id": "grid", "name": kind.Name},
		"serverMemo": map[string]any{
			"checksum": "c0",
			"htmlHash": "h0",
			"data":     f.data(kind),
		},
	})
	fmt.Fprintf(w, `<!DOCTYPE html><html><head><meta name="csrf-token" content="token-%d"></head><body>
<div wire:id="grid" wire:initial-data="%s"></div>
</body></html>`, f.session, html.EscapeString(string(initial)))
}

func (f *fakePortal) message(w http.ResponseWriter, r *http.Request, kind portal.Kind) {
	if r.Header.Get("X-CSRF-TOKEN") == "" {
		http.Error(w, "csrf token mismatch", 419)
		return
	}
	body, _ := io.ReadAll(r.Body)
	payload := gjson.GetBytes(body, "updates.0.payload")

	c := f.cursor(kind)
	switch payload.Get("method").String() {
	case portal.MethodSet:
		s := payload.Get("params.0").String()
		c.search = &s
	case portal.MethodAddWeek:
		c.add++
	case portal.MethodMinusWeek:
		c.minus++
	}

	data := f.data(kind)
	if c.search != nil {
		data["events"] = f.events(kind)
	}
	resp, _ := json.Marshal(map[string]any{
		"effects":    map[string]any{"html": "<div></div>"},
		"serverMemo": map[string]any{"data": data, "checksum": "c1"},
	})
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(resp)
}
