package portal

import (
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"sync"

	"github.com/tidwall/gjson"
)

// fakePortal mimics the schedule grid: one page and one component endpoint
// keeping the cursor on the server side.
type fakePortal struct {
	mu sync.Mutex

	kind  Kind
	token string

	search     *string
	add, minus int
	// resetOnSet mimics portals that jump back to the current week when the
	// search changes.
	resetOnSet bool
	noEvents   bool
	expired    bool
	// keepCookie stops the session cookie from rotating.
	keepCookie bool
	// failCall makes the n-th component call fail, counting from 1.
	failCall int

	calls   []string
	cookies []string
	session int
}

func newFakePortal(kind Kind) *fakePortal {
	return &fakePortal{kind: kind, token: "tok"}
}

func (f *fakePortal) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if c, err := r.Cookie("edinyi_lk_session"); err == nil {
		f.cookies = append(f.cookies, c.Value)
	}
	if !f.keepCookie {
		f.session++
		http.SetCookie(w, &http.Cookie{Name: "edinyi_lk_session", Value: fmt.Sprintf("s%d", f.session)})
	}

	switch {
	case r.Method == http.MethodGet && r.URL.Path == f.kind.Page:
		f.page(w)
	case r.Method == http.MethodPost && r.URL.Path == f.kind.Endpoint:
		f.message(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakePortal) data() map[string]any {
	var search any
	if f.search != nil {
		search = *f.search
	}
	return map[string]any{
		f.kind.SearchField:     search,
		"addNumWeek":           f.add,
		"minusNumWeek":         f.minus,
		"scheduleGridWeekType": 1,
	}
}

func (f *fakePortal) events() map[string]any {
	offset := f.add - f.minus
	return map[string]any{
		"0-1": []map[string]any{{
			"id":         fmt.Sprintf("%s%+d", *f.search, offset),
			"place":      "101",
			"discipline": fmt.Sprintf("week %+d", offset),
			"comment":    nil,
			"teachers":   []any{},
			"dayWeekNum": 0,
			"numberPair": 1,
		}},
	}
}

func (f *fakePortal) page(w http.ResponseWriter) {
	if f.expired {
		fmt.Fprint(w, `<html><head><meta http-equiv="refresh" content="0;url=/login"></head><body></body></html>`)
		return
	}

	initial, _ := json.Marshal(map[string]any{
		"fingerprint": map[string]any{"id": "cmp", "name": "schedule-group-grid"},
		"serverMemo": map[string]any{
			"checksum": "c0",
			"htmlHash": "h0",
			"data":     f.data(),
		},
	})
	fmt.Fprintf(w, `<html><head><meta name="csrf-token" content="%s"></head><body>
<div wire:id="nav" wire:initial-data="{&quot;fingerprint&quot;:{}}"></div>
<div wire:id="cmp" wire:initial-data="%s"></div>
</body></html>`, f.token, html.EscapeString(string(initial)))
}

func (f *fakePortal) message(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("X-CSRF-TOKEN") != f.token || r.Header.Get("X-Livewire") != "true" {
		http.Error(w, "bad token", http.StatusForbidden)
		return
	}
	if f.failCall > 0 && len(f.calls)+1 == f.failCall {
		f.failCall = 0
		http.Error(w, "upstream failure", http.StatusBadGateway)
		return
	}
	body, _ := io.ReadAll(r.Body)
	payload := gjson.GetBytes(body, "updates.0.payload")
	method := payload.Get("method").String()
	f.calls = append(f.calls, method)

	switch method {
	case MethodSet:
		s := payload.Get("params.0").String()
		f.search = &s
		if f.resetOnSet {
			f.add, f.minus = 0, 0
		}
	case MethodAddWeek:
		f.add++
	case MethodMinusWeek:
		f.minus++
	}

	data := f.data()
	if f.search != nil && !f.noEvents {
		data["events"] = f.events()
	}
	resp, _ := json.Marshal(map[string]any{
		"effects": map[string]any{"html": "<div></div>"},
		"serverMemo": map[string]any{
			"data":     data,
			"checksum": fmt.Sprintf("c%d", len(f.calls)),
		},
	})
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(resp)
}

func (f *fakePortal) recordedCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}
