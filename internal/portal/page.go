package portal

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// initialDataMarker identifies the schedule grid among the page's components.
const initialDataMarker = "scheduleGridWeekType"

// Page is what a freshly loaded schedule page yields.
type Page struct {
	CSRFToken string
	Component *Component
}

// ParsePage extracts the csrf token and the schedule grid component from a
// schedule page. A page with a meta refresh means the session has expired.
func ParsePage(r io.Reader) (Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Page{}, fmt.Errorf("parsing page: %w", err)
	}

	token, ok := doc.Find(`head meta[name="csrf-token"]`).First().Attr("content")
	if !ok {
		if doc.Find(`head meta[http-equiv="refresh"]`).Length() > 0 {
			return Page{}, ErrSessionExpired
		}
		return Page{}, ErrTokenNotFound
	}

	var raw string
	doc.Find("div").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		data, ok := s.Attr("wire:initial-data")
		if ok && strings.Contains(data, initialDataMarker) {
			raw = data
			return false
		}
		return true
	})
	if raw == "" {
		return Page{}, ErrInitialDataMissing
	}

	component, err := ParseComponent([]byte(raw))
	if err != nil {
		return Page{}, err
	}
	return Page{CSRFToken: token, Component: component}, nil
}

// ParseComponent decodes a component's initial data.
func ParseComponent(data []byte) (*Component, error) {
	var c Component
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decoding initial data: %w", err)
	}
	if len(c.Fingerprint) == 0 || len(c.ServerMemo) == 0 {
		return nil, fmt.Errorf("%w: fingerprint and serverMemo are required", ErrMalformedResponse)
	}
	return &c, nil
}
