package portal

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/javiermolinar/timetable/internal/timetable"
)

// Component is the client-side copy of a Livewire component. Both parts are
// kept as raw JSON and echoed back to the server on every call.
type Component struct {
	Fingerprint json.RawMessage `json:"fingerprint"`
	ServerMemo  json.RawMessage `json:"serverMemo"`
}

// Cursor reads the remote selection from the memo. A null search reads as "".
func (c *Component) Cursor(searchField string) Cursor {
	data := gjson.GetBytes(c.ServerMemo, "data")
	return Cursor{
		Search: data.Get(escapePath(searchField)).String(),
		Offset: int(data.Get("addNumWeek").Int() - data.Get("minusNumWeek").Int()),
	}
}

// HasData reports whether the memo carries the data key.
func (c *Component) HasData(key string) bool {
	return gjson.GetBytes(c.ServerMemo, "data."+escapePath(key)).Exists()
}

// Events decodes the events of the selected week. A memo without events
// yields an empty set.
func (c *Component) Events() (timetable.Events, error) {
	raw := gjson.GetBytes(c.ServerMemo, "data.events")
	if !raw.Exists() {
		return timetable.Events{}, nil
	}
	var events timetable.Events
	if err := json.Unmarshal([]byte(raw.Raw), &events); err != nil {
		return nil, err
	}
	return events, nil
}

type callPayload struct {
	ID     string   `json:"id"`
	Method string   `json:"method"`
	Params []string `json:"params"`
}

type update struct {
	Type    string      `json:"type"`
	Payload callPayload `json:"payload"`
}

type message struct {
	Fingerprint json.RawMessage `json:"fingerprint"`
	ServerMemo  json.RawMessage `json:"serverMemo"`
	Updates     []update        `json:"updates"`
}

// Payload encodes a call message for the component endpoint.
func (c *Component) Payload(id string, call Call) ([]byte, error) {
	params := call.Params
	if params == nil {
		params = []string{}
	}
	return json.Marshal(message{
		Fingerprint: c.Fingerprint,
		ServerMemo:  c.ServerMemo,
		Updates: []update{{
			Type:    "callMethod",
			Payload: callPayload{ID: id, Method: call.Method, Params: params},
		}},
	})
}

// Merge applies a call response to the memo: every key of the returned data
// replaces the stored one, and the checksum and html hash are refreshed. It
// reports whether the response carried events.
func (c *Component) Merge(response []byte) (bool, error) {
	if !gjson.ValidBytes(response) {
		return false, fmt.Errorf("%w: invalid json", ErrMalformedResponse)
	}
	memo := gjson.GetBytes(response, "serverMemo")
	if !memo.IsObject() {
		return false, fmt.Errorf("%w: serverMemo missing", ErrMalformedResponse)
	}

	out := append([]byte(nil), c.ServerMemo...)
	var err error
	data := memo.Get("data")
	data.ForEach(func(k, v gjson.Result) bool {
		out, err = sjson.SetRawBytes(out, "data."+escapePath(k.String()), []byte(v.Raw))
		return err == nil
	})
	if err != nil {
		return false, fmt.Errorf("merging memo: %w", err)
	}

	for _, key := range []string{"checksum", "htmlHash"} {
		v := memo.Get(key)
		if !v.Exists() {
			continue
		}
		if out, err = sjson.SetRawBytes(out, key, []byte(v.Raw)); err != nil {
			return false, fmt.Errorf("merging memo: %w", err)
		}
	}

	c.ServerMemo = out
	return data.Get("events").Exists(), nil
}

var pathEscaper = strings.NewReplacer(
	`\`, `\\`,
	`.`, `\.`,
	`*`, `\*`,
	`?`, `\?`,
	`|`, `\|`,
	`#`, `\#`,
	`@`, `\@`,
)

// escapePath quotes a key for use as a single gjson/sjson path component.
func escapePath(key string) string {
	return pathEscaper.Replace(key)
}
