package timetable

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// RawEvent is one lesson as reported by the portal's schedule grid.
type RawEvent struct {
	ID         string      `json:"id"`
	Classroom  string      `json:"classroom"`
	Group      string      `json:"group"`
	Place      string      `json:"place"`
	Discipline string      `json:"discipline"`
	Comment    *string     `json:"comment"`
	Teachers   TeacherRefs `json:"teachers"`
	DayIndex   int         `json:"dayWeekNum"`
	Period     int         `json:"numberPair"`
}

// TeacherRef is one value of the event's teacher map. The portal mixes full
// records ({"id", "fio"}) with a bare "Surname I.O." search label.
type TeacherRef struct {
	Key   string
	ID    string
	FIO   string
	Label string
}

// TeacherRefs keeps the teacher map in document order.
type TeacherRefs []TeacherRef

// UnmarshalJSON decodes a JSON object preserving key order.
func (t *TeacherRefs) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return errors.New("teachers: invalid json")
	}

	res := gjson.ParseBytes(data)
	switch {
	case res.Type == gjson.Null, res.IsArray():
		// PHP encodes an empty map as [].
		*t = nil
		return nil
	case !res.IsObject():
		return fmt.Errorf("teachers: unexpected json %s", res.Type)
	}

	refs := TeacherRefs{}
	res.ForEach(func(key, value gjson.Result) bool {
		ref := TeacherRef{Key: key.String()}
		switch {
		case value.Type == gjson.String:
			ref.Label = value.String()
		case value.IsObject():
			ref.ID = value.Get("id").String()
			ref.FIO = value.Get("fio").String()
		}
		refs = append(refs, ref)
		return true
	})
	*t = refs
	return nil
}

// MarshalJSON encodes the references back into an ordered JSON object.
func (t TeacherRefs) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, ref := range t {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(ref.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		var value []byte
		if ref.Label != "" {
			value, err = json.Marshal(ref.Label)
		} else {
			value, err = json.Marshal(map[string]string{"id": ref.ID, "fio": ref.FIO})
		}
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Events groups raw events by the portal's slot key.
type Events map[string][]RawEvent

// UnmarshalJSON accepts both an object and the empty array PHP emits for {}.
func (e *Events) UnmarshalJSON(data []byte) error {
	res := gjson.ParseBytes(data)
	if res.Type == gjson.Null || res.IsArray() {
		*e = Events{}
		return nil
	}

	m := map[string][]RawEvent{}
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("decoding events: %w", err)
	}
	*e = m
	return nil
}
