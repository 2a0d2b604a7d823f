package timetable

import (
	"fmt"
	"reflect"
)

// Flatten turns nested slices and arrays into a single-level slice.
// Strings and byte slices are kept as values. A non-sequence input is an error.
func Flatten(seq any) ([]any, error) {
	v := reflect.ValueOf(seq)
	if !isSequence(v) {
		return nil, fmt.Errorf("%w: %T", ErrMalformedSequence, seq)
	}

	var out []any
	flattenInto(&out, v)
	return out, nil
}

func flattenInto(out *[]any, v reflect.Value) {
	for i := 0; i < v.Len(); i++ {
		item := v.Index(i)
		if item.Kind() == reflect.Interface && !item.IsNil() {
			item = item.Elem()
		}
		if isSequence(item) {
			flattenInto(out, item)
			continue
		}
		*out = append(*out, item.Interface())
	}
}

func isSequence(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Slice:
		return v.Type().Elem().Kind() != reflect.Uint8
	case reflect.Array:
		return true
	default:
		return false
	}
}
