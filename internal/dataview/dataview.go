// Package dataview provides a uniform get/set/has abstraction over either a
// persisted record or a plain structured map, so the form engine is agnostic
// to whether data comes from storage or from raw submitted input.
package dataview

import (
	"strings"

	"github.com/panelforge/panelforge/internal/store"
)

// View wraps one data source. Exactly one of rec and m is set.
type View struct {
	rec store.Record
	m   map[string]any
}

// OfRecord returns a View backed by a persisted record.
func OfRecord(rec store.Record) *View {
	return &View{rec: rec}
}

// OfMap returns a View backed by a plain structured map.
func OfMap(m map[string]any) *View {
	return &View{m: m}
}

// Get resolves a dot-separated path. Missing segments yield nil.
func (v *View) Get(path string) any {
	head, rest := splitPath(path)

	var value any
	var ok bool
	if v.rec != nil {
		if !v.rec.Has(head) {
			return nil
		}
		value = v.rec.Get(head)
	} else {
		value, ok = v.m[head]
		if !ok {
			return nil
		}
	}

	for _, segment := range rest {
		nested, ok := value.(map[string]any)
		if !ok {
			return nil
		}
		value, ok = nested[segment]
		if !ok {
			return nil
		}
	}
	return value
}

// Has reports whether the path resolves to a present value.
func (v *View) Has(path string) bool {
	head, rest := splitPath(path)

	var value any
	if v.rec != nil {
		if !v.rec.Has(head) {
			return false
		}
		value = v.rec.Get(head)
	} else {
		var ok bool
		value, ok = v.m[head]
		if !ok {
			return false
		}
	}

	for _, segment := range rest {
		nested, ok := value.(map[string]any)
		if !ok {
			return false
		}
		value, ok = nested[segment]
		if !ok {
			return false
		}
	}
	return true
}

// Set writes a value at a dot-separated path, creating intermediate maps as
// needed. On a record-backed view only the top-level segment is delegated to
// the record; nested segments are written into its attribute map.
func (v *View) Set(path string, value any) {
	head, rest := splitPath(path)

	if len(rest) == 0 {
		if v.rec != nil {
			v.rec.Set(head, value)
		} else {
			v.m[head] = value
		}
		return
	}

	var target map[string]any
	if v.rec != nil {
		nested, ok := v.rec.Get(head).(map[string]any)
		if !ok {
			nested = map[string]any{}
			v.rec.Set(head, nested)
		}
		target = nested
	} else {
		nested, ok := v.m[head].(map[string]any)
		if !ok {
			nested = map[string]any{}
			v.m[head] = nested
		}
		target = nested
	}

	for _, segment := range rest[:len(rest)-1] {
		nested, ok := target[segment].(map[string]any)
		if !ok {
			nested = map[string]any{}
			target[segment] = nested
		}
		target = nested
	}
	target[rest[len(rest)-1]] = value
}

func splitPath(path string) (string, []string) {
	segments := strings.Split(path, ".")
	return segments[0], segments[1:]
}
