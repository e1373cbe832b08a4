package view

import (
	"encoding/json"
	"sort"

	"explorer/internal/domain"
)

// Selection is an immutable set of stringified primary-key values.
// The zero value is an empty selection.
type Selection struct {
	keys map[string]struct{}
}

// NewSelection builds a selection from keys.
func NewSelection(keys ...string) Selection {
	s := Selection{keys: make(map[string]struct{}, len(keys))}
	for _, k := range keys {
		s.keys[k] = struct{}{}
	}
	return s
}

// SelectAll selects the primary key of every record that has one.
func SelectAll(records []*domain.Object, primaryKey string) Selection {
	s := Selection{keys: make(map[string]struct{}, len(records))}
	for _, rec := range records {
		if k, ok := domain.ResolveString(rec, primaryKey); ok {
			s.keys[k] = struct{}{}
		}
	}
	return s
}

func (s Selection) Has(key string) bool {
	_, ok := s.keys[key]
	return ok
}

func (s Selection) Len() int { return len(s.keys) }

// Keys returns the selected keys sorted.
func (s Selection) Keys() []string {
	out := make([]string, 0, len(s.keys))
	for k := range s.keys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Toggle returns a copy with key added or removed.
func (s Selection) Toggle(key string) Selection {
	next := s.With()
	if _, ok := next.keys[key]; ok {
		delete(next.keys, key)
	} else {
		next.keys[key] = struct{}{}
	}
	return next
}

// With returns a copy with keys added.
func (s Selection) With(keys ...string) Selection {
	next := Selection{keys: make(map[string]struct{}, len(s.keys)+len(keys))}
	for k := range s.keys {
		next.keys[k] = struct{}{}
	}
	for _, k := range keys {
		next.keys[k] = struct{}{}
	}
	return next
}

// Rows returns the records among rows whose primary key is selected.
func (s Selection) Rows(rows []*domain.Object, primaryKey string) []*domain.Object {
	f := SelectionFilter{PrimaryKey: primaryKey, Selection: s}
	out := make([]*domain.Object, 0, len(s.keys))
	for _, rec := range rows {
		if f.Match(rec) {
			out = append(out, rec)
		}
	}
	return out
}

func (s Selection) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Keys())
}
