package schema

import (
	"strings"

	"explorer/internal/domain"
)

const (
	// OptionsThreshold is the distinct-value count at which a string column
	// stops offering a discrete value list.
	OptionsThreshold = 10
	imageSuffix      = ".png"
)

// Infer derives the ordered property list for records.
//
// Shape is sampled from two anchors per nesting level: the first and the
// last record. Keys that appear in neither anchor produce no property, and
// a path whose type differs across records is typed by the anchors alone.
// Only the distinct-value scan for string options looks at every record.
func Infer(records []*domain.Object) domain.Schema {
	s := domain.Schema{Properties: []domain.Property{}}
	if len(records) == 0 {
		return s
	}
	inferLevel(records, nil, &s)
	return s
}

func inferLevel(records []*domain.Object, prefix []string, s *domain.Schema) {
	first := anchor(records[0], prefix)
	last := anchor(records[len(records)-1], prefix)
	basis := first
	if basis == nil {
		basis = last
	}
	if basis == nil {
		return
	}

	for _, key := range basis.Keys() {
		segments := make([]string, len(prefix), len(prefix)+1)
		copy(segments, prefix)
		segments = append(segments, key)
		path := domain.JoinPath(segments...)

		value, ok := anchorValue(first, last, key)
		if !ok {
			continue
		}
		switch v := value.(type) {
		case string:
			s.Properties = append(s.Properties, stringProperty(records, path, v))
		case float64:
			s.Properties = append(s.Properties, domain.Property{
				Path:    path,
				Kind:    domain.KindNumber,
				Example: v,
				Align:   domain.AlignEnd,
			})
		case bool:
			s.Properties = append(s.Properties, domain.Property{
				Path:    path,
				Kind:    domain.KindBoolean,
				Example: v,
				Options: []string{"true", "false"},
				Align:   domain.AlignCenter,
			})
		case []any:
			s.Unsupported = append(s.Unsupported, domain.Property{
				Path:    path,
				Kind:    domain.KindUnsupported,
				Example: v,
				Align:   domain.AlignStart,
			})
		case *domain.Object:
			inferLevel(records, segments, s)
		}
	}
}

// anchor returns the sub-object at prefix, or nil.
func anchor(rec *domain.Object, prefix []string) *domain.Object {
	if len(prefix) == 0 {
		return rec
	}
	v, ok := domain.Resolve(rec, domain.JoinPath(prefix...))
	if !ok {
		return nil
	}
	obj, _ := v.(*domain.Object)
	return obj
}

// anchorValue prefers the first anchor's value unless it is missing or null.
func anchorValue(first, last *domain.Object, key string) (any, bool) {
	if v, ok := first.Get(key); ok && v != nil {
		return v, true
	}
	if v, ok := last.Get(key); ok && v != nil {
		return v, true
	}
	return nil, false
}

func stringProperty(records []*domain.Object, path, example string) domain.Property {
	p := domain.Property{
		Path:    path,
		Kind:    domain.KindString,
		Example: example,
		Align:   domain.AlignStart,
	}
	if strings.HasSuffix(example, imageSuffix) {
		p.Hint = domain.RenderHintImage
		p.Align = domain.AlignCenter
	}
	p.Options = distinct(records, path)
	return p
}

// distinct collects stringified values of path across all records in
// first-seen order. It returns nil once OptionsThreshold is reached.
func distinct(records []*domain.Object, path string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, rec := range records {
		v, ok := domain.Resolve(rec, path)
		if !ok || v == nil {
			continue
		}
		s := domain.Stringify(v)
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
		if len(out) >= OptionsThreshold {
			return nil
		}
	}
	if out == nil {
		out = []string{}
	}
	return out
}
