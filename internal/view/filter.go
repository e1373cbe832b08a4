package view

import (
	"regexp"

	"explorer/internal/domain"
)

// ── Predicates ──────────────────────────────────────────────
// A Predicate keeps or drops one record. Configured path filters,
// the free-text search and the selection override are each compiled
// into a Predicate and chained with All.

// Predicate decides whether a record is visible.
type Predicate interface {
	Match(rec *domain.Object) bool
}

// PredicateFunc adapts a plain function to the Predicate interface.
type PredicateFunc func(*domain.Object) bool

func (f PredicateFunc) Match(rec *domain.Object) bool { return f(rec) }

// compilePattern builds a case-insensitive matcher. A pattern that is not a
// valid regular expression is matched literally.
func compilePattern(pattern string) *regexp.Regexp {
	if re, err := regexp.Compile("(?i)" + pattern); err == nil {
		return re
	}
	return regexp.MustCompile("(?i)" + regexp.QuoteMeta(pattern))
}

// SearchFilter matches the stringified value at Path against a pattern.
// A missing value is matched as "".
type SearchFilter struct {
	Path string
	re   *regexp.Regexp
}

// NewSearchFilter compiles pattern for path.
func NewSearchFilter(path, pattern string) *SearchFilter {
	return &SearchFilter{Path: path, re: compilePattern(pattern)}
}

func (f *SearchFilter) Match(rec *domain.Object) bool {
	s, _ := domain.ResolveString(rec, f.Path)
	return f.re.MatchString(s)
}

// ValuesFilter keeps records whose stringified value at Path is allow-listed.
type ValuesFilter struct {
	Path    string
	allowed map[string]struct{}
}

// NewValuesFilter builds an allow-list filter for path.
func NewValuesFilter(path string, values []string) *ValuesFilter {
	allowed := make(map[string]struct{}, len(values))
	for _, v := range values {
		allowed[v] = struct{}{}
	}
	return &ValuesFilter{Path: path, allowed: allowed}
}

func (f *ValuesFilter) Match(rec *domain.Object) bool {
	s, ok := domain.ResolveString(rec, f.Path)
	if !ok {
		return false
	}
	_, hit := f.allowed[s]
	return hit
}

// AnyPathSearch keeps records where at least one of Paths matches.
type AnyPathSearch struct {
	Paths []string
	re    *regexp.Regexp
}

// NewAnyPathSearch compiles the free-text search over paths.
func NewAnyPathSearch(paths []string, pattern string) *AnyPathSearch {
	return &AnyPathSearch{Paths: paths, re: compilePattern(pattern)}
}

func (f *AnyPathSearch) Match(rec *domain.Object) bool {
	for _, p := range f.Paths {
		s, ok := domain.ResolveString(rec, p)
		if ok && f.re.MatchString(s) {
			return true
		}
	}
	return false
}

// SelectionFilter keeps records whose primary key is selected.
type SelectionFilter struct {
	PrimaryKey string
	Selection  Selection
}

func (f SelectionFilter) Match(rec *domain.Object) bool {
	key, ok := domain.ResolveString(rec, f.PrimaryKey)
	return ok && f.Selection.Has(key)
}

// All keeps a record only when every predicate does.
func All(preds ...Predicate) Predicate {
	return PredicateFunc(func(rec *domain.Object) bool {
		for _, p := range preds {
			if !p.Match(rec) {
				return false
			}
		}
		return true
	})
}

// PathFilters compiles the active filters of cfg in column order.
// Search and values on the same entry both apply.
func PathFilters(cfg domain.Configuration) []Predicate {
	var preds []Predicate
	for _, p := range cfg.Paths {
		if p.Search != "" {
			preds = append(preds, NewSearchFilter(p.Path, p.Search))
		}
		if len(p.Values) > 0 {
			preds = append(preds, NewValuesFilter(p.Path, p.Values))
		}
	}
	return preds
}
