package view

import "explorer/internal/domain"

// Query carries the per-session view state that is not persisted.
type Query struct {
	// Search is the free-text term matched against every configured path.
	Search string
	// Selection holds primary-key values of selected rows.
	Selection Selection
	// OnlySelected switches to the selection override.
	OnlySelected bool
}

// Predicate compiles cfg and q into the single visibility test.
func (q Query) Predicate(cfg domain.Configuration) Predicate {
	if q.OnlySelected {
		return SelectionFilter{PrimaryKey: cfg.PrimaryKey, Selection: q.Selection}
	}
	preds := PathFilters(cfg)
	if q.Search != "" {
		preds = append(preds, NewAnyPathSearch(cfg.PathNames(), q.Search))
	}
	return All(preds...)
}

// ComputeVisible rescans records and returns those that pass cfg and q,
// in source order. Inputs are not modified and the result is a new slice.
//
// With q.OnlySelected set, only rows whose primary key is selected are
// returned and every other filter is ignored. Otherwise a row must satisfy
// every path filter and, when q.Search is set, match it on at least one
// configured path.
func ComputeVisible(records []*domain.Object, cfg domain.Configuration, q Query) []*domain.Object {
	match := q.Predicate(cfg)
	out := make([]*domain.Object, 0, len(records))
	for _, rec := range records {
		if match.Match(rec) {
			out = append(out, rec)
		}
	}
	return out
}
