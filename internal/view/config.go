package view

import "explorer/internal/domain"

// ── Configuration edits ─────────────────────────────────────
// Every function takes a Configuration by value and returns a fresh deep
// copy; the argument is never modified. Edits that reference a path not in
// the configuration, or that would move an entry out of bounds, return an
// unchanged copy.

// AddPath appends path as a new column. Duplicates are not rejected;
// callers check Has first.
func AddPath(cfg domain.Configuration, path string) domain.Configuration {
	next := cfg.Clone()
	next.Paths = append(next.Paths, domain.PathFilter{Path: path})
	return next
}

// RemovePath drops every entry for path.
func RemovePath(cfg domain.Configuration, path string) domain.Configuration {
	next := cfg.Clone()
	kept := next.Paths[:0]
	for _, p := range next.Paths {
		if p.Path != path {
			kept = append(kept, p)
		}
	}
	next.Paths = kept
	return next
}

// RaisePath swaps path with its predecessor.
func RaisePath(cfg domain.Configuration, path string) domain.Configuration {
	next := cfg.Clone()
	if i := next.Index(path); i > 0 {
		next.Paths[i-1], next.Paths[i] = next.Paths[i], next.Paths[i-1]
	}
	return next
}

// LowerPath swaps path with its successor.
func LowerPath(cfg domain.Configuration, path string) domain.Configuration {
	next := cfg.Clone()
	if i := next.Index(path); i >= 0 && i < len(next.Paths)-1 {
		next.Paths[i+1], next.Paths[i] = next.Paths[i], next.Paths[i+1]
	}
	return next
}

// CanRaise reports whether RaisePath would move path.
func CanRaise(cfg domain.Configuration, path string) bool {
	return cfg.Index(path) > 0
}

// CanLower reports whether LowerPath would move path.
func CanLower(cfg domain.Configuration, path string) bool {
	i := cfg.Index(path)
	return i >= 0 && i < len(cfg.Paths)-1
}

// SetValues replaces the allow-list on path. An empty list disables it.
func SetValues(cfg domain.Configuration, path string, values []string) domain.Configuration {
	next := cfg.Clone()
	i := next.Index(path)
	if i < 0 {
		return next
	}
	if len(values) == 0 {
		next.Paths[i].Values = nil
		return next
	}
	next.Paths[i].Values = append(domain.FilterValues(nil), values...)
	return next
}

// SetPathSearch replaces the search pattern on path.
func SetPathSearch(cfg domain.Configuration, path, search string) domain.Configuration {
	next := cfg.Clone()
	if i := next.Index(path); i >= 0 {
		next.Paths[i].Search = search
	}
	return next
}

// ClearFilters removes search and values from every entry.
func ClearFilters(cfg domain.Configuration) domain.Configuration {
	next := cfg.Clone()
	for i := range next.Paths {
		next.Paths[i].Search = ""
		next.Paths[i].Values = nil
	}
	return next
}

// SetPrimaryKey sets the path identifying rows.
func SetPrimaryKey(cfg domain.Configuration, path string) domain.Configuration {
	next := cfg.Clone()
	next.PrimaryKey = path
	return next
}

// SetRefresh sets the reload schedule; "" disables it.
func SetRefresh(cfg domain.Configuration, spec string) domain.Configuration {
	next := cfg.Clone()
	next.Refresh = spec
	return next
}
