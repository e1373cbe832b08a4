package view

import "explorer/internal/domain"

// Columns maps configured paths to their properties in column order.
// Paths missing from schema are skipped.
func Columns(cfg domain.Configuration, schema domain.Schema) []domain.Property {
	out := make([]domain.Property, 0, len(cfg.Paths))
	for _, p := range cfg.Paths {
		if prop, ok := schema.Find(p.Path); ok {
			out = append(out, prop)
		}
	}
	return out
}

// Available lists properties not yet configured whose path matches pattern.
// An empty pattern matches everything.
func Available(cfg domain.Configuration, schema domain.Schema, pattern string) []domain.Property {
	re := compilePattern(pattern)
	var out []domain.Property
	for _, p := range schema.Properties {
		if cfg.Has(p.Path) || !re.MatchString(p.Path) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// ConfiguredPath is a configured column with its editing affordances.
type ConfiguredPath struct {
	domain.PathFilter
	PrimaryKey bool `json:"primaryKey"`
	CanRaise   bool `json:"canRaise"`
	CanLower   bool `json:"canLower"`
	// Known is false when the path is absent from the current schema.
	Known bool `json:"known"`
}

// Configured lists configured columns whose path matches pattern.
func Configured(cfg domain.Configuration, schema domain.Schema, pattern string) []ConfiguredPath {
	re := compilePattern(pattern)
	var out []ConfiguredPath
	for i, p := range cfg.Paths {
		if !re.MatchString(p.Path) {
			continue
		}
		_, known := schema.Find(p.Path)
		out = append(out, ConfiguredPath{
			PathFilter: p,
			PrimaryKey: p.Path == cfg.PrimaryKey,
			CanRaise:   i > 0,
			CanLower:   i < len(cfg.Paths)-1,
			Known:      known,
		})
	}
	return out
}

// FilterMode is the input a filter control offers.
type FilterMode string

const (
	FilterModeValues FilterMode = "values"
	FilterModeSearch FilterMode = "search"
)

// FilterControl describes the filter input for one configured column.
type FilterControl struct {
	Path    string              `json:"path"`
	Mode    FilterMode          `json:"mode"`
	Options []string            `json:"options,omitempty"`
	Values  domain.FilterValues `json:"values,omitempty"`
	Search  string              `json:"search,omitempty"`
}

// FilterControls picks a values control for columns with options and a
// search control for the rest.
func FilterControls(cfg domain.Configuration, schema domain.Schema) []FilterControl {
	out := make([]FilterControl, 0, len(cfg.Paths))
	for _, p := range cfg.Paths {
		c := FilterControl{Path: p.Path, Mode: FilterModeSearch, Values: p.Values, Search: p.Search}
		if prop, ok := schema.Find(p.Path); ok && prop.HasOptions() {
			c.Mode = FilterModeValues
			c.Options = prop.Options
		}
		out = append(out, c)
	}
	return out
}
