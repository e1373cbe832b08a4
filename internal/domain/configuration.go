package domain

import "encoding/json"

// PathFilter is one column entry of a Configuration.
// Search is a case-insensitive pattern; Values is a discrete allow-list.
type PathFilter struct {
	Path   string       `json:"path" yaml:"path"`
	Search string       `json:"search,omitempty" yaml:"search,omitempty"`
	Values FilterValues `json:"values,omitempty" yaml:"values,omitempty"`
}

// Active reports whether the entry constrains rows at all.
func (f PathFilter) Active() bool {
	return f.Search != "" || len(f.Values) > 0
}

func (f PathFilter) clone() PathFilter {
	out := f
	if f.Values != nil {
		out.Values = make(FilterValues, len(f.Values))
		copy(out.Values, f.Values)
	}
	return out
}

// FilterValues holds allow-listed values in their stringified form.
// Persisted documents may carry raw JSON scalars (true, 2); they are
// stringified on decode so comparisons always happen on strings.
type FilterValues []string

func (v *FilterValues) UnmarshalJSON(data []byte) error {
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*v = nil
		return nil
	}
	out := make(FilterValues, len(raw))
	for i, r := range raw {
		out[i] = Stringify(normalize(r))
	}
	*v = out
	return nil
}

// Configuration is the persisted, user-editable view document for one source.
// It is a value: every edit produces a new Configuration via the view package.
type Configuration struct {
	URL        string       `json:"url" yaml:"url"`
	PrimaryKey string       `json:"primaryKey,omitempty" yaml:"primaryKey,omitempty"`
	Paths      []PathFilter `json:"paths" yaml:"paths"`
	// Refresh is an optional cron expression for periodic reloads.
	Refresh string `json:"refresh,omitempty" yaml:"refresh,omitempty"`
}

// BareConfiguration is the empty document for url.
func BareConfiguration(url string) Configuration {
	return Configuration{URL: url, Paths: []PathFilter{}}
}

// Clone returns a deep copy.
func (c Configuration) Clone() Configuration {
	out := c
	out.Paths = make([]PathFilter, len(c.Paths))
	for i, p := range c.Paths {
		out.Paths[i] = p.clone()
	}
	return out
}

// Index returns the position of path in Paths, or -1.
func (c Configuration) Index(path string) int {
	for i, p := range c.Paths {
		if p.Path == path {
			return i
		}
	}
	return -1
}

// Has reports whether path is configured as a column.
func (c Configuration) Has(path string) bool {
	return c.Index(path) >= 0
}

// PathNames lists configured paths in column order.
func (c Configuration) PathNames() []string {
	out := make([]string, len(c.Paths))
	for i, p := range c.Paths {
		out[i] = p.Path
	}
	return out
}
