package domain

// Kind classifies a leaf value. Objects are never leaves; arrays are tagged
// KindUnsupported.
type Kind string

const (
	KindString      Kind = "string"
	KindNumber      Kind = "number"
	KindBoolean     Kind = "boolean"
	KindUnsupported Kind = "unsupported"
)

// RenderHint tells a render surface how to draw a cell.
type RenderHint string

const (
	RenderHintNone  RenderHint = ""
	RenderHintImage RenderHint = "image"
)

// Align is the preferred horizontal alignment of a column.
type Align string

const (
	AlignStart  Align = "start"
	AlignCenter Align = "center"
	AlignEnd    Align = "end"
)

// Property describes one leaf Path found by schema inference.
// Properties are value objects; callers must not modify Options in place.
type Property struct {
	Path    string     `json:"path"`
	Kind    Kind       `json:"kind"`
	Example any        `json:"example"`
	Options []string   `json:"options,omitempty"`
	Hint    RenderHint `json:"renderHint,omitempty"`
	Align   Align      `json:"align"`
}

// HasOptions reports whether the property offers a discrete value list.
func (p Property) HasOptions() bool {
	return p.Options != nil
}

// Schema is the ordered result of inference over one record collection.
type Schema struct {
	Properties []Property `json:"properties"`
	// Unsupported lists array-valued paths that produce no column.
	Unsupported []Property `json:"unsupported,omitempty"`
}

// Find returns the property for path.
func (s Schema) Find(path string) (Property, bool) {
	for _, p := range s.Properties {
		if p.Path == path {
			return p, true
		}
	}
	return Property{}, false
}

// Paths lists property paths in schema order.
func (s Schema) Paths() []string {
	out := make([]string, len(s.Properties))
	for i, p := range s.Properties {
		out[i] = p.Path
	}
	return out
}

// Empty reports whether no columns can be offered.
func (s Schema) Empty() bool {
	return len(s.Properties) == 0
}
