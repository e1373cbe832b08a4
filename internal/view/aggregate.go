package view

import "explorer/internal/domain"

// MissingLabel is the bucket value for rows without the path.
const MissingLabel = "(missing)"

// Bucket counts rows sharing one value.
type Bucket struct {
	Value   string  `json:"value"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// Breakdown is the value distribution of one column.
type Breakdown struct {
	Path    string   `json:"path"`
	Total   int      `json:"total"`
	Buckets []Bucket `json:"buckets"`
}

// Aggregate counts values per configured column that offers options.
// Buckets keep first-seen order.
func Aggregate(rows []*domain.Object, cfg domain.Configuration, schema domain.Schema) []Breakdown {
	var out []Breakdown
	for _, col := range Columns(cfg, schema) {
		if !col.HasOptions() {
			continue
		}
		b := Breakdown{Path: col.Path, Total: len(rows)}
		index := map[string]int{}
		for _, rec := range rows {
			v, ok := domain.ResolveString(rec, col.Path)
			if !ok {
				v = MissingLabel
			}
			i, seen := index[v]
			if !seen {
				i = len(b.Buckets)
				index[v] = i
				b.Buckets = append(b.Buckets, Bucket{Value: v})
			}
			b.Buckets[i].Count++
		}
		for i := range b.Buckets {
			b.Buckets[i].Percent = float64(b.Buckets[i].Count) / float64(len(rows)) * 100
		}
		out = append(out, b)
	}
	return out
}
