package mcpserver

import (
	"explorer/internal/domain"
	"explorer/internal/service"
)

// rowSummary is a record projected onto the configured columns.
type rowSummary map[string]any

// project keeps only the configured paths of rec; missing paths are omitted.
func project(rec *domain.Object, paths []string) rowSummary {
	out := make(rowSummary, len(paths))
	for _, p := range paths {
		if v, ok := domain.Resolve(rec, p); ok {
			out[p] = v
		}
	}
	return out
}

// viewResult is what view tools return.
type viewResult struct {
	URL          string       `json:"url"`
	Status       string       `json:"status"`
	Error        string       `json:"error,omitempty"`
	Columns      []string     `json:"columns"`
	Total        int          `json:"total"`
	Visible      int          `json:"visible"`
	Selected     []string     `json:"selected,omitempty"`
	OnlySelected bool         `json:"onlySelected,omitempty"`
	Rows         []rowSummary `json:"rows"`
	Truncated    bool         `json:"truncated,omitempty"`
}

func summarizeView(v service.View, limit int) viewResult {
	if limit <= 0 {
		limit = DefaultRowLimit
	}
	paths := v.Config.PathNames()
	if v.Config.PrimaryKey != "" && !v.Config.Has(v.Config.PrimaryKey) {
		paths = append([]string{v.Config.PrimaryKey}, paths...)
	}
	res := viewResult{
		URL:          v.Config.URL,
		Status:       string(v.Status),
		Error:        v.Error,
		Columns:      v.Config.PathNames(),
		Total:        v.Total,
		Visible:      len(v.Rows),
		Selected:     v.Selection.Keys(),
		OnlySelected: v.OnlySelected,
		Rows:         []rowSummary{},
	}
	for i, rec := range v.Rows {
		if i == limit {
			res.Truncated = true
			break
		}
		res.Rows = append(res.Rows, project(rec, paths))
	}
	return res
}
