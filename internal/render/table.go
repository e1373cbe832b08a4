// Package render draws explorer state as terminal tables.
package render

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"explorer/internal/domain"
	"explorer/internal/view"
)

// MaxCellWidth truncates long string cells.
const MaxCellWidth = 60

// NoColumns is printed instead of an empty table.
const NoColumns = "No columns configured. Pick one with `explorer columns add <url> <path>`."

var (
	selectedPaint = color.New(color.FgGreen, color.Bold).SprintFunc()
	dimPaint      = color.New(color.FgHiBlack).SprintFunc()
)

// Rows draws rows under columns. When primaryKey is set a leading marker
// column shows which rows are in sel.
func Rows(w io.Writer, columns []domain.Property, rows []*domain.Object, primaryKey string, sel view.Selection) error {
	if len(columns) == 0 {
		_, err := fmt.Fprintln(w, NoColumns)
		return err
	}

	marker := primaryKey != ""
	header := make([]any, 0, len(columns)+1)
	aligns := make([]tw.Align, 0, len(columns)+1)
	if marker {
		header = append(header, "")
		aligns = append(aligns, tw.AlignCenter)
	}
	for _, c := range columns {
		header = append(header, c.Path)
		aligns = append(aligns, align(c.Align))
	}

	table := tablewriter.NewTable(w,
		tablewriter.WithRowAlignmentConfig(tw.CellAlignment{PerColumn: aligns}),
	)
	table.Header(header...)

	for _, rec := range rows {
		line := make([]string, 0, len(header))
		if marker {
			key, _ := domain.ResolveString(rec, primaryKey)
			if sel.Has(key) {
				line = append(line, selectedPaint("●"))
			} else {
				line = append(line, dimPaint("○"))
			}
		}
		for _, c := range columns {
			line = append(line, Cell(c, rec))
		}
		if err := table.Append(line); err != nil {
			return fmt.Errorf("append row: %w", err)
		}
	}
	return table.Render()
}

// Cell renders the value of prop in rec according to its hint and kind.
func Cell(prop domain.Property, rec *domain.Object) string {
	v, ok := domain.Resolve(rec, prop.Path)
	if !ok {
		return ""
	}
	if v == nil {
		return dimPaint("null")
	}
	switch {
	case prop.Hint == domain.RenderHintImage:
		return "[img] " + domain.Stringify(v)
	case prop.Kind == domain.KindBoolean:
		if b, isBool := v.(bool); isBool {
			if b {
				return "✓"
			}
			return "✗"
		}
	}
	return truncate(domain.Stringify(v), MaxCellWidth)
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}

func align(a domain.Align) tw.Align {
	switch a {
	case domain.AlignCenter:
		return tw.AlignCenter
	case domain.AlignEnd:
		return tw.AlignRight
	default:
		return tw.AlignLeft
	}
}
