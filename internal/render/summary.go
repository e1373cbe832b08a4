package render

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"explorer/internal/domain"
	"explorer/internal/service"
	"explorer/internal/source"
	"explorer/internal/view"
)

var statusPaint = map[service.Status]func(a ...any) string{
	service.StatusIdle:        color.New(color.FgHiBlack).SprintFunc(),
	service.StatusLoading:     color.New(color.FgYellow).SprintFunc(),
	service.StatusReady:       color.New(color.FgGreen).SprintFunc(),
	service.StatusUnavailable: color.New(color.FgRed).SprintFunc(),
}

// Status prints a one-line summary of v.
func Status(w io.Writer, v service.View) error {
	paint := statusPaint[v.Status]
	if paint == nil {
		paint = fmt.Sprint
	}
	line := fmt.Sprintf("%s  %s  %d of %d rows", paint(string(v.Status)), v.Config.URL, len(v.Rows), v.Total)
	if v.Selection.Len() > 0 {
		line += fmt.Sprintf("  %d selected", v.Selection.Len())
	}
	if v.OnlySelected {
		line += "  (selection only)"
	}
	if _, err := fmt.Fprintln(w, line); err != nil {
		return err
	}
	if v.Error != "" {
		_, err := fmt.Fprintln(w, color.RedString("  %s", v.Error))
		return err
	}
	return nil
}

// View prints the status line followed by the visible rows.
func View(w io.Writer, v service.View) error {
	if err := Status(w, v); err != nil {
		return err
	}
	return Rows(w, v.Columns, v.Rows, v.Config.PrimaryKey, v.Selection)
}

// Schema lists inferred properties and marks those already configured.
func Schema(w io.Writer, sch domain.Schema, cfg domain.Configuration) error {
	if sch.Empty() {
		_, err := fmt.Fprintln(w, "No properties found.")
		return err
	}
	table := tablewriter.NewTable(w)
	table.Header("Path", "Kind", "Example", "Options", "Column")
	for _, p := range sch.Properties {
		opts := ""
		if p.HasOptions() {
			opts = strconv.Itoa(len(p.Options))
		}
		col := ""
		if i := cfg.Index(p.Path); i >= 0 {
			col = strconv.Itoa(i + 1)
		}
		if err := table.Append([]string{p.Path, string(p.Kind), truncate(domain.Stringify(p.Example), 40), opts, col}); err != nil {
			return err
		}
	}
	for _, p := range sch.Unsupported {
		if err := table.Append([]string{p.Path, dimPaint(string(p.Kind)), "", "", ""}); err != nil {
			return err
		}
	}
	return table.Render()
}

// Aggregates prints one small table per breakdown.
func Aggregates(w io.Writer, breakdowns []view.Breakdown) error {
	if len(breakdowns) == 0 {
		_, err := fmt.Fprintln(w, "No columns with discrete values to aggregate.")
		return err
	}
	for _, b := range breakdowns {
		if _, err := fmt.Fprintf(w, "%s (%d rows)\n", color.New(color.Bold).Sprint(b.Path), b.Total); err != nil {
			return err
		}
		table := tablewriter.NewTable(w)
		table.Header("Value", "Count", "Percent")
		for _, bucket := range b.Buckets {
			if err := table.Append([]string{
				bucket.Value,
				strconv.Itoa(bucket.Count),
				strconv.FormatFloat(bucket.Percent, 'f', 1, 64) + "%",
			}); err != nil {
				return err
			}
		}
		if err := table.Render(); err != nil {
			return err
		}
	}
	return nil
}

// Sources prints previously opened sources, or the examples on first run.
func Sources(w io.Writer, recents []string, examples []source.Example) error {
	if len(recents) > 0 {
		for i, u := range recents {
			if _, err := fmt.Fprintf(w, "%2d  %s\n", i+1, u); err != nil {
				return err
			}
		}
		return nil
	}
	if _, err := fmt.Fprintln(w, "No sources yet. Try one of these:"); err != nil {
		return err
	}
	for _, e := range examples {
		if _, err := fmt.Fprintf(w, "  %s  %s\n", e.Label, dimPaint(e.URL)); err != nil {
			return err
		}
	}
	return nil
}
