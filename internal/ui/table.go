package ui

import (
	"encoding/csv"
	"encoding/json"
	"io"

	"github.com/g5becks/eqrender/internal/equation"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/oops"
)

const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatCSV   = "csv"

	activeYes = "yes"
	activeNo  = "no"
	ellipsis  = "..."

	statusUnknown = "unknown"
)

type EquationRow struct {
	Active bool   `json:"active"`
	Name   string `json:"name"`
	Body   string `json:"equation"`
	Status string `json:"status,omitempty"`
}

type TableOptions struct {
	Format string
	// BodyLength truncates equation bodies in table output; 0 disables it.
	BodyLength int
	Title      string
	// Statuses maps equation names to their last render status. When set,
	// a status column is added.
	Statuses map[string]string
}

// RenderEquations writes equations in the requested format. CSV output uses
// the same column layout the CSV source parser reads.
func RenderEquations(w io.Writer, equations []equation.Equation, opts TableOptions) error {
	rows := make([]EquationRow, 0, len(equations))
	for _, eq := range equations {
		row := EquationRow{Active: eq.Active(), Name: eq.Name(), Body: eq.Body()}
		if opts.Statuses != nil {
			row.Status = statusLabel(opts.Statuses, eq.Name())
		}
		rows = append(rows, row)
	}

	withStatus := opts.Statuses != nil

	switch opts.Format {
	case FormatJSON:
		return writeJSON(w, rows)
	case FormatCSV:
		return writeEquationsCSV(w, rows, withStatus)
	default:
		writeEquationsTable(w, rows, opts)
		return nil
	}
}

func writeEquationsCSV(w io.Writer, rows []EquationRow, withStatus bool) error {
	cw := csv.NewWriter(w)

	header := []string{"Active", "Equation", "Name"}
	if withStatus {
		header = append(header, "Status")
	}
	if err := cw.Write(header); err != nil {
		return oops.Code("CSV_ERROR").Wrapf(err, "writing CSV header")
	}

	for _, row := range rows {
		record := []string{activeLabel(row.Active), row.Body, row.Name}
		if withStatus {
			record = append(record, row.Status)
		}
		if err := cw.Write(record); err != nil {
			return oops.Code("CSV_ERROR").Wrapf(err, "writing CSV row")
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return oops.Code("CSV_ERROR").Wrapf(err, "flushing CSV output")
	}

	return nil
}

func writeEquationsTable(w io.Writer, rows []EquationRow, opts TableOptions) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)

	if opts.Title != "" {
		t.SetTitle(opts.Title)
	}

	withStatus := opts.Statuses != nil

	header := table.Row{"ACTIVE", "NAME", "EQUATION"}
	if withStatus {
		header = append(header, "STATUS")
	}
	t.AppendHeader(header)

	for _, row := range rows {
		tableRow := table.Row{
			activeLabel(row.Active),
			row.Name,
			truncateText(row.Body, opts.BodyLength),
		}
		if withStatus {
			tableRow = append(tableRow, row.Status)
		}
		t.AppendRow(tableRow)
	}
	t.AppendFooter(table.Row{"", "TOTAL", len(rows)})

	t.Render()
}

type SourceRow struct {
	Path   string `json:"path"`
	Format string `json:"format"`
	Title  string `json:"title,omitempty"`
}

// RenderSources writes discovered source files in the requested format.
func RenderSources(w io.Writer, rows []SourceRow, format string) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, rows)
	case FormatCSV:
		cw := csv.NewWriter(w)
		if err := cw.Write([]string{"path", "format", "title"}); err != nil {
			return oops.Code("CSV_ERROR").Wrapf(err, "writing CSV header")
		}
		for _, row := range rows {
			if err := cw.Write([]string{row.Path, row.Format, row.Title}); err != nil {
				return oops.Code("CSV_ERROR").Wrapf(err, "writing CSV row")
			}
		}
		cw.Flush()
		if err := cw.Error(); err != nil {
			return oops.Code("CSV_ERROR").Wrapf(err, "flushing CSV output")
		}
		return nil
	default:
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleRounded)
		t.AppendHeader(table.Row{"PATH", "FORMAT", "TITLE"})
		for _, row := range rows {
			t.AppendRow(table.Row{row.Path, row.Format, row.Title})
		}
		t.Render()
		return nil
	}
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(v); err != nil {
		return oops.Code("JSON_ERROR").Wrapf(err, "encoding output")
	}

	return nil
}

// statusLabel reports "unknown" for equations the last run did not see.
func statusLabel(statuses map[string]string, name string) string {
	if status, ok := statuses[name]; ok {
		return status
	}
	return statusUnknown
}

func activeLabel(active bool) string {
	if active {
		return activeYes
	}
	return activeNo
}

func truncateText(text string, maxLen int) string {
	runes := []rune(text)
	if maxLen <= 0 || len(runes) <= maxLen {
		return text
	}
	if maxLen <= len(ellipsis) {
		return ellipsis
	}
	return string(runes[:maxLen-len(ellipsis)]) + ellipsis
}
