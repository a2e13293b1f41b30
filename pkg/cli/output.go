package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/Mahi3005/data-alchemist/pkg/dataset"
	"github.com/Mahi3005/data-alchemist/pkg/diagnostics"
	"github.com/Mahi3005/data-alchemist/pkg/engine"
	"github.com/Mahi3005/data-alchemist/pkg/history"
)

// OutputFormat represents the output format for command results.
type OutputFormat string

const (
	// FormatText is an aligned table (default).
	FormatText OutputFormat = "text"
	// FormatJSON is indented JSON.
	FormatJSON OutputFormat = "json"
	// FormatCSV is one CSV row per diagnostic or run.
	FormatCSV OutputFormat = "csv"
)

// ParseOutputFormat parses a --format value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatCSV:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", NewConfigError("format", fmt.Sprintf("invalid value %q: must be text, json or csv", s))
	}
}

// Formatter renders command results.
type Formatter interface {
	Report(w io.Writer, r *engine.Report) error
	Runs(w io.Writer, runs []*history.Run) error
	Run(w io.Writer, run *history.Run) error
}

// NewFormatter creates a formatter for the format.
func NewFormatter(format OutputFormat) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: true}
	case FormatCSV:
		return &CSVFormatter{}
	default:
		return &TextFormatter{}
	}
}

var (
	diagnosticHeaders = []string{"SEVERITY", "ENTITY", "ROW", "FIELD", "TYPE", "MESSAGE", "SUGGESTION"}
	runHeaders        = []string{"ID", "STARTED", "DURATION", "ERRORS", "WARNINGS", "PROCEED"}
)

// TextFormatter renders aligned tables for terminals.
type TextFormatter struct{}

func (f *TextFormatter) Report(w io.Writer, r *engine.Report) error {
	if len(r.Diagnostics) == 0 {
		if _, err := fmt.Fprintln(w, "No issues found."); err != nil {
			return err
		}
	} else if err := WriteTable(w, diagnosticHeaders, diagnosticRows(r.Diagnostics)); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%s\n", summaryLine(r))
	return err
}

func (f *TextFormatter) Runs(w io.Writer, runs []*history.Run) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs recorded.")
		return err
	}
	rows := make([][]string, len(runs))
	for i, run := range runs {
		rows[i] = runRow(run)
	}
	return WriteTable(w, runHeaders, rows)
}

func (f *TextFormatter) Run(w io.Writer, run *history.Run) error {
	fmt.Fprintf(w, "Run:       %s\n", run.ID)
	fmt.Fprintf(w, "Started:   %s\n", run.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "Duration:  %s\n", run.Duration)
	for _, entity := range sortedSources(run) {
		fmt.Fprintf(w, "Source:    %s=%s\n", entity, run.Sources[entity])
	}
	fmt.Fprintf(w, "Result:    %d errors, %d warnings, proceed=%t\n\n", run.Errors, run.Warnings, run.CanProceed)
	if len(run.Diagnostics) == 0 {
		_, err := fmt.Fprintln(w, "No issues found.")
		return err
	}
	return WriteTable(w, diagnosticHeaders, diagnosticRows(run.Diagnostics))
}

// JSONFormatter formats output as JSON.
type JSONFormatter struct {
	Indent bool
}

func (f *JSONFormatter) Report(w io.Writer, r *engine.Report) error {
	return f.encode(w, r)
}

func (f *JSONFormatter) Runs(w io.Writer, runs []*history.Run) error {
	if runs == nil {
		runs = []*history.Run{}
	}
	return f.encode(w, runs)
}

func (f *JSONFormatter) Run(w io.Writer, run *history.Run) error {
	return f.encode(w, run)
}

func (f *JSONFormatter) encode(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	if f.Indent {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(data)
}

// CSVFormatter writes one record per diagnostic or run.
type CSVFormatter struct{}

var diagnosticCSVHeaders = []string{"id", "type", "severity", "entityType", "rowIndex", "field", "message", "suggestion"}

func (f *CSVFormatter) Report(w io.Writer, r *engine.Report) error {
	return writeDiagnosticsCSV(w, r.Diagnostics)
}

func (f *CSVFormatter) Runs(w io.Writer, runs []*history.Run) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "startedAt", "durationMs", "errors", "warnings", "canProceed"}); err != nil {
		return err
	}
	for _, run := range runs {
		if err := cw.Write([]string{
			run.ID,
			run.StartedAt.Format(time.RFC3339),
			strconv.FormatInt(run.Duration.Milliseconds(), 10),
			strconv.Itoa(run.Errors),
			strconv.Itoa(run.Warnings),
			strconv.FormatBool(run.CanProceed),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (f *CSVFormatter) Run(w io.Writer, run *history.Run) error {
	return writeDiagnosticsCSV(w, run.Diagnostics)
}

func writeDiagnosticsCSV(w io.Writer, ds []diagnostics.Diagnostic) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(diagnosticCSVHeaders); err != nil {
		return err
	}
	for _, d := range ds {
		row := ""
		if d.RowIndex != nil {
			row = strconv.Itoa(*d.RowIndex)
		}
		if err := cw.Write([]string{
			d.ID, string(d.Kind), string(d.Severity), string(d.EntityType),
			row, d.Field, d.Message, d.Suggestion,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTable writes rows under headers with columns padded to their widest
// cell by display width. The last column is not padded.
func WriteTable(w io.Writer, headers []string, rows [][]string) error {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			if cw := runewidth.StringWidth(row[i]); cw > widths[i] {
				widths[i] = cw
			}
		}
	}

	line := func(cells []string) error {
		var sb strings.Builder
		for i := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			if i == len(widths)-1 {
				sb.WriteString(cell)
				break
			}
			sb.WriteString(runewidth.FillRight(cell, widths[i]))
			sb.WriteString("  ")
		}
		_, err := fmt.Fprintln(w, strings.TrimRight(sb.String(), " "))
		return err
	}

	if err := line(headers); err != nil {
		return err
	}
	for _, row := range rows {
		if err := line(row); err != nil {
			return err
		}
	}
	return nil
}

func diagnosticRows(ds []diagnostics.Diagnostic) [][]string {
	rows := make([][]string, len(ds))
	for i, d := range ds {
		row := "-"
		if d.RowIndex != nil {
			row = strconv.Itoa(*d.RowIndex + 1)
		}
		field := d.Field
		if field == "" {
			field = "-"
		}
		entity := string(d.EntityType)
		if entity == "" {
			entity = "-"
		}
		rows[i] = []string{string(d.Severity), entity, row, field, string(d.Kind), d.Message, d.Suggestion}
	}
	return rows
}

func runRow(run *history.Run) []string {
	return []string{
		run.ID,
		run.StartedAt.Local().Format("2006-01-02 15:04:05"),
		run.Duration.Round(time.Microsecond).String(),
		strconv.Itoa(run.Errors),
		strconv.Itoa(run.Warnings),
		yesNo(run.CanProceed),
	}
}

func summaryLine(r *engine.Report) string {
	verdict := "Ready to proceed."
	if !r.CanProceed {
		verdict = "Cannot proceed."
		var missing []string
		for _, entity := range dataset.EntityTypes {
			if !r.Present[entity] {
				missing = append(missing, string(entity))
			}
		}
		if len(missing) > 0 {
			verdict += " Missing: " + strings.Join(missing, ", ") + "."
		}
	}
	return fmt.Sprintf("%s, %s. %s",
		plural(r.Summary.Errors, "error"), plural(r.Summary.Warnings, "warning"), verdict)
}

func sortedSources(run *history.Run) []dataset.EntityType {
	var out []dataset.EntityType
	for _, entity := range dataset.EntityTypes {
		if _, ok := run.Sources[entity]; ok {
			out = append(out, entity)
		}
	}
	return out
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
