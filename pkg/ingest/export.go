package ingest

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/Mahi3005/data-alchemist/pkg/dataset"
)

// Exporter writes the rows of one entity set.
type Exporter interface {
	Export(ctx context.Context, entity dataset.EntityType, rows []dataset.RawRecord, w io.Writer) error
}

// NewExporter returns the exporter for a format.
func NewExporter(format Format) (Exporter, error) {
	switch format {
	case FormatJSON:
		return &JSONExporter{Pretty: true}, nil
	case FormatYAML:
		return &YAMLExporter{}, nil
	case FormatCSV:
		return &CSVExporter{Delimiter: ','}, nil
	case FormatXLSX:
		return &XLSXExporter{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// WriteFile writes rows to path, choosing the exporter by extension.
func WriteFile(ctx context.Context, path string, entity dataset.EntityType, rows []dataset.RawRecord) error {
	format, err := DetectFormat(path)
	if err != nil {
		return err
	}
	exp, err := NewExporter(format)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := exp.Export(ctx, entity, rows, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// JSONExporter writes rows as a JSON array of objects.
type JSONExporter struct {
	Pretty bool
}

// Export implements Exporter.
func (e *JSONExporter) Export(_ context.Context, _ dataset.EntityType, rows []dataset.RawRecord, w io.Writer) error {
	if rows == nil {
		rows = []dataset.RawRecord{}
	}
	enc := json.NewEncoder(w)
	if e.Pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(rows); err != nil {
		return &ExportError{Format: FormatJSON, RowCount: len(rows), Cause: err}
	}
	return nil
}

// YAMLExporter writes rows as a YAML sequence of mappings.
type YAMLExporter struct{}

// Export implements Exporter.
func (e *YAMLExporter) Export(_ context.Context, _ dataset.EntityType, rows []dataset.RawRecord, w io.Writer) error {
	doc := make([]map[string]any, len(rows))
	for i, row := range rows {
		m := make(map[string]any, len(row))
		for k, v := range row {
			m[k] = v.Any()
		}
		doc[i] = m
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return &ExportError{Format: FormatYAML, RowCount: len(rows), Cause: err}
	}
	if err := enc.Close(); err != nil {
		return &ExportError{Format: FormatYAML, RowCount: len(rows), Cause: err}
	}
	return nil
}

// CSVExporter writes rows as CSV. List and object cells are written as
// compact JSON so they read back unchanged.
type CSVExporter struct {
	Delimiter rune
}

// Export implements Exporter.
func (e *CSVExporter) Export(ctx context.Context, entity dataset.EntityType, rows []dataset.RawRecord, w io.Writer) error {
	writer := csv.NewWriter(w)
	if e.Delimiter != 0 {
		writer.Comma = e.Delimiter
	}

	header := Columns(entity, rows)
	if err := writer.Write(header); err != nil {
		return &ExportError{Format: FormatCSV, RowCount: len(rows), Cause: err}
	}

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := writer.Write(rowCells(header, row)); err != nil {
			return &ExportError{Format: FormatCSV, RowCount: i, Cause: err}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return &ExportError{Format: FormatCSV, RowCount: len(rows), Cause: err}
	}
	return nil
}

// XLSXExporter writes rows to a single-sheet workbook named after the entity.
type XLSXExporter struct{}

// Export implements Exporter.
func (e *XLSXExporter) Export(ctx context.Context, entity dataset.EntityType, rows []dataset.RawRecord, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Sheet1"
	if entity != "" {
		if err := f.SetSheetName(sheet, string(entity)); err != nil {
			return &ExportError{Format: FormatXLSX, Cause: err}
		}
		sheet = string(entity)
	}

	header := Columns(entity, rows)
	headerCells := make([]any, len(header))
	for i, h := range header {
		headerCells[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerCells); err != nil {
		return &ExportError{Format: FormatXLSX, Cause: err}
	}

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return err
		}
		cells := make([]any, len(header))
		for j, col := range header {
			v, ok := row[col]
			switch {
			case !ok:
				cells[j] = ""
			case v.Kind == dataset.KindNumber:
				cells[j] = v.Num
			default:
				cells[j] = v.Text()
			}
		}
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return &ExportError{Format: FormatXLSX, RowCount: i, Cause: err}
		}
		if err := f.SetSheetRow(sheet, axis, &cells); err != nil {
			return &ExportError{Format: FormatXLSX, RowCount: i, Cause: err}
		}
	}

	if err := f.Write(w); err != nil {
		return &ExportError{Format: FormatXLSX, RowCount: len(rows), Cause: err}
	}
	return nil
}

// Columns returns the header for an entity's rows: schema fields first, in
// schema order, then any other keys in sorted order. Schema fields that no
// row carries are left out unless there are no rows at all.
func Columns(entity dataset.EntityType, rows []dataset.RawRecord) []string {
	var cols []string
	seen := make(map[string]bool)
	if schema, err := dataset.SchemaFor(entity); err == nil {
		for _, f := range schema.Fields {
			if len(rows) > 0 && !anyHas(rows, f.Name) {
				continue
			}
			cols = append(cols, f.Name)
			seen[f.Name] = true
		}
	}

	var extra []string
	for _, row := range rows {
		for k := range row {
			if !seen[k] {
				seen[k] = true
				extra = append(extra, k)
			}
		}
	}
	sort.Strings(extra)
	return append(cols, extra...)
}

func rowCells(header []string, row dataset.RawRecord) []string {
	cells := make([]string, len(header))
	for i, col := range header {
		if v, ok := row[col]; ok {
			cells[i] = v.Text()
		}
	}
	return cells
}

func anyHas(rows []dataset.RawRecord, field string) bool {
	for _, row := range rows {
		if _, ok := row[field]; ok {
			return true
		}
	}
	return false
}
