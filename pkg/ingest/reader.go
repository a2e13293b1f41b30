package ingest

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/Mahi3005/data-alchemist/pkg/dataset"
)

// Options controls how tabular files are read.
type Options struct {
	// Delimiter separates CSV fields. Default: ','.
	Delimiter rune

	// Sheet names the XLSX sheet to read. Empty means the first sheet.
	Sheet string
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{Delimiter: ','}
}

// LoadFile reads the rows of one entity file, choosing the reader by extension.
func LoadFile(path string, opts Options) ([]dataset.RawRecord, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return Load(f, path, format, opts)
}

// Load reads rows in the given format. name is used in error messages.
func Load(r io.Reader, name string, format Format, opts Options) ([]dataset.RawRecord, error) {
	switch format {
	case FormatJSON:
		return readJSON(r, name)
	case FormatYAML:
		return readYAML(r, name)
	case FormatCSV:
		return readCSV(r, name, opts)
	case FormatXLSX:
		return readXLSX(r, name, opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func readJSON(r io.Reader, name string) ([]dataset.RawRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	rows, err := dataset.RowsFromJSON(data)
	if err != nil {
		perr := &ParseError{File: name, Err: err}
		var syntax *json.SyntaxError
		if errors.As(err, &syntax) {
			perr.Line = lineAt(data, syntax.Offset)
		}
		return nil, perr
	}
	return rows, nil
}

func readYAML(r io.Reader, name string) ([]dataset.RawRecord, error) {
	var doc []map[string]any
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return []dataset.RawRecord{}, nil
		}
		return nil, &ParseError{File: name, Err: err}
	}

	rows := make([]dataset.RawRecord, len(doc))
	for i, m := range doc {
		row := make(dataset.RawRecord, len(m))
		for k, v := range m {
			row[k] = dataset.FromAny(v)
		}
		rows[i] = row
	}
	return rows, nil
}

func readCSV(r io.Reader, name string, opts Options) ([]dataset.RawRecord, error) {
	br := stripUTF8BOM(bufio.NewReader(r))

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	if opts.Delimiter != 0 {
		cr.Comma = opts.Delimiter
	}

	records, err := cr.ReadAll()
	if err != nil {
		perr := &ParseError{File: name, Err: err}
		var csvErr *csv.ParseError
		if errors.As(err, &csvErr) {
			perr.Line = csvErr.Line
		}
		return nil, perr
	}
	return rowsFromTable(records), nil
}

func readXLSX(r io.Reader, name string, opts Options) ([]dataset.RawRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &ParseError{File: name, Err: err}
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return []dataset.RawRecord{}, nil
		}
		sheet = sheets[0]
	}

	table, err := f.GetRows(sheet)
	if err != nil {
		return nil, &ParseError{File: name, Err: fmt.Errorf("sheet %q: %w", sheet, err)}
	}
	return rowsFromTable(table), nil
}

// rowsFromTable maps a header row plus data rows to records. Blank rows are
// skipped; short rows are padded with empty cells.
func rowsFromTable(table [][]string) []dataset.RawRecord {
	rows := []dataset.RawRecord{}
	if len(table) == 0 {
		return rows
	}

	header := make([]string, len(table[0]))
	for i, h := range table[0] {
		header[i] = strings.TrimSpace(h)
	}

	for _, cells := range table[1:] {
		if isBlank(cells) {
			continue
		}
		row := make(dataset.RawRecord, len(header))
		for i, col := range header {
			if col == "" {
				continue
			}
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			row[col] = cellValue(cell)
		}
		rows = append(rows, row)
	}
	return rows
}

// cellValue types a tabular cell. Only cells whose numeric rendering is
// identical to the text become numbers, so "007" and "1.50" stay strings.
func cellValue(s string) dataset.Value {
	t := strings.TrimSpace(s)
	if t == "" {
		return dataset.String("")
	}
	f, err := strconv.ParseFloat(t, 64)
	if err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) && strconv.FormatFloat(f, 'f', -1, 64) == t {
		return dataset.Number(f)
	}
	return dataset.String(s)
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func stripUTF8BOM(r *bufio.Reader) *bufio.Reader {
	b, err := r.Peek(3)
	if err == nil && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		_, _ = r.Discard(3)
	}
	return r
}

func lineAt(data []byte, offset int64) int {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	return bytes.Count(data[:offset], []byte("\n")) + 1
}
