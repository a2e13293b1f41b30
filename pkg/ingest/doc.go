// Package ingest turns entity files into raw rows and writes rows back out.
//
// Supported formats are chosen by file extension:
//
//   - .json: an array of objects
//   - .yaml, .yml: a sequence of mappings
//   - .csv: a header row followed by data rows
//   - .xlsx: the first sheet (or a named one), header row first
//
// Tabular cells that parse as numbers become numeric values; every other
// cell stays a string and is left to the normalizer. Empty cells are kept as
// empty strings so that a column present in the header is present in every
// row.
package ingest
