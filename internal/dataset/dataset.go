// Package dataset holds the ordered, column-named table that flows through
// the scrape and analysis stages, plus its xlsx/csv persistence.
package dataset

import (
	"fmt"
	"strings"
)

// SchemaError reports a required column that is absent from a dataset.
type SchemaError struct {
	Column string
	Path   string
}

func (e *SchemaError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("column %q not found", e.Column)
	}
	return fmt.Sprintf("column %q not found in %s", e.Column, e.Path)
}

// Dataset is an in-memory table. Rows keep their load order and every row
// has exactly len(Header()) cells. Columns can be appended, never removed.
type Dataset struct {
	path   string
	header []string
	index  map[string]int
	rows   [][]string
}

// New builds a dataset from a header and rows. Short rows are padded with
// empty cells. Cells beyond the last named column are kept: the header is
// widened to the widest row with "Unnamed: <index>" columns.
func New(header []string, rows [][]string) *Dataset {
	width := len(header)
	for _, r := range rows {
		width = max(width, len(r))
	}
	d := &Dataset{
		header: make([]string, width),
		index:  make(map[string]int, width),
		rows:   make([][]string, len(rows)),
	}
	copy(d.header, header)
	for i := len(header); i < width; i++ {
		d.header[i] = fmt.Sprintf("Unnamed: %d", i)
	}
	for i, name := range d.header {
		if _, dup := d.index[name]; !dup {
			d.index[name] = i
		}
	}
	for i, r := range rows {
		row := make([]string, len(d.header))
		copy(row, r)
		d.rows[i] = row
	}
	return d
}

// Path returns the file the dataset was loaded from, if any.
func (d *Dataset) Path() string { return d.path }

// Header returns a copy of the column names in order.
func (d *Dataset) Header() []string {
	return append([]string(nil), d.header...)
}

// Len returns the number of data rows.
func (d *Dataset) Len() int { return len(d.rows) }

// Width returns the number of columns.
func (d *Dataset) Width() int { return len(d.header) }

// Has reports whether a column with the given name exists.
func (d *Dataset) Has(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Require returns a *SchemaError naming the first column not present.
func (d *Dataset) Require(columns ...string) error {
	for _, c := range columns {
		if !d.Has(c) {
			return &SchemaError{Column: c, Path: d.path}
		}
	}
	return nil
}

// Column returns a copy of the named column's cells.
func (d *Dataset) Column(name string) ([]string, bool) {
	i, ok := d.index[name]
	if !ok {
		return nil, false
	}
	return d.ColumnAt(i), true
}

// ColumnAt returns a copy of the cells in column position i.
func (d *Dataset) ColumnAt(i int) []string {
	out := make([]string, len(d.rows))
	for r, row := range d.rows {
		out[r] = row[i]
	}
	return out
}

// Value returns the cell at row r in the named column, or "" when the
// column does not exist.
func (d *Dataset) Value(r int, name string) string {
	i, ok := d.index[name]
	if !ok {
		return ""
	}
	return d.rows[r][i]
}

// Row returns a copy of row r.
func (d *Dataset) Row(r int) []string {
	return append([]string(nil), d.rows[r]...)
}

// AppendColumn adds a column holding values, one per row. An existing
// column with the same name is overwritten in place so re-processing a
// previous output keeps the schema stable. It panics if len(values) does
// not match Len().
func (d *Dataset) AppendColumn(name string, values []string) {
	if len(values) != len(d.rows) {
		panic(fmt.Sprintf("dataset: column %q has %d values for %d rows", name, len(values), len(d.rows)))
	}
	if i, ok := d.index[name]; ok {
		for r := range d.rows {
			d.rows[r][i] = values[r]
		}
		return
	}
	d.index[name] = len(d.header)
	d.header = append(d.header, name)
	for r := range d.rows {
		d.rows[r] = append(d.rows[r], values[r])
	}
}

// IsBlank reports whether a cell counts as missing.
func IsBlank(cell string) bool {
	return strings.TrimSpace(cell) == ""
}
