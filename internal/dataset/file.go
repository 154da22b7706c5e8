package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

const utf8BOM = "\ufeff"

var integerCell = regexp.MustCompile(`^(0|-?[1-9][0-9]{0,14})$`)

type format int

const (
	formatXLSX format = iota
	formatCSV
)

func formatFor(path string) (format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return formatXLSX, nil
	case ".csv":
		return formatCSV, nil
	default:
		return 0, fmt.Errorf("unsupported table file %q: want .xlsx or .csv", path)
	}
}

// Load reads the first sheet of an xlsx file, or a csv file, and checks that
// every required column is present before returning. The first line is the
// header.
func Load(path string, required ...string) (*Dataset, error) {
	f, err := formatFor(path)
	if err != nil {
		return nil, err
	}

	var records [][]string
	switch f {
	case formatXLSX:
		records, err = readXLSX(path)
	case formatCSV:
		records, err = readCSV(path)
	}
	if err != nil {
		return nil, err
	}

	var header []string
	if len(records) > 0 {
		header = records[0]
		records = records[1:]
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	d := New(header, records)
	d.path = path
	if err := d.Require(required...); err != nil {
		return nil, err
	}
	return d, nil
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q of %s: %w", sheets[0], path, err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer fh.Close()

	r := csv.NewReader(fh)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], utf8BOM)
	}
	return records, nil
}

// Save writes the dataset to path, choosing the format from the extension.
// The file is written to a temporary sibling first and renamed into place,
// so a failed save never leaves a truncated table behind.
func (d *Dataset) Save(path string) error {
	f, err := formatFor(path)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".notecrawler-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	switch f {
	case formatXLSX:
		err = d.writeXLSX(tmp)
	case formatCSV:
		err = d.writeCSV(tmp)
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

func (d *Dataset) records() [][]string {
	out := make([][]string, 0, len(d.rows)+1)
	out = append(out, d.header)
	return append(out, d.rows...)
}

func (d *Dataset) writeXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, rec := range d.records() {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(rec))
		for j, v := range rec {
			values[j] = cellValue(v, i == 0)
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}
	return f.Write(w)
}

// cellValue writes plain integers as numeric cells so counts stay sortable in
// a spreadsheet. Everything else, and the header row, stays text.
func cellValue(s string, header bool) interface{} {
	if header || !integerCell.MatchString(s) {
		return s
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return s
	}
	return n
}

func (d *Dataset) writeCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(d.records()); err != nil {
		return err
	}
	return cw.Error()
}
