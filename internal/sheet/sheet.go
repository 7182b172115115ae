// Package sheet reads and writes the tabular files the tool exchanges with
// its operators: the forms export and the metadata ledger.
package sheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// DefaultSheet is the worksheet name used when writing workbooks.
const DefaultSheet = "Sheet1"

// Row maps column header to cell value.
type Row map[string]string

// Table is a header row plus data rows, in file order.
type Table struct {
	Columns []string
	Rows    []Row
	// Numeric marks columns written as numbers in workbooks.
	Numeric map[string]bool
}

// Require returns an error naming every column absent from the header.
func (t *Table) Require(columns ...string) error {
	have := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		have[c] = true
	}
	var missing []string
	for _, c := range columns {
		if !have[c] {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

// ErrUnsupportedFormat is returned for extensions other than .xlsx and .csv.
var ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")

// Read loads path. For workbooks, sheetName selects the worksheet; empty
// means the first one.
func Read(path, sheetName string) (*Table, error) {
	var records [][]string
	var err error
	switch ext(path) {
	case ".xlsx", ".xlsm":
		records, err = readWorkbook(path, sheetName)
	case ".csv":
		records, err = readCSV(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return nil, err
	}
	return fromRecords(records), nil
}

// Write replaces path with t.
func Write(path string, t *Table) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	switch ext(path) {
	case ".xlsx", ".xlsm":
		return writeWorkbook(path, t)
	case ".csv":
		return writeCSV(path, t)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

func ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

func fromRecords(records [][]string) *Table {
	t := &Table{}
	if len(records) == 0 {
		return t
	}

	header := records[0]
	idx := make([]int, 0, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		t.Columns = append(t.Columns, h)
		idx = append(idx, i)
	}

	for _, rec := range records[1:] {
		row := make(Row, len(t.Columns))
		blank := true
		for j, i := range idx {
			var v string
			if i < len(rec) {
				v = rec[i]
			}
			if strings.TrimSpace(v) != "" {
				blank = false
			}
			row[t.Columns[j]] = v
		}
		if blank {
			continue
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func (t *Table) records() [][]string {
	out := make([][]string, 0, len(t.Rows)+1)
	out = append(out, append([]string(nil), t.Columns...))
	for _, r := range t.Rows {
		rec := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			rec[i] = r[c]
		}
		out = append(out, rec)
	}
	return out
}

func readWorkbook(path, sheetName string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	if sheetName == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook %s has no sheets", path)
		}
		sheetName = sheets[0]
	}
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q of %s: %w", sheetName, path, err)
	}
	return rows, nil
}

func writeWorkbook(path string, t *Table) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, rec := range t.records() {
		cells := make([]interface{}, len(rec))
		for j, v := range rec {
			cells[j] = v
			if i > 0 && t.Numeric[t.Columns[j]] {
				if n, err := strconv.ParseFloat(v, 64); err == nil {
					cells[j] = n
				}
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(DefaultSheet, cell, &cells); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	// Excel-saved CSVs start with a UTF-8 BOM.
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")
	}
	return records, nil
}

func writeCSV(path string, t *Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(t.records()); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
