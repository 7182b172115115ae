package ledger

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/AnyUserName/fotosync/internal/sheet"
)

// SheetRepository stores the ledger as an .xlsx or .csv file.
type SheetRepository struct {
	path      string
	sheetName string
	// extraCols remembers non-canonical columns seen on Load, in file order.
	extraCols []string
}

func NewSheetRepository(path, sheetName string) *SheetRepository {
	return &SheetRepository{path: path, sheetName: sheetName}
}

func (r *SheetRepository) Load(_ context.Context) ([]Row, error) {
	if _, err := os.Stat(r.path); os.IsNotExist(err) {
		return nil, nil
	}

	t, err := sheet.Read(r.path, r.sheetName)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	if err := t.Require(ColProject, ColWeek, ColFileName); err != nil {
		return nil, fmt.Errorf("ledger %s: %w", r.path, err)
	}

	canonical := map[string]bool{}
	for _, c := range Columns {
		canonical[c] = true
	}
	r.extraCols = r.extraCols[:0]
	for _, c := range t.Columns {
		if !canonical[c] {
			r.extraCols = append(r.extraCols, c)
		}
	}

	rows := make([]Row, 0, len(t.Rows))
	for i, tr := range t.Rows {
		size, err := parseSize(tr[ColSizeKB])
		if err != nil {
			return nil, fmt.Errorf("ledger %s row %d: bad %s %q", r.path, i+2, ColSizeKB, tr[ColSizeKB])
		}
		row := Row{
			ProjectCode: tr[ColProject],
			WeekLabel:   tr[ColWeek],
			RemoteURL:   tr[ColURL],
			Description: tr[ColDescription],
			FileName:    tr[ColFileName],
			SizeKB:      size,
		}
		for _, c := range r.extraCols {
			if v := tr[c]; v != "" {
				if row.Extra == nil {
					row.Extra = map[string]string{}
				}
				row.Extra[c] = v
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (r *SheetRepository) Save(_ context.Context, rows []Row) error {
	cols := append([]string(nil), Columns...)
	seen := map[string]bool{}
	for _, c := range cols {
		seen[c] = true
	}
	for _, c := range r.extraCols {
		if !seen[c] {
			seen[c] = true
			cols = append(cols, c)
		}
	}
	var added []string
	for _, row := range rows {
		for c := range row.Extra {
			if !seen[c] {
				seen[c] = true
				added = append(added, c)
			}
		}
	}
	sort.Strings(added)
	cols = append(cols, added...)

	t := &sheet.Table{
		Columns: cols,
		Rows:    make([]sheet.Row, 0, len(rows)),
		Numeric: map[string]bool{ColSizeKB: true},
	}
	for _, row := range rows {
		tr := sheet.Row{
			ColProject:     row.ProjectCode,
			ColWeek:        row.WeekLabel,
			ColURL:         row.RemoteURL,
			ColDescription: row.Description,
			ColFileName:    row.FileName,
			ColSizeKB:      formatSize(row.SizeKB),
		}
		for k, v := range row.Extra {
			tr[k] = v
		}
		t.Rows = append(t.Rows, tr)
	}

	if err := sheet.Write(r.path, t); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	return nil
}

func (r *SheetRepository) Close() error { return nil }
