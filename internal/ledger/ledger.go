// Package ledger persists the metadata of every published photo.
//
// The ledger is read once at startup, extended in memory and rewritten
// wholesale at the end of a run. It is logically append-only: rows are
// never modified after they are written.
package ledger

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"
)

// Ledger column headers.
const (
	ColProject     = "kode_proyek"
	ColWeek        = "minggu"
	ColURL         = "link_foto"
	ColDescription = "deskripsi_foto"
	ColFileName    = "nama_file"
	ColSizeKB      = "size_gambar_kb"
)

// Columns is the canonical column order.
var Columns = []string{ColProject, ColWeek, ColURL, ColDescription, ColFileName, ColSizeKB}

// Row is one published photo.
type Row struct {
	ProjectCode string
	WeekLabel   string
	RemoteURL   string
	Description string
	FileName    string
	SizeKB      float64
	// Extra holds columns the ledger file carries beyond the canonical set.
	Extra map[string]string
}

// Repository loads and saves the whole ledger.
type Repository interface {
	// Load returns every row in stored order. A ledger that does not exist
	// yet loads as empty.
	Load(ctx context.Context) ([]Row, error)
	// Save replaces the stored ledger with rows.
	Save(ctx context.Context, rows []Row) error
	Close() error
}

// Merge returns existing followed by added, each in its own order.
func Merge(existing, added []Row) []Row {
	out := make([]Row, 0, len(existing)+len(added))
	out = append(out, existing...)
	return append(out, added...)
}

// Open picks a repository by file extension: .db, .sqlite and .sqlite3 use
// SQLite, everything else is treated as a spreadsheet.
func Open(path, sheetName string) (Repository, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return OpenSQLite(path)
	default:
		return NewSheetRepository(path, sheetName), nil
	}
}

func formatSize(kb float64) string {
	return strconv.FormatFloat(kb, 'f', -1, 64)
}

func parseSize(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
}
