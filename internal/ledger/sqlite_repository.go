package ledger

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteRepository stores the ledger in an embedded SQLite database.
type SQLiteRepository struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and applies
// pending migrations.
func OpenSQLite(path string) (*SQLiteRepository, error) {
	dsn := fmt.Sprintf("file:%s?mode=rwc&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping ledger database: %w", err)
	}
	if err := runMigrations(db); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("failed to run migrations: %w (also failed to close db: %v)", err, cerr)
		}
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Load(ctx context.Context) ([]Row, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT kode_proyek, minggu, link_foto, deskripsi_foto, nama_file, size_gambar_kb, extra
		FROM photo_metadata
		ORDER BY ordinal`)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var row Row
		var extra string
		if err := rows.Scan(&row.ProjectCode, &row.WeekLabel, &row.RemoteURL,
			&row.Description, &row.FileName, &row.SizeKB, &extra); err != nil {
			return nil, fmt.Errorf("failed to scan ledger row: %w", err)
		}
		if extra != "" && extra != "{}" {
			if err := json.Unmarshal([]byte(extra), &row.Extra); err != nil {
				return nil, fmt.Errorf("failed to decode extra columns: %w", err)
			}
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Save replaces every row inside one transaction.
func (r *SQLiteRepository) Save(ctx context.Context, rows []Row) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM photo_metadata"); err != nil {
		return fmt.Errorf("failed to clear ledger: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO photo_metadata
			(ordinal, kode_proyek, minggu, link_foto, deskripsi_foto, nama_file, size_gambar_kb, extra)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, row := range rows {
		extra := "{}"
		if len(row.Extra) > 0 {
			b, err := json.Marshal(row.Extra)
			if err != nil {
				return fmt.Errorf("failed to encode extra columns: %w", err)
			}
			extra = string(b)
		}
		if _, err := stmt.ExecContext(ctx, i+1, row.ProjectCode, row.WeekLabel, row.RemoteURL,
			row.Description, row.FileName, row.SizeKB, extra); err != nil {
			return fmt.Errorf("failed to insert ledger row %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ledger: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func runMigrations(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	// Only up migrations are applied; version is the numeric filename prefix.
	ups := map[int]string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".up.sql") {
			continue
		}
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		ups[version] = name
	}

	versions := make([]int, 0, len(ups))
	for v := range ups {
		versions = append(versions, v)
	}
	sort.Ints(versions)

	for _, version := range versions {
		var applied int
		if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations WHERE version = ?", version).Scan(&applied); err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}
		if applied > 0 {
			continue
		}

		data, err := fs.ReadFile(migrationsFS, "migrations/"+ups[version])
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", ups[version], err)
		}
		if _, err := db.Exec(string(data)); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", ups[version], err)
		}
		if _, err := db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("failed to record migration: %w", err)
		}
	}
	return nil
}
