package mapping

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteBackend stores the mapping in a local SQLite database and keeps a
// resolution audit log alongside it.
type SQLiteBackend struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL
// mode.
func NewSQLite(dsn string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "mapping: sqlite open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "mapping: sqlite exec %s", pragma)
		}
	}
	b := &SQLiteBackend{db: db}
	if err := b.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return b, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS business_mapping (
	address    TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	category   TEXT,
	source     TEXT NOT NULL DEFAULT 'manual',
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS resolution_log (
	id          TEXT PRIMARY KEY,
	address     TEXT NOT NULL,
	name        TEXT,
	source      TEXT,
	outcome     TEXT NOT NULL,
	resolved_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_resolution_log_address ON resolution_log(address);
`

func (b *SQLiteBackend) migrate() error {
	_, err := b.db.Exec(sqliteMigration)
	return eris.Wrap(err, "mapping: sqlite migrate")
}

// Load bulk-loads all mapping rows. Unreadable rows are skipped so a
// damaged database degrades to a smaller store instead of failing the run.
func (b *SQLiteBackend) Load(ctx context.Context) (map[string]Entry, map[string]json.RawMessage, error) {
	entries := make(map[string]Entry)

	rows, err := b.db.QueryContext(ctx, `SELECT address, name, category, source FROM business_mapping`)
	if err != nil {
		zap.L().Warn("mapping: sqlite load failed, starting empty", zap.Error(err))
		return entries, nil, nil
	}
	defer rows.Close()

	for rows.Next() {
		var addr, name, source string
		var category sql.NullString
		if err := rows.Scan(&addr, &name, &category, &source); err != nil {
			zap.L().Warn("mapping: skipping unreadable row", zap.Error(err))
			continue
		}
		entries[addr] = Entry{Name: name, Category: category.String, Source: source}
	}
	return entries, nil, nil
}

// Save upserts every entry in one transaction.
func (b *SQLiteBackend) Save(ctx context.Context, entries map[string]Entry, _ map[string]json.RawMessage) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "mapping: sqlite begin")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO business_mapping (address, name, category, source, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (address) DO UPDATE SET
			name = excluded.name,
			category = excluded.category,
			source = excluded.source,
			updated_at = excluded.updated_at`)
	if err != nil {
		return eris.Wrap(err, "mapping: sqlite prepare upsert")
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for addr, e := range entries {
		var category any
		if e.Category != "" {
			category = e.Category
		}
		if _, err := stmt.ExecContext(ctx, addr, e.Name, category, e.Source, now); err != nil {
			return eris.Wrapf(err, "mapping: sqlite upsert %s", addr)
		}
	}
	return eris.Wrap(tx.Commit(), "mapping: sqlite commit")
}

// LogResolution appends one row to the resolution audit log.
func (b *SQLiteBackend) LogResolution(ctx context.Context, addr, name, source, outcome string) error {
	_, err := b.db.ExecContext(ctx, `
		INSERT INTO resolution_log (id, address, name, source, outcome, resolved_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), addr, name, source, outcome, time.Now().UTC(),
	)
	return eris.Wrap(err, "mapping: sqlite log resolution")
}

// Close closes the database.
func (b *SQLiteBackend) Close() error { return b.db.Close() }
