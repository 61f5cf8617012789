package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// DB is a SQLite-backed Store.
type DB struct {
	conn *sqlx.DB
}

// OpenSQLite opens or creates a SQLite database at the given path.
func OpenSQLite(path string) (*DB, error) {
	if path == "" {
		return nil, errors.New("sqlite path required")
	}
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS saves (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		year INTEGER NOT NULL,
		month INTEGER NOT NULL,
		size INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		state TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_saves_created ON saves(created_at);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// saveRow mirrors the saves table. State is empty when not selected.
type saveRow struct {
	SaveInfo
	CreatedAtNanos int64  `db:"created_at"`
	State          string `db:"state"`
}

func (r saveRow) info() SaveInfo {
	info := r.SaveInfo
	info.CreatedAt = time.Unix(0, r.CreatedAtNanos).UTC()
	return info
}

// Save writes a new slot and marks it latest in one transaction.
func (db *DB) Save(ctx context.Context, r Record) (SaveInfo, error) {
	info := SaveInfo{
		ID:        uuid.NewString(),
		Name:      r.Name,
		Year:      r.Year,
		Month:     r.Month,
		Size:      int64(len(r.Data)),
		CreatedAt: time.Now().UTC(),
	}

	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return SaveInfo{}, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO saves
		(id, name, year, month, size, created_at, state)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		info.ID, info.Name, info.Year, info.Month, info.Size, info.CreatedAt.UnixNano(), string(r.Data),
	)
	if err != nil {
		return SaveInfo{}, fmt.Errorf("insert save: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		"latest_save", info.ID,
	); err != nil {
		return SaveInfo{}, fmt.Errorf("save meta: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return SaveInfo{}, err
	}

	slog.Info("simulation saved", "id", info.ID, "name", info.Name, "date", fmt.Sprintf("%d-%02d", info.Year, info.Month), "bytes", info.Size)
	return info, nil
}

// Load returns a slot's payload.
func (db *DB) Load(ctx context.Context, id string) ([]byte, SaveInfo, error) {
	var row saveRow
	err := db.conn.GetContext(ctx, &row,
		"SELECT id, name, year, month, size, created_at, state FROM saves WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, SaveInfo{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, SaveInfo{}, fmt.Errorf("load save %s: %w", id, err)
	}
	return []byte(row.State), row.info(), nil
}

// List returns every slot, newest first.
func (db *DB) List(ctx context.Context) ([]SaveInfo, error) {
	var rows []saveRow
	err := db.conn.SelectContext(ctx, &rows,
		"SELECT id, name, year, month, size, created_at FROM saves ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("list saves: %w", err)
	}
	out := make([]SaveInfo, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.info())
	}
	return out, nil
}

// Latest returns the slot recorded as latest.
func (db *DB) Latest(ctx context.Context) (SaveInfo, error) {
	id, err := db.GetMeta(ctx, "latest_save")
	if errors.Is(err, sql.ErrNoRows) {
		return SaveInfo{}, ErrNotFound
	}
	if err != nil {
		return SaveInfo{}, err
	}
	_, info, err := db.Load(ctx, id)
	return info, err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(ctx context.Context, key string) (string, error) {
	var value string
	err := db.conn.GetContext(ctx, &value, "SELECT value FROM world_meta WHERE key = ?", key)
	return value, err
}
