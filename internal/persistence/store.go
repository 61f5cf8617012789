// Package persistence stores saved simulations in named slots, either in a
// local SQLite file or in an S3 bucket.
package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound reports a missing save slot.
var ErrNotFound = errors.New("save not found")

// Drivers accepted by Open.
const (
	DriverSQLite = "sqlite"
	DriverS3     = "s3"
)

// SaveInfo describes one stored save without its payload.
type SaveInfo struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Year      int       `db:"year" json:"year"`
	Month     int       `db:"month" json:"month"`
	Size      int64     `db:"size" json:"size"`
	CreatedAt time.Time `db:"-" json:"created_at"`
}

// Record is what callers hand to Save.
type Record struct {
	Name  string
	Year  int
	Month int
	Data  []byte
}

// Store keeps save payloads. Payloads are opaque bytes produced by the
// engine's Marshal.
type Store interface {
	Save(ctx context.Context, r Record) (SaveInfo, error)
	Load(ctx context.Context, id string) ([]byte, SaveInfo, error)
	List(ctx context.Context) ([]SaveInfo, error)
	// Latest returns the most recently written save, or ErrNotFound.
	Latest(ctx context.Context) (SaveInfo, error)
	Close() error
}

// Options selects and configures a driver.
type Options struct {
	Driver     string
	SQLitePath string
	S3         S3Config
}

// Open builds the Store named by opts.Driver.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case "", DriverSQLite:
		return OpenSQLite(opts.SQLitePath)
	case DriverS3:
		return NewS3(ctx, opts.S3)
	}
	return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
}
