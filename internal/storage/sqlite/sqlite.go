// Package sqlite implements the storage layer over a single embedded
// SQLite database file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/grubapp/grub/internal/storage"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound aliases the shared sentinel so store code reads
// naturally.
var ErrNotFound = storage.ErrNotFound

// dbtx is the subset of database/sql shared by *sql.DB and *sql.Tx.
// Helpers take it so compound operations can run inside a transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store owns the database handle. The pool is capped at one connection,
// so statements serialize and a transaction blocks everything else
// until it commits.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path. Migrations are not run
// here; callers run them before opening.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// begin starts a transaction for compound operations.
func (s *Store) begin(ctx context.Context) (*sql.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return tx, nil
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func newUUID() string {
	return uuid.NewString()
}
