package dbmigrate

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Run executes a goose command against the SQLite database at dbPath.
// Migrations are embedded so the binary works from any working directory.
func Run(command string, dbPath string) error {
	if dbPath == "" {
		return fmt.Errorf("database path is empty")
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if err := goose.Run(command, db, "migrations"); err != nil {
		return fmt.Errorf("goose %s failed: %w", command, err)
	}

	return nil
}
