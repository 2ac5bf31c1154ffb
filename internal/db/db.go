package db

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/icdts/itemboard/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"           // Import driver
	_ "github.com/mattn/go-sqlite3" // Import driver
)

// MemoryPath opens a private in-process SQLite database.
const MemoryPath = ":memory:"

var sqliteSchema = `
CREATE TABLE IF NOT EXISTS items (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

var postgresSchema = `
CREATE TABLE IF NOT EXISTS items (
    id BIGSERIAL PRIMARY KEY,
    name TEXT NOT NULL,
    created_at TIMESTAMPTZ DEFAULT now()
);
`

// ConnectSQLite opens the database at dbPath, creating the schema and
// seeding it when the file did not exist yet.
func ConnectSQLite(dbPath string, seed bool) (*sqlx.DB, error) {
	mustSeed := seed && dbPath == MemoryPath
	if dbPath != MemoryPath {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			mustSeed = seed
		}
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}

	db, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("connect sqlite: %w", err)
	}
	if dbPath == MemoryPath {
		// every pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create sqlite schema: %w", err)
	}

	if mustSeed {
		if err := seedItems(db); err != nil {
			db.Close()
			return nil, err
		}
	}

	return db, nil
}

// ConnectPostgres opens dsn and seeds the items table when it is created.
func ConnectPostgres(dsn string, seed bool) (*sqlx.DB, error) {
	if dsn == "" {
		return nil, errors.New("postgres DSN is empty")
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	var existing *string
	if err := db.Get(&existing, "SELECT to_regclass('items')::text"); err != nil {
		db.Close()
		return nil, fmt.Errorf("inspect postgres schema: %w", err)
	}

	if _, err := db.Exec(postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create postgres schema: %w", err)
	}

	if seed && existing == nil {
		if err := seedItems(db); err != nil {
			db.Close()
			return nil, err
		}
	}

	return db, nil
}

func seedItems(db *sqlx.DB) error {
	slog.Info("Seeding database...", "input", len(models.SeedNames))

	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	insert := tx.Rebind("INSERT INTO items (name) VALUES (?)")
	for _, name := range models.SeedNames {
		if _, err := tx.Exec(insert, name); err != nil {
			tx.Rollback()
			return fmt.Errorf("seed %q: %w", name, err)
		}
	}
	return tx.Commit()
}
