package database

import (
	"fmt"
	"os"
	"path/filepath"

	"sfm/internal/config"
	"sfm/internal/database/migrations"
)

// FileName is the pass-history file inside the configured data dir.
const FileName = "sfm.db"

// NewDatabaseFromConfig opens the pass-history store named by cfg.Type:
// "sqlite" (the default) under cfg.DataDir, or "memory".
func NewDatabaseFromConfig(cfg config.DatabaseConfig) (*SQLiteDatabase, error) {
	switch cfg.Type {
	case "sqlite", "":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating data dir: %w", err)
		}
		return NewSQLiteDatabase(filepath.Join(cfg.DataDir, FileName))
	case "memory":
		return NewSQLiteDatabase(":memory:")
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}

// Inspect reports the schema status of the configured sqlite file without
// migrating it. ok is false when there is no file to inspect.
func Inspect(cfg config.DatabaseConfig) (st migrations.SchemaStatus, ok bool, err error) {
	if cfg.Type != "sqlite" && cfg.Type != "" {
		return st, false, nil
	}
	path := filepath.Join(cfg.DataDir, FileName)
	if _, err := os.Stat(path); err != nil {
		return st, false, nil
	}

	db, err := OpenConnection(path)
	if err != nil {
		return st, false, err
	}
	defer db.Close()

	st, err = migrations.Status(db)
	if err != nil {
		return st, false, fmt.Errorf("inspecting %s: %w", path, err)
	}
	return st, true, nil
}
