package commands

import (
	"database/sql"

	"github.com/nanoform/nanoform/config"
	"github.com/nanoform/nanoform/db"
	"github.com/nanoform/nanoform/errors"
	"github.com/nanoform/nanoform/logger"
	"github.com/nanoform/nanoform/rdr"
	"github.com/nanoform/nanoform/rdr/kb"
)

// openDatabase opens and migrates a database at the specified path.
// If dbPath is empty, the configured path is used.
func openDatabase(dbPath string) (*sql.DB, error) {
	if dbPath == "" {
		cfg, err := config.Load()
		if err != nil {
			return nil, errors.Wrap(err, "failed to load configuration")
		}
		dbPath = cfg.Database.Path
	}

	database, err := db.OpenWithMigrations(dbPath, logger.Logger)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database at %s", dbPath)
	}
	return database, nil
}

// loadSnapshot builds the rule tree: from the explicit path when given,
// then the configured table, then the embedded default.
func loadSnapshot(tablePath string) (*rdr.Snapshot, error) {
	if tablePath == "" {
		cfg, err := config.Load()
		if err != nil {
			return nil, errors.Wrap(err, "failed to load configuration")
		}
		tablePath = cfg.KB.TablePath
	}
	if tablePath != "" {
		return kb.LoadFile(tablePath)
	}
	return kb.Default()
}
