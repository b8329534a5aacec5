package db

import (
	"strings"

	"github.com/nanoform/nanoform/errors"
)

// ErrDatabaseClosed is returned for operations against a closed connection,
// typically when a batch observer or watcher outlives shutdown.
var ErrDatabaseClosed = errors.New("database is closed")

// IsDatabaseClosed reports whether err means the connection is gone. It
// matches both wrapped ErrDatabaseClosed and the raw messages the sql and
// SQLite drivers emit, which cannot be wrapped at their source.
func IsDatabaseClosed(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrDatabaseClosed) {
		return true
	}

	msg := err.Error()
	return strings.Contains(msg, "database is closed") ||
		strings.Contains(msg, "sql: database is closed")
}
