package store

import (
	"errors"
	"fmt"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ErrNotInitialized is returned when the database exists but the schema has
// not been created yet.
var ErrNotInitialized = errors.New("database not initialized: run 'journalwatch watch' once to create it")

// ErrLeaseHeld is returned when another live ingestion process owns the
// service lease.
var ErrLeaseHeld = errors.New("another journalwatch instance holds the service lease")

// wrapSchemaErr maps "no such table" failures to ErrNotInitialized so callers
// can tell an empty database apart from a broken one.
func wrapSchemaErr(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "no such table") {
		return fmt.Errorf("%w: %v", ErrNotInitialized, err)
	}
	return err
}

// IsBusy reports whether err is SQLite telling us another connection holds
// the lock past the busy timeout.
func IsBusy(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code() & 0xff
	return code == sqlite3.SQLITE_BUSY || code == sqlite3.SQLITE_LOCKED
}
