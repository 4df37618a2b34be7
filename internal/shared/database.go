package shared

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/mattn/go-sqlite3"
)

const (
	// PersistDBPath is the media server's per-track state (ratings, play history) relative to the library dir.
	PersistDBPath = "prefs/persist.db"
	// LibraryDBPath is the scanned catalogue (tracks, albums, genres) relative to the library dir.
	LibraryDBPath = "cache/library.db"
	// LibrarySchema is the name library.db is attached under.
	LibrarySchema = "library"
)

// LibraryPaths returns the persist and library database paths under dir.
func LibraryPaths(dir string) (persist, library string) {
	return filepath.Join(dir, PersistDBPath), filepath.Join(dir, LibraryDBPath)
}

// ConfigureDatabase sets connection pool settings for the database.
func ConfigureDatabase(db *sql.DB, maxOpenConns, maxIdleConns int) {
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
}

// OpenLibrary opens the media server's databases under dir read-only.
//
// persist.db is the main schema and library.db is attached as [LibrarySchema]
// on every pooled connection. Fails with [ErrStoreUnavailable] when either
// file is missing or unopenable.
func OpenLibrary(dir string) (*sql.DB, error) {
	persist, library := LibraryPaths(dir)
	for _, p := range []string{persist, library} {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, p, err)
		}
	}

	db, err := openLibrary(readOnlyDSN(persist), library, true)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return db, nil
}

// CreateLibrary opens (creating if needed) a writable library layout under dir.
//
// Only used to build sandbox libraries for local testing; the real library
// belongs to the media server and is never written.
func CreateLibrary(dir string) (*sql.DB, error) {
	persist, library := LibraryPaths(dir)
	for _, p := range []string{persist, library} {
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			return nil, fmt.Errorf("failed to create library directory: %w", err)
		}
	}

	return openLibrary(persist, library, false)
}

// openLibrary opens dsn through a connector whose hook attaches library to
// each new connection, so connections the pool replaces see the same schema.
// Attached databases do not inherit mode=ro from the main URI, hence
// query_only on read-only connections.
func openLibrary(dsn, library string, readOnly bool) (*sql.DB, error) {
	drv := &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			if _, err := conn.Exec("ATTACH DATABASE ? AS "+LibrarySchema, []driver.Value{library}); err != nil {
				return fmt.Errorf("failed to attach library database: %w", err)
			}
			if readOnly {
				if _, err := conn.Exec("PRAGMA query_only = ON", nil); err != nil {
					return err
				}
			}
			return nil
		},
	}

	db := sql.OpenDB(&libraryConnector{dsn: dsn, driver: drv})
	ConfigureDatabase(db, 4, 2)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// libraryConnector is a [driver.Connector] for one DSN on a hooked driver.
type libraryConnector struct {
	dsn    string
	driver *sqlite3.SQLiteDriver
}

func (c *libraryConnector) Connect(context.Context) (driver.Conn, error) {
	return c.driver.Open(c.dsn)
}

func (c *libraryConnector) Driver() driver.Driver { return c.driver }

// readOnlyDSN builds a SQLite URI filename opening path in read-only mode.
func readOnlyDSN(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs), RawQuery: "mode=ro"}
	return u.String()
}
