package testing

import (
	"database/sql"
	"testing"

	"github.com/grasshide/LMS-Mixtape/internal/shared"
)

// Library is a sandbox media server library under a temp dir.
type Library struct {
	Dir     string
	db      *sql.DB
	sandbox *shared.Sandbox
}

// NewLibrary creates a migrated sandbox library. With dynPS false the
// alternativeplaycount migration is rolled back so the table is absent.
func NewLibrary(t *testing.T, dynPS bool) *Library {
	t.Helper()

	dir := t.TempDir()
	db, err := shared.CreateLibrary(dir)
	if err != nil {
		t.Fatalf("failed to create library: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to migrate library: %v", err)
	}
	if !dynPS {
		if err := shared.RollbackMigration(db); err != nil {
			t.Fatalf("failed to drop alternativeplaycount: %v", err)
		}
	}

	return &Library{Dir: dir, db: db, sandbox: shared.NewSandbox(db)}
}

// Add inserts a track, failing the test on error.
func (l *Library) Add(t *testing.T, track shared.SandboxTrack) {
	t.Helper()
	if _, err := l.sandbox.Add(track); err != nil {
		t.Fatalf("failed to add track %q: %v", track.Title, err)
	}
}

// Exec runs a raw statement against the writable connection.
func (l *Library) Exec(t *testing.T, query string, args ...any) {
	t.Helper()
	if _, err := l.db.Exec(query, args...); err != nil {
		t.Fatalf("failed to exec %q: %v", query, err)
	}
}

func Int(v int) *int { return &v }

func Float(v float64) *float64 { return &v }
