package shared

import (
	"testing"
)

func TestSandboxTrackURL(t *testing.T) {
	tests := []struct {
		name  string
		track SandboxTrack
		want  string
	}{
		{"plain path", SandboxTrack{Path: "/music/a.mp3"}, "file:///music/a.mp3"},
		{"escaped", SandboxTrack{Path: "/music/a b#1.flac"}, "file:///music/a%20b%231.flac"},
		{"raw url", SandboxTrack{Path: "/x", RawURL: "file:///music/album.cue#2"}, "file:///music/album.cue#2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.track.URL(); got != tt.want {
				t.Errorf("URL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSandboxAdd(t *testing.T) {
	db, err := CreateLibrary(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create library: %v", err)
	}
	defer db.Close()
	if err := RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	sandbox := NewSandbox(db)
	rating, dyn := 60, 3.5
	for _, title := range []string{"One", "Two"} {
		if _, err := sandbox.Add(SandboxTrack{
			Path:     "/music/" + title + ".mp3",
			Title:    title,
			Artist:   "Artist",
			Album:    "Album",
			Genres:   []string{"Rock", "Pop"},
			Rating:   &rating,
			Played:   1700000000,
			DynPSVal: &dyn,
		}); err != nil {
			t.Fatalf("Add(%s) error = %v", title, err)
		}
	}

	counts := map[string]int{
		"library.tracks":            2,
		"library.albums":            1,
		"library.contributors":      1,
		"library.contributor_track": 2,
		"library.genres":            2,
		"library.genre_track":       4,
		"tracks_persistent":         2,
		"alternativeplaycount":      2,
	}
	for table, want := range counts {
		var got int
		if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&got); err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if got != want {
			t.Errorf("%s has %d rows, want %d", table, got, want)
		}
	}

	t.Run("nil rating stored as NULL", func(t *testing.T) {
		if _, err := sandbox.Add(SandboxTrack{Path: "/music/unrated.mp3", Title: "U", Artist: "Artist", Album: "Album"}); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
		var nulls int
		if err := db.QueryRow("SELECT COUNT(*) FROM tracks_persistent WHERE rating IS NULL AND lastPlayed IS NULL").Scan(&nulls); err != nil {
			t.Fatalf("query failed: %v", err)
		}
		if nulls != 1 {
			t.Errorf("expected 1 unrated, unplayed row, got %d", nulls)
		}
	})
}
