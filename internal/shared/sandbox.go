package shared

import (
	"database/sql"
	"fmt"
	"net/url"
	"path/filepath"
)

// SandboxTrack is one row set written into a sandbox library: the catalogue
// entry plus its persisted state.
type SandboxTrack struct {
	Path      string // filesystem path; stored as a file:// URI
	RawURL    string // stored verbatim when set (e.g. cue sheet fragments)
	Title     string
	Artist    string
	Album     string
	Genres    []string
	Rating    *int
	Added     int64
	Played    int64
	Timestamp int64
	NotAudio  bool
	DynPSVal  *float64
}

// URL returns the track URL as the media server stores it.
func (t SandboxTrack) URL() string {
	if t.RawURL != "" {
		return t.RawURL
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(t.Path)}
	return u.String()
}

// Sandbox writes tracks into a library opened with [CreateLibrary].
type Sandbox struct {
	db      *sql.DB
	artists map[string]int64
	albums  map[string]int64
	genres  map[string]int64
}

func NewSandbox(db *sql.DB) *Sandbox {
	return &Sandbox{
		db:      db,
		artists: make(map[string]int64),
		albums:  make(map[string]int64),
		genres:  make(map[string]int64),
	}
}

// Add inserts the track and any artist, album or genre rows it references.
func (s *Sandbox) Add(t SandboxTrack) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	artistID, err := s.lookup(tx, s.artists, t.Artist, "INSERT INTO library.contributors (name, namesort) VALUES (?, ?)", t.Artist, t.Artist)
	if err != nil {
		return 0, fmt.Errorf("failed to insert contributor: %w", err)
	}
	albumID, err := s.lookup(tx, s.albums, t.Album, "INSERT INTO library.albums (title, titlesort) VALUES (?, ?)", t.Album, t.Album)
	if err != nil {
		return 0, fmt.Errorf("failed to insert album: %w", err)
	}

	audio := 1
	if t.NotAudio {
		audio = 0
	}
	res, err := tx.Exec(
		`INSERT INTO library.tracks (url, title, album, primary_artist, audio, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.URL(), t.Title, albumID, artistID, audio, t.Timestamp,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert track: %w", err)
	}
	trackID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	// role 1 is the media server's ARTIST role
	if _, err := tx.Exec("INSERT INTO library.contributor_track (role, contributor, track) VALUES (1, ?, ?)", artistID, trackID); err != nil {
		return 0, fmt.Errorf("failed to link contributor: %w", err)
	}

	for _, g := range t.Genres {
		genreID, err := s.lookup(tx, s.genres, g, "INSERT INTO library.genres (name) VALUES (?)", g)
		if err != nil {
			return 0, fmt.Errorf("failed to insert genre: %w", err)
		}
		if _, err := tx.Exec("INSERT INTO library.genre_track (genre, track) VALUES (?, ?)", genreID, trackID); err != nil {
			return 0, fmt.Errorf("failed to link genre: %w", err)
		}
	}

	var rating, played any
	if t.Rating != nil {
		rating = *t.Rating
	}
	if t.Played != 0 {
		played = t.Played
	}
	if _, err := tx.Exec(
		"INSERT INTO tracks_persistent (url, added, rating, lastPlayed) VALUES (?, ?, ?, ?)",
		t.URL(), t.Added, rating, played,
	); err != nil {
		return 0, fmt.Errorf("failed to insert persistent state: %w", err)
	}

	if t.DynPSVal != nil {
		if _, err := tx.Exec("INSERT INTO alternativeplaycount (url, dynPSval) VALUES (?, ?)", t.URL(), *t.DynPSVal); err != nil {
			return 0, fmt.Errorf("failed to insert play count state: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit track: %w", err)
	}
	return trackID, nil
}

// lookup returns the cached id for name or inserts a row for it. Ids are only
// cached once the insert statement succeeds; a rolled back Add may leave a stale
// entry, which callers avoid by discarding the Sandbox on error.
func (s *Sandbox) lookup(tx *sql.Tx, cache map[string]int64, name, stmt string, args ...any) (int64, error) {
	if id, ok := cache[name]; ok {
		return id, nil
	}
	res, err := tx.Exec(stmt, args...)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	cache[name] = id
	return id, nil
}
