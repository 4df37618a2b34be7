package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/grasshide/LMS-Mixtape/internal/models"
	"github.com/grasshide/LMS-Mixtape/internal/shared"
)

// Capabilities are the optional schema features of a library.
type Capabilities struct {
	// DynPlayScore is set when the alternativeplaycount table exists.
	DynPlayScore bool
}

// SongRepository selects songs from a media server library opened with
// [shared.OpenLibrary]. Schema capabilities are probed once per repository.
type SongRepository struct {
	db *sql.DB

	once sync.Once
	caps Capabilities
	err  error
}

// NewSongRepository creates a SongRepository over db.
func NewSongRepository(db *sql.DB) *SongRepository {
	return &SongRepository{db: db}
}

// Capabilities probes the schema for optional features.
func (r *SongRepository) Capabilities(ctx context.Context) (Capabilities, error) {
	r.once.Do(func() {
		var n int
		err := r.db.QueryRowContext(ctx, `
			SELECT
				(SELECT COUNT(*) FROM main.sqlite_master WHERE type = 'table' AND name = 'alternativeplaycount') +
				(SELECT COUNT(*) FROM `+shared.LibrarySchema+`.sqlite_master WHERE type = 'table' AND name = 'alternativeplaycount')
		`).Scan(&n)
		if err != nil {
			r.err = fmt.Errorf("%w: failed to probe schema: %v", shared.ErrStoreUnavailable, err)
			return
		}
		r.caps = Capabilities{DynPlayScore: n > 0}
	})
	return r.caps, r.err
}

// Select returns the songs matching opts in the requested order. No match
// is an empty slice, not an error.
func (r *SongRepository) Select(ctx context.Context, opts models.QueryOptions) ([]models.Song, error) {
	caps, err := r.Capabilities(ctx)
	if err != nil {
		return nil, err
	}

	query, args := newSongQuery(opts, caps).Build()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query songs: %v", shared.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	songs := []models.Song{}
	for rows.Next() {
		song, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		songs = append(songs, song)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return songs, nil
}

// scanRow scans a result row into a [models.Song], decoding the stored URI.
func (r *SongRepository) scanRow(rows *sql.Rows) (models.Song, error) {
	var (
		uri        string
		title      sql.NullString
		artist     sql.NullString
		genre      sql.NullString
		rating     sql.NullInt64
		added      sql.NullInt64
		lastPlayed sql.NullInt64
		album      sql.NullString
		dynPSVal   sql.NullFloat64
	)

	if err := rows.Scan(&uri, &title, &artist, &genre, &rating, &added, &lastPlayed, &album, &dynPSVal); err != nil {
		return models.Song{}, fmt.Errorf("failed to scan song: %w", err)
	}

	song := models.NewSong(models.DecodeFileURI(uri))
	song.Title = title.String
	song.Artist = artist.String
	song.Genre = genre.String
	song.Rating = int(rating.Int64)
	song.Album = album.String

	if added.Valid && added.Int64 > 0 {
		song.Added = time.Unix(added.Int64, 0).UTC()
	}
	if lastPlayed.Valid && lastPlayed.Int64 > 0 {
		t := time.Unix(lastPlayed.Int64, 0).UTC()
		song.LastPlayed = &t
	}
	if dynPSVal.Valid {
		v := dynPSVal.Float64
		song.DynPSVal = &v
	}

	return song, nil
}

// QuerySongs opens the library under dir read-only, runs one selection and
// closes the connection.
func QuerySongs(ctx context.Context, dir string, opts models.QueryOptions) ([]models.Song, error) {
	db, err := shared.OpenLibrary(dir)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	return NewSongRepository(db).Select(ctx, opts)
}
