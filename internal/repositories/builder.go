package repositories

import (
	"strings"

	"github.com/grasshide/LMS-Mixtape/internal/models"
)

// predicate is one conjunct of the candidate WHERE clause.
type predicate struct {
	sql  string
	args []any
}

// ordering is the sort applied to projected candidate columns, both inside
// the per-album window and for the final result.
type ordering struct {
	expr string
}

var orderings = map[models.Order]ordering{
	models.OrderAdded:      {expr: "added DESC, id DESC"},
	models.OrderLastPlayed: {expr: "CASE WHEN IFNULL(last_played, 0) = 0 THEN 1 ELSE 0 END, last_played DESC, id DESC"},
	models.OrderRandom:     {expr: "RANDOM()"},
}

func orderingFor(o models.Order) ordering {
	if ord, ok := orderings[o]; ok {
		return ord
	}
	return orderings[models.OrderAdded]
}

// songQuery composes the selection statement from an enumerated option set.
type songQuery struct {
	caps       Capabilities
	where      []predicate
	order      ordering
	albumLimit int
	limit      int
}

func newSongQuery(opts models.QueryOptions, caps Capabilities) *songQuery {
	q := &songQuery{
		caps:       caps,
		order:      orderingFor(opts.Order),
		albumLimit: opts.AlbumLimit,
		limit:      opts.EffectiveLimit(),
	}

	q.filter("tracks.audio = 1")
	q.filter("IFNULL(tracks_persistent.rating, 0) >= ?", opts.MinRating)
	// fragment URLs are cue sheet entries, not files
	q.filter("INSTR(tracks.url, '#') = 0")

	if genres := nonEmpty(opts.ExcludeGenres); len(genres) > 0 {
		args := make([]any, len(genres))
		for i, g := range genres {
			args[i] = g
		}
		// a track is dropped when any of its genres is excluded
		q.filter(`NOT EXISTS (
			SELECT 1 FROM genre_track AS excluded_track
			JOIN genres AS excluded ON excluded_track.genre = excluded.id
			WHERE excluded_track.track = tracks.id AND excluded.name IN (`+placeholders(len(genres))+`))`, args...)
	}

	if caps.DynPlayScore && opts.DynPSFilter() {
		q.filter("IFNULL(alternativeplaycount.dynPSval, 0) > ?", *opts.MinDynPSVal)
	}

	if opts.AddedBefore != nil {
		q.filter("tracks.timestamp < ?", opts.AddedBefore.Unix())
	}

	return q
}

func (q *songQuery) filter(sql string, args ...any) {
	q.where = append(q.where, predicate{sql: sql, args: args})
}

// Build returns the statement and its positional arguments.
func (q *songQuery) Build() (string, []any) {
	var (
		b    strings.Builder
		args []any
	)

	dynPS := "NULL"
	dynJoin := ""
	if q.caps.DynPlayScore {
		dynPS = "alternativeplaycount.dynPSval"
		dynJoin = "\n\t\tLEFT JOIN alternativeplaycount ON tracks.url = alternativeplaycount.url"
	}

	b.WriteString(`WITH candidates AS (
		SELECT
			tracks.id AS id,
			tracks.url AS url,
			tracks.title AS title,
			contributors.name AS artist,
			MIN(genres.name) AS genre,
			tracks_persistent.rating AS rating,
			tracks_persistent.added AS added,
			tracks_persistent.lastPlayed AS last_played,
			albums.title AS album,
			tracks.album AS album_id,
			` + dynPS + ` AS dyn_ps_val
		FROM tracks
		JOIN tracks_persistent ON tracks.url = tracks_persistent.url
		LEFT JOIN genre_track ON tracks.id = genre_track.track
		LEFT JOIN genres ON genre_track.genre = genres.id
		JOIN contributor_track ON tracks.id = contributor_track.track
		JOIN contributors ON tracks.primary_artist = contributors.id
		JOIN albums ON tracks.album = albums.id` + dynJoin + `
		WHERE `)

	conds := make([]string, len(q.where))
	for i, p := range q.where {
		conds[i] = p.sql
		args = append(args, p.args...)
	}
	b.WriteString(strings.Join(conds, " AND "))
	b.WriteString("\n\t\tGROUP BY tracks.id\n\t)")

	source := "candidates"
	if q.albumLimit > 0 {
		b.WriteString(`, ranked AS (
		SELECT candidates.*, ROW_NUMBER() OVER (PARTITION BY album_id ORDER BY ` + q.order.expr + `) AS album_rank
		FROM candidates
	)`)
		source = "ranked"
	}

	b.WriteString("\n\tSELECT url, title, artist, genre, rating, added, last_played, album, dyn_ps_val\n\tFROM " + source)
	if q.albumLimit > 0 {
		b.WriteString("\n\tWHERE album_rank <= ?")
		args = append(args, q.albumLimit)
	}
	b.WriteString("\n\tORDER BY " + q.order.expr + "\n\tLIMIT ?")
	args = append(args, q.limit)

	return b.String(), args
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
