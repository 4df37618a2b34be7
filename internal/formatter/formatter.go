// package formatter renders song selections and export results (CSV, Markdown, plain text, tables, JSON manifests)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/grasshide/LMS-Mixtape/internal/models"
	"github.com/grasshide/LMS-Mixtape/internal/shared"
)

// Format is an output rendering for song lists.
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatText     Format = "txt"
	FormatMarkdown Format = "md"
)

// ParseFormat validates s as a [Format].
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSON, FormatCSV, FormatText, FormatMarkdown:
		return f, nil
	case "":
		return FormatTable, nil
	case "text":
		return FormatText, nil
	case "markdown":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, s)
	}
}

// Render renders songs in format f.
func Render(songs []models.Song, f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		return SongsToJSON(songs)
	case FormatCSV:
		return SongsToCSV(songs)
	case FormatText:
		return SongsToText(songs), nil
	case FormatMarkdown:
		return SongsToMarkdown(songs, "Mixtape"), nil
	default:
		return []byte(SongsToTable(songs) + "\n"), nil
	}
}

// SongsToCSV converts songs to CSV with columns: Title, Artist, Album, Genre, Rating, Added, Last Played, Dyn PS, Path
func SongsToCSV(songs []models.Song) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Title", "Artist", "Album", "Genre", "Rating", "Added", "Last Played", "Dyn PS", "Path"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, song := range songs {
		record := []string{
			song.Title,
			song.Artist,
			song.Album,
			song.Genre,
			strconv.Itoa(song.Rating),
			formatTime(song.Added),
			formatLastPlayed(song),
			formatDynPS(song.DynPSVal),
			song.URL,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// SongsToMarkdown converts songs to a numbered Markdown list under title.
func SongsToMarkdown(songs []models.Song, title string) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", title))
	buf.WriteString(fmt.Sprintf("**Tracks**: %d\n\n", len(songs)))

	buf.WriteString("## Tracks\n\n")
	for i, song := range songs {
		albumPart := ""
		if song.Album != "" {
			albumPart = fmt.Sprintf(" (%s)", song.Album)
		}
		buf.WriteString(fmt.Sprintf("%d. %s - %s%s [%s]\n", i+1, song.Artist, song.Title, albumPart, ratingStars(song.Rating)))
	}

	return buf.Bytes()
}

// SongsToText converts songs to plain text, one per line.
func SongsToText(songs []models.Song) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Tracks: %d\n\n", len(songs)))
	for i, song := range songs {
		buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, song.Artist, song.Title))
	}

	return buf.Bytes()
}

// SongsToJSON encodes songs as an indented JSON array.
func SongsToJSON(songs []models.Song) ([]byte, error) {
	if songs == nil {
		songs = []models.Song{}
	}
	return shared.MarshalJSON(songs, true)
}

// ParseSongs decodes a JSON array of songs (as written by [SongsToJSON]) and
// completes derived fields missing from hand-written input.
func ParseSongs(data []byte) ([]models.Song, error) {
	var songs []models.Song
	if err := json.Unmarshal(data, &songs); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	for i, s := range songs {
		if s.URL == "" {
			return nil, fmt.Errorf("%w: song %d has no url", shared.ErrInvalidInput, i)
		}
		base := models.NewSong(s.URL)
		if s.Filename == "" {
			songs[i].Filename = base.Filename
		}
		if s.CoverURL == "" {
			songs[i].CoverURL = base.CoverURL
		}
	}
	return songs, nil
}

// ReadSongs reads a JSON song list from path.
func ReadSongs(path string) ([]models.Song, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read songs file: %w", err)
	}
	return ParseSongs(data)
}

// WriteSongs renders songs in format f to path.
func WriteSongs(songs []models.Song, f Format, path string) error {
	data, err := Render(songs, f)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s file: %w", f, err)
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateTime)
}

func formatLastPlayed(song models.Song) string {
	if song.NeverPlayed() {
		return "never"
	}
	return formatTime(*song.LastPlayed)
}

func formatDynPS(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// ratingStars renders a 0-100 rating on a five star scale.
func ratingStars(rating int) string {
	stars := max(0, min(5, (rating+10)/20))
	return strings.Repeat("★", stars) + strings.Repeat("☆", 5-stars)
}
