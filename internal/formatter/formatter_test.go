package formatter

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/grasshide/LMS-Mixtape/internal/artwork"
	"github.com/grasshide/LMS-Mixtape/internal/models"
	"github.com/grasshide/LMS-Mixtape/internal/shared"
	"github.com/grasshide/LMS-Mixtape/internal/tasks"
	th "github.com/grasshide/LMS-Mixtape/internal/testing"
)

func sampleSongs() []models.Song {
	played := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	dyn := 42.5

	one := models.NewSong("/music/Air/Moon Safari/01 La Femme d'Argent.flac")
	one.Title = "La Femme d'Argent"
	one.Artist = "Air"
	one.Album = "Moon Safari"
	one.Genre = "Electronic"
	one.Rating = 100
	one.Added = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	one.LastPlayed = &played
	one.DynPSVal = &dyn
	one.ExistsInSync = true

	two := models.NewSong("/music/Portishead/Dummy/03 Sour Times.mp3")
	two.Title = "Sour Times"
	two.Artist = "Portishead"
	two.Album = "Dummy"
	two.Genre = "Trip-Hop"
	two.Rating = 60

	return []models.Song{one, two}
}

func TestExporters(t *testing.T) {
	songs := sampleSongs()

	t.Run("SongsToCSV", func(t *testing.T) {
		data, err := SongsToCSV(songs)
		if err != nil {
			t.Fatalf("SongsToCSV failed: %v", err)
		}

		records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
		if err != nil {
			t.Fatalf("invalid CSV: %v", err)
		}
		if len(records) != 3 {
			t.Fatalf("expected header + 2 rows, got %d", len(records))
		}
		if strings.Join(records[0], ",") != "Title,Artist,Album,Genre,Rating,Added,Last Played,Dyn PS,Path" {
			t.Errorf("unexpected headers: %v", records[0])
		}
		if records[1][0] != "La Femme d'Argent" || records[1][4] != "100" || records[1][7] != "42.5" {
			t.Errorf("unexpected first row: %v", records[1])
		}
		if records[1][6] != "2024-03-01 12:00:00" {
			t.Errorf("last played = %q", records[1][6])
		}
		if records[2][6] != "never" || records[2][7] != "" || records[2][5] != "" {
			t.Errorf("unexpected second row: %v", records[2])
		}
	})

	t.Run("SongsToText", func(t *testing.T) {
		output := string(SongsToText(songs))
		for _, want := range []string{"Tracks: 2", "1. Air - La Femme d'Argent", "2. Portishead - Sour Times"} {
			if !strings.Contains(output, want) {
				t.Errorf("text missing %q:\n%s", want, output)
			}
		}
	})

	t.Run("SongsToMarkdown", func(t *testing.T) {
		output := string(SongsToMarkdown(songs, "Road Trip"))
		for _, want := range []string{"# Road Trip", "**Tracks**: 2", "1. Air - La Femme d'Argent (Moon Safari) [★★★★★]", "[★★★☆☆]"} {
			if !strings.Contains(output, want) {
				t.Errorf("markdown missing %q:\n%s", want, output)
			}
		}
	})

	t.Run("SongsToTable", func(t *testing.T) {
		output := SongsToTable(songs)
		for _, want := range []string{"Artist", "Portishead", "Sour Times", "✓", "2 songs"} {
			if !strings.Contains(output, want) {
				t.Errorf("table missing %q:\n%s", want, output)
			}
		}
	})

	t.Run("SongsToJSON empty", func(t *testing.T) {
		data, err := SongsToJSON(nil)
		if err != nil {
			t.Fatal(err)
		}
		if strings.TrimSpace(string(data)) != "[]" {
			t.Errorf("expected empty array, got %s", data)
		}
	})
}

func TestParseSongs(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		data, err := SongsToJSON(sampleSongs())
		if err != nil {
			t.Fatal(err)
		}
		songs, err := ParseSongs(data)
		if err != nil {
			t.Fatalf("ParseSongs() error = %v", err)
		}
		if len(songs) != 2 || songs[0].Artist != "Air" || songs[1].Filename != "03 Sour Times.mp3" {
			t.Errorf("unexpected songs: %+v", songs)
		}
		if songs[0].LastPlayed == nil || songs[1].LastPlayed != nil {
			t.Error("last played not preserved")
		}
	})

	t.Run("derived fields completed", func(t *testing.T) {
		songs, err := ParseSongs([]byte(`[{"url": "/music/a b/c.mp3"}]`))
		if err != nil {
			t.Fatalf("ParseSongs() error = %v", err)
		}
		if songs[0].Filename != "c.mp3" || songs[0].CoverURL != models.CoverURLFor("/music/a b/c.mp3") {
			t.Errorf("got %+v", songs[0])
		}
	})

	t.Run("invalid", func(t *testing.T) {
		for _, input := range []string{`{`, `[{"title": "no url"}]`} {
			if _, err := ParseSongs([]byte(input)); !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("ParseSongs(%s) error = %v, want ErrInvalidInput", input, err)
			}
		}
	})
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatTable, false},
		{"JSON", FormatJSON, false},
		{"csv", FormatCSV, false},
		{"text", FormatText, false},
		{"markdown", FormatMarkdown, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestWriteSongs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "songs.json")

	if err := WriteSongs(sampleSongs(), FormatJSON, path); err != nil {
		t.Fatalf("WriteSongs() error = %v", err)
	}
	th.AssertFileExists(t, path)

	songs, err := ReadSongs(path)
	if err != nil {
		t.Fatalf("ReadSongs() error = %v", err)
	}
	if len(songs) != 2 {
		t.Errorf("expected 2 songs, got %d", len(songs))
	}

	if _, err := ReadSongs(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWriteExportManifest(t *testing.T) {
	started := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	result := &tasks.ExportResult{
		BatchID:     "batch-1",
		Destination: models.DestinationArchive,
		Path:        "/exports/music_export_20240102_030405.zip",
		Requested:   3,
		Files: []tasks.FileResult{
			{Source: "/music/a.mp3", Target: "A - B.mp3", Bytes: 2048, Cover: artwork.Embedded},
		},
		Skipped:    []tasks.FileResult{{Source: "/music/gone.mp3", Status: tasks.FileSkipped}},
		Failed:     []tasks.FileResult{{Source: "/music/c.mp3", Target: "c.mp3", Error: errors.New("disk full")}},
		Covers:     1,
		Bytes:      2048,
		StartedAt:  started,
		FinishedAt: started.Add(time.Second),
	}

	path := filepath.Join(t.TempDir(), "manifests", "out.json")
	written, err := WriteExportManifest(result, path)
	if err != nil {
		t.Fatalf("WriteExportManifest() error = %v", err)
	}
	if written != path {
		t.Errorf("written = %s, want %s", written, path)
	}

	var m ExportManifest
	if err := json.Unmarshal(th.MustReadFile(t, path), &m); err != nil {
		t.Fatalf("invalid manifest JSON: %v", err)
	}

	if m.BatchID != "batch-1" || m.Destination != "zip" || m.Requested != 3 {
		t.Errorf("unexpected header fields: %+v", m)
	}
	if len(m.Files) != 1 || m.Files[0].Cover != "embedded" {
		t.Errorf("files = %+v", m.Files)
	}
	if len(m.Skipped) != 1 || m.Skipped[0] != "/music/gone.mp3" {
		t.Errorf("skipped = %v", m.Skipped)
	}
	if len(m.Failed) != 1 || m.Failed[0].Error != "disk full" {
		t.Errorf("failed = %+v", m.Failed)
	}
	if m.Size != "2.0 kB" {
		t.Errorf("size = %q", m.Size)
	}
}
