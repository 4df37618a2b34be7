package mirror

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/grasshide/LMS-Mixtape/internal/models"
	tu "github.com/grasshide/LMS-Mixtape/internal/testing"
)

func TestExistsInSync(t *testing.T) {
	library := t.TempDir()
	syncDir := t.TempDir()

	tagged := filepath.Join(library, "01 teardrop.mp3")
	tu.WriteMP3(t, tagged, "Massive Attack", "Teardrop", nil)

	untagged := filepath.Join(library, "02 untitled.mp3")
	tu.WriteMP3(t, untagged, "", "", nil)

	t.Run("absent", func(t *testing.T) {
		if ExistsInSync(models.NewSong(tagged), syncDir) {
			t.Error("expected song to be missing from empty mirror")
		}
	})

	t.Run("present under renamed form", func(t *testing.T) {
		dir := t.TempDir()
		tu.Touch(t, filepath.Join(dir, "Massive Attack - Teardrop.mp3"))

		if !ExistsInSync(models.NewSong(tagged), dir) {
			t.Error("expected renamed file to be found")
		}
	})

	t.Run("present under original name", func(t *testing.T) {
		dir := t.TempDir()
		tu.Touch(t, filepath.Join(dir, "01 teardrop.mp3"))

		if !ExistsInSync(models.NewSong(tagged), dir) {
			t.Error("expected original file to be found")
		}
	})

	t.Run("untagged original", func(t *testing.T) {
		dir := t.TempDir()
		tu.Touch(t, filepath.Join(dir, "02 untitled.mp3"))

		if !ExistsInSync(models.NewSong(untagged), dir) {
			t.Error("expected untagged file to be found")
		}
	})

	t.Run("source gone still checks original", func(t *testing.T) {
		dir := t.TempDir()
		tu.Touch(t, filepath.Join(dir, "gone.mp3"))

		song := models.NewSong(filepath.Join(library, "gone.mp3"))
		if !ExistsInSync(song, dir) {
			t.Error("expected original name match without a readable source")
		}
	})

	t.Run("missing mirror directory", func(t *testing.T) {
		if ExistsInSync(models.NewSong(tagged), filepath.Join(syncDir, "nope")) {
			t.Error("expected false for missing directory")
		}
	})

	t.Run("empty directory argument", func(t *testing.T) {
		if ExistsInSync(models.NewSong(tagged), "") {
			t.Error("expected false for empty directory")
		}
	})
}

func TestAnnotate(t *testing.T) {
	library := t.TempDir()
	syncDir := t.TempDir()

	a := filepath.Join(library, "a.mp3")
	b := filepath.Join(library, "b.mp3")
	tu.WriteMP3(t, a, "", "", nil)
	tu.WriteMP3(t, b, "", "", nil)
	tu.Touch(t, filepath.Join(syncDir, "a.mp3"))

	songs := []models.Song{models.NewSong(a), models.NewSong(b)}

	got := Annotate(songs, syncDir)
	if !got[0].ExistsInSync || got[1].ExistsInSync {
		t.Errorf("unexpected annotations: %v, %v", got[0].ExistsInSync, got[1].ExistsInSync)
	}
	if songs[0].ExistsInSync {
		t.Error("input slice should not be modified")
	}

	missing := New(syncDir).Missing(songs)
	if len(missing) != 1 || missing[0].URL != b {
		t.Errorf("Missing() = %v", missing)
	}

	t.Run("unavailable mirror leaves songs unchanged", func(t *testing.T) {
		gone := filepath.Join(syncDir, "removed")
		if err := os.Mkdir(gone, 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.Remove(gone); err != nil {
			t.Fatal(err)
		}

		got := Annotate(songs, gone)
		for _, s := range got {
			if s.ExistsInSync {
				t.Errorf("expected no annotation for %s", s.URL)
			}
		}
	})
}
