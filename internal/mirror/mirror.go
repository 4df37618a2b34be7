// Package mirror reconciles selections against a long-lived sync directory.
package mirror

import (
	"os"
	"path/filepath"

	"github.com/grasshide/LMS-Mixtape/internal/models"
	"github.com/grasshide/LMS-Mixtape/internal/naming"
)

// Reconciler checks whether songs are already materialized in Dir.
type Reconciler struct {
	Dir   string
	Names naming.Builder
}

func New(dir string) *Reconciler {
	return &Reconciler{Dir: dir}
}

// Available reports whether the mirror directory exists.
func (r *Reconciler) Available() bool {
	if r == nil || r.Dir == "" {
		return false
	}
	info, err := os.Stat(r.Dir)
	return err == nil && info.IsDir()
}

// Exists reports whether song is present under its renamed or original
// filename. Lookup errors count as not present.
func (r *Reconciler) Exists(song models.Song) bool {
	if r.Dir == "" {
		return false
	}
	original := song.Filename
	if original == "" {
		original = filepath.Base(song.URL)
	}

	renamed := r.Names.TargetName(song.URL, original, true)
	if present(filepath.Join(r.Dir, renamed)) {
		return true
	}
	return present(filepath.Join(r.Dir, original))
}

// Annotate returns copies of songs with ExistsInSync set. When the mirror
// is unavailable the songs are returned unchanged.
func (r *Reconciler) Annotate(songs []models.Song) []models.Song {
	out := make([]models.Song, len(songs))
	copy(out, songs)
	if !r.Available() {
		return out
	}
	for i := range out {
		out[i].ExistsInSync = r.Exists(out[i])
	}
	return out
}

// Missing returns the songs not yet present in the mirror.
func (r *Reconciler) Missing(songs []models.Song) []models.Song {
	if !r.Available() {
		return songs
	}
	var out []models.Song
	for _, s := range songs {
		if !r.Exists(s) {
			out = append(out, s)
		}
	}
	return out
}

// ExistsInSync reports whether song is already present in syncDir.
func ExistsInSync(song models.Song, syncDir string) bool {
	return New(syncDir).Exists(song)
}

// Annotate marks each song with its presence in syncDir.
func Annotate(songs []models.Song, syncDir string) []models.Song {
	return New(syncDir).Annotate(songs)
}

func present(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
