package models

import (
	"net/url"
	"path/filepath"
	"strings"
	"time"
)

// CoverEndpoint is the path the cover_url reference points at.
const CoverEndpoint = "/api/cover"

// Song is a track selected from the library.
type Song struct {
	URL          string     `json:"url"`
	Title        string     `json:"title"`
	Artist       string     `json:"artist"`
	Genre        string     `json:"genre"`
	Rating       int        `json:"rating"`
	Added        time.Time  `json:"added"`
	LastPlayed   *time.Time `json:"last_played"`
	Album        string     `json:"album"`
	DynPSVal     *float64   `json:"dyn_ps_val"`
	Filename     string     `json:"filename"`
	CoverURL     string     `json:"cover_url"`
	ExistsInSync bool       `json:"exists_in_sync"`
}

// NeverPlayed reports whether the library has no play timestamp for the song.
func (s Song) NeverPlayed() bool {
	return s.LastPlayed == nil || s.LastPlayed.IsZero()
}

// DecodeFileURI turns a stored file:// URI into a plain filesystem path.
//
// Anything after '#' is kept; callers exclude fragment rows before decoding.
func DecodeFileURI(uri string) string {
	p := strings.TrimPrefix(uri, "file://")
	if decoded, err := url.PathUnescape(p); err == nil {
		p = decoded
	}
	return p
}

// CoverURLFor builds the on-demand artwork reference for a track path.
func CoverURLFor(path string) string {
	return CoverEndpoint + "?" + url.Values{"path": {path}}.Encode()
}

// NewSong completes the derived fields (filename, cover_url) from path.
func NewSong(path string) Song {
	return Song{
		URL:      path,
		Filename: filepath.Base(path),
		CoverURL: CoverURLFor(path),
	}
}
