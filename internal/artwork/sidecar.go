package artwork

import (
	"os"
	"path/filepath"
	"strings"
)

// ServeSidecars is the priority list used when serving covers.
var ServeSidecars = []string{"cover.jpg", "cover.png", "cover.jpeg", "folder.jpg", "folder.png", "folder.jpeg"}

// EmbedSidecars is the priority list used when embedding covers.
var EmbedSidecars = []string{"cover.jpg", "cover.png", "cover.jpeg"}

// FindSidecar returns the first regular file in dir named in names.
func FindSidecar(dir string, names []string) (string, bool) {
	for _, name := range names {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path, true
		}
	}
	return "", false
}

// SidecarMIME derives the MIME type from a sidecar's extension.
func SidecarMIME(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".png") {
		return "image/png"
	}
	return "image/jpeg"
}
