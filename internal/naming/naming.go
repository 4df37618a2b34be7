// Package naming derives destination filenames for exported tracks.
package naming

import (
	"path/filepath"
	"strings"
	"unicode"

	"github.com/grasshide/LMS-Mixtape/internal/tags"
)

// TagReader reads the artist and title used to compose renamed filenames.
type TagReader func(path string) (tags.Info, tags.Status)

// Builder computes target filenames. The zero value reads tags from disk.
type Builder struct {
	Read TagReader
}

// TargetName returns the destination filename for sourcePath.
//
// With rename disabled originalFilename is returned as is. Otherwise the
// name is "<artist> - <title><ext>" when both tags are present, else the
// original filename, and is then passed through [Sanitize].
func (b Builder) TargetName(sourcePath, originalFilename string, rename bool) string {
	if !rename {
		return originalFilename
	}

	read := b.Read
	if read == nil {
		read = tags.ReadArtistTitle
	}

	name := originalFilename
	if info, st := read(sourcePath); st.OK() && info.Complete() {
		name = info.Artist + " - " + info.Title + filepath.Ext(sourcePath)
	}

	if clean := Sanitize(name); clean != "" {
		return clean
	}
	return originalFilename
}

// TargetName uses the default [Builder].
func TargetName(sourcePath, originalFilename string, rename bool) string {
	return Builder{}.TargetName(sourcePath, originalFilename, rename)
}

// Sanitize drops every rune that is not a letter, number, space, hyphen,
// underscore or period, then trims trailing spaces. It is idempotent.
func Sanitize(name string) string {
	clean := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return r
		}
		switch r {
		case ' ', '-', '_', '.':
			return r
		}
		return -1
	}, name)
	return strings.TrimRight(clean, " ")
}
