package tags

import (
	"errors"
	"fmt"
	"os"

	"github.com/dhowden/tag"
	"github.com/grasshide/LMS-Mixtape/internal/shared"
)

// readMetadata parses whatever tag format dhowden/tag recognizes in path.
func readMetadata(path string) (tag.Metadata, Status) {
	f, err := os.Open(path)
	if err != nil {
		return nil, failed(IOError, err)
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if errors.Is(err, tag.ErrNoTagsFound) {
		return nil, absent()
	}
	if err != nil {
		return nil, failed(Corrupt, fmt.Errorf("%w: %v", shared.ErrTagRead, err))
	}
	return m, ok()
}

func readArtistTitle(path string) (Info, Status) {
	m, st := readMetadata(path)
	if !st.OK() {
		return Info{}, st
	}

	info := Info{Artist: m.Artist(), Title: m.Title()}
	if info.Artist == "" && info.Title == "" {
		return info, absent()
	}
	return info, ok()
}

// ReadInfo reads artist, title, album and genre from any tag format
// dhowden/tag recognizes.
func ReadInfo(path string) (Info, Status) {
	m, st := readMetadata(path)
	if !st.OK() {
		return Info{}, st
	}
	return Info{Artist: m.Artist(), Title: m.Title(), Album: m.Album(), Genre: m.Genre()}, ok()
}
