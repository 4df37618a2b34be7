// Package tags reads and writes the metadata containers of supported audio files.
//
// Containers are a closed set selected by file extension: [MP3] (ID3v2) and
// [FLAC] (Vorbis comments and PICTURE blocks). Any other extension maps to an
// unsupported container whose operations uniformly report [Unsupported].
//
// Tag access is best-effort enrichment: operations never return errors, they
// return a [Status] carrying a [Reason] so callers can tell an absent value
// from a corrupt or unreadable file and continue either way.
package tags

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/grasshide/LMS-Mixtape/internal/shared"
)

// Reason classifies the outcome of a tag operation.
type Reason int

const (
	OK          Reason = iota // value present / write done
	Absent                    // container readable, value not present
	Unsupported               // extension is not a supported container
	Corrupt                   // container could not be parsed or encoded
	IOError                   // file could not be opened or written
)

func (r Reason) String() string {
	switch r {
	case OK:
		return "ok"
	case Absent:
		return "absent"
	case Unsupported:
		return "unsupported"
	case Corrupt:
		return "corrupt"
	case IOError:
		return "io_error"
	default:
		return fmt.Sprintf("reason(%d)", int(r))
	}
}

// Status is the result of a tag operation.
type Status struct {
	Reason Reason
	Err    error
}

// OK reports whether the operation produced a value.
func (s Status) OK() bool { return s.Reason == OK }

func (s Status) String() string {
	if s.Err != nil {
		return fmt.Sprintf("%s: %v", s.Reason, s.Err)
	}
	return s.Reason.String()
}

func ok() Status                        { return Status{Reason: OK} }
func absent() Status                    { return Status{Reason: Absent} }
func failed(r Reason, err error) Status { return Status{Reason: r, Err: err} }
func unsupported(path string) Status {
	return Status{Reason: Unsupported, Err: fmt.Errorf("%w: %q", shared.ErrUnsupportedType, filepath.Ext(path))}
}

// Info is the subset of textual tags used for naming. Album and Genre are
// only filled by [ReadInfo].
type Info struct {
	Artist string
	Title  string
	Album  string
	Genre  string
}

// Complete reports whether both artist and title are non-empty.
func (i Info) Complete() bool {
	return strings.TrimSpace(i.Artist) != "" && strings.TrimSpace(i.Title) != ""
}

// Picture is artwork bytes with their MIME type.
type Picture struct {
	Data     []byte
	MIMEType string
}

// Format identifies a container.
type Format int

const (
	FormatUnsupported Format = iota
	FormatMP3
	FormatFLAC
)

func (f Format) String() string {
	switch f {
	case FormatMP3:
		return "mp3"
	case FormatFLAC:
		return "flac"
	default:
		return "unsupported"
	}
}

// Container is the capability set every format implements.
type Container interface {
	Format() Format
	ReadArtistTitle(path string) (Info, Status)
	HasArtwork(path string) (bool, Status)
	ExtractArtwork(path string) (Picture, Status)
	EmbedArtwork(path string, pic Picture) Status
}

var (
	_ Container = MP3{}
	_ Container = FLAC{}
	_ Container = unsupportedContainer{}
)

// FormatOf maps a file path to its container format by extension.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return FormatMP3
	case ".flac":
		return FormatFLAC
	default:
		return FormatUnsupported
	}
}

// ContainerFor returns the container handling path.
func ContainerFor(path string) Container {
	switch FormatOf(path) {
	case FormatMP3:
		return MP3{}
	case FormatFLAC:
		return FLAC{}
	default:
		return unsupportedContainer{}
	}
}

// ReadArtistTitle reads artist and title from path.
func ReadArtistTitle(path string) (Info, Status) {
	return ContainerFor(path).ReadArtistTitle(path)
}

// HasEmbeddedArtwork reports whether path carries embedded artwork. Any
// failure counts as no artwork.
func HasEmbeddedArtwork(path string) bool {
	has, _ := ContainerFor(path).HasArtwork(path)
	return has
}

// ExtractEmbeddedArtwork returns the embedded artwork of path.
func ExtractEmbeddedArtwork(path string) (Picture, Status) {
	return ContainerFor(path).ExtractArtwork(path)
}

// EmbedArtwork writes pic into the tag container of path.
func EmbedArtwork(path string, pic Picture) Status {
	return ContainerFor(path).EmbedArtwork(path, pic)
}

type unsupportedContainer struct{}

func (unsupportedContainer) Format() Format { return FormatUnsupported }

func (unsupportedContainer) ReadArtistTitle(path string) (Info, Status) {
	return Info{}, unsupported(path)
}

func (unsupportedContainer) HasArtwork(path string) (bool, Status) {
	return false, unsupported(path)
}

func (unsupportedContainer) ExtractArtwork(path string) (Picture, Status) {
	return Picture{}, unsupported(path)
}

func (unsupportedContainer) EmbedArtwork(path string, _ Picture) Status {
	return unsupported(path)
}
