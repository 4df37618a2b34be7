package artwork

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/grasshide/LMS-Mixtape/internal/shared"
	"github.com/grasshide/LMS-Mixtape/internal/tags"
)

//go:embed placeholder.svg
var placeholder []byte

// PlaceholderMIME is the content type of the default cover.
const PlaceholderMIME = "image/svg+xml"

// Source records where a cover came from.
type Source int

const (
	SourceSidecar Source = iota
	SourceEmbedded
	SourcePlaceholder
)

func (s Source) String() string {
	switch s {
	case SourceSidecar:
		return "sidecar"
	case SourceEmbedded:
		return "embedded"
	default:
		return "placeholder"
	}
}

// Cover is image bytes ready for transport.
type Cover struct {
	Data     []byte
	MIMEType string
	Source   Source
}

// Resolver finds covers for tracks.
type Resolver struct {
	MaxDimension int
	Quality      int
	Sidecars     []string
	logger       *log.Logger
}

func NewResolver(cfg shared.CoverConfig, logger *log.Logger) *Resolver {
	return &Resolver{
		MaxDimension: cfg.MaxDimension,
		Quality:      cfg.Quality,
		Sidecars:     ServeSidecars,
		logger:       logger,
	}
}

// Resolve returns the cover for trackPath: a sidecar image first, then
// embedded artwork. Found images are transcoded; when transcoding fails the
// original bytes are returned. Fails with [shared.ErrCoverNotFound].
func (r *Resolver) Resolve(trackPath string) (Cover, error) {
	cover, err := r.Original(trackPath)
	if err != nil {
		return Cover{}, err
	}

	data, err := Transcode(cover.Data, r.MaxDimension, r.Quality)
	if err != nil {
		r.debug("serving original cover bytes", "path", trackPath, "source", cover.Source, "error", err)
		return cover, nil
	}
	return Cover{Data: data, MIMEType: "image/jpeg", Source: cover.Source}, nil
}

// Original is [Resolver.Resolve] without transcoding.
func (r *Resolver) Original(trackPath string) (Cover, error) {
	cover, found := r.lookup(trackPath)
	if !found {
		return Cover{}, fmt.Errorf("%w: %s", shared.ErrCoverNotFound, trackPath)
	}
	return cover, nil
}

// Serve resolves the cover for trackPath, substituting the placeholder when
// none is found. Fails with [shared.ErrSourceMissing] when the track itself
// does not exist.
func (r *Resolver) Serve(trackPath string) (Cover, error) {
	if _, err := os.Stat(trackPath); err != nil {
		return Cover{}, fmt.Errorf("%w: %s", shared.ErrSourceMissing, trackPath)
	}

	cover, err := r.Resolve(trackPath)
	if err != nil {
		return Placeholder(), nil
	}
	return cover, nil
}

// Placeholder returns the default cover.
func Placeholder() Cover {
	return Cover{Data: placeholder, MIMEType: PlaceholderMIME, Source: SourcePlaceholder}
}

func (r *Resolver) lookup(trackPath string) (Cover, bool) {
	sidecars := r.Sidecars
	if sidecars == nil {
		sidecars = ServeSidecars
	}

	if path, ok := FindSidecar(filepath.Dir(trackPath), sidecars); ok {
		data, err := os.ReadFile(path)
		if err == nil {
			return Cover{Data: data, MIMEType: SidecarMIME(path), Source: SourceSidecar}, true
		}
		r.debug("unreadable sidecar", "path", path, "error", err)
	}

	pic, st := tags.ExtractEmbeddedArtwork(trackPath)
	if st.OK() {
		return Cover{Data: pic.Data, MIMEType: pic.MIMEType, Source: SourceEmbedded}, true
	}
	if st.Reason != tags.Absent && st.Reason != tags.Unsupported {
		r.debug("embedded artwork unreadable", "path", trackPath, "status", st)
	}
	return Cover{}, false
}

func (r *Resolver) debug(msg string, kv ...any) {
	if r.logger != nil {
		r.logger.Debug(msg, kv...)
	}
}
