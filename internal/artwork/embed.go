package artwork

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/grasshide/LMS-Mixtape/internal/shared"
	"github.com/grasshide/LMS-Mixtape/internal/tags"
)

// EmbedOutcome describes what EmbedCoverIfAbsent did.
type EmbedOutcome int

const (
	Embedded       EmbedOutcome = iota // sidecar written into the target
	AlreadyPresent                     // target already had artwork
	NoSidecar                          // no cover file beside the source
	EmbedFailed                        // sidecar found but could not be written
	NotApplicable                      // container has no artwork support
)

func (o EmbedOutcome) String() string {
	switch o {
	case Embedded:
		return "embedded"
	case AlreadyPresent:
		return "already_present"
	case NoSidecar:
		return "no_sidecar"
	case NotApplicable:
		return "not_applicable"
	default:
		return "failed"
	}
}

// Embedder writes sidecar covers into exported files.
type Embedder struct {
	Sidecars []string
	logger   *log.Logger
}

func NewEmbedder(logger *log.Logger) *Embedder {
	return &Embedder{Sidecars: EmbedSidecars, logger: logger}
}

// EmbedCoverIfAbsent embeds the sidecar cover beside sourcePath into
// targetPath unless the target already carries artwork. Failures are logged
// and reported through the outcome; the error wraps [shared.ErrEmbed].
func (e *Embedder) EmbedCoverIfAbsent(sourcePath, targetPath string) (EmbedOutcome, error) {
	if tags.FormatOf(targetPath) == tags.FormatUnsupported {
		return NotApplicable, nil
	}
	if tags.HasEmbeddedArtwork(targetPath) {
		return AlreadyPresent, nil
	}

	sidecars := e.Sidecars
	if sidecars == nil {
		sidecars = EmbedSidecars
	}
	cover, ok := FindSidecar(filepath.Dir(sourcePath), sidecars)
	if !ok {
		return NoSidecar, nil
	}

	data, err := os.ReadFile(cover)
	if err != nil {
		return e.fail(targetPath, fmt.Errorf("%w: %v", shared.ErrEmbed, err))
	}

	st := tags.EmbedArtwork(targetPath, tags.Picture{Data: data, MIMEType: SidecarMIME(cover)})
	if !st.OK() {
		return e.fail(targetPath, fmt.Errorf("%w: %s", shared.ErrEmbed, st))
	}

	if e.logger != nil {
		e.logger.Debug("embedded cover", "target", targetPath, "cover", cover)
	}
	return Embedded, nil
}

func (e *Embedder) fail(target string, err error) (EmbedOutcome, error) {
	if e.logger != nil {
		e.logger.Warn("cover embedding failed", "target", target, "error", err)
	}
	return EmbedFailed, err
}
