package tasks

import (
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/grasshide/LMS-Mixtape/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	Prepare Phase = iota
	Copy
	Embed
	Archive
	Complete
)

func (p Phase) String() string {
	switch p {
	case Prepare:
		return "prepare"
	case Copy:
		return "copy"
	case Embed:
		return "embed"
	case Archive:
		return "archive"
	case Complete:
		return "complete"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func prepareUpdate(total int, dest models.Destination, path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Prepare,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Exporting %d songs to %s (%s)...", total, dest, path),
	}
}

func fileUpdate(phase Phase, step, total int, song models.Song) ProgressUpdate {
	verb := "Copying"
	if phase == Archive {
		verb = "Archiving"
	}
	return ProgressUpdate{
		Phase:   phase,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s %s", step, total, verb, filepath.Base(song.URL)),
		Data:    song,
	}
}

func skippedUpdate(phase Phase, step, total int, song models.Song) ProgressUpdate {
	return ProgressUpdate{
		Phase:   phase,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ⊘ %s (missing)", step, total, filepath.Base(song.URL)),
		Data:    song,
	}
}

func failedUpdate(phase Phase, step, total int, song models.Song, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   phase,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, filepath.Base(song.URL), err),
		Data:    song,
	}
}

func embedUpdate(step, total int, target string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Embed,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Embedding cover into %s", step, total, filepath.Base(target)),
	}
}

func completeUpdate(result *ExportResult) ProgressUpdate {
	return ProgressUpdate{
		Phase: Complete,
		Step:  len(result.Files),
		Total: result.Requested,
		Message: fmt.Sprintf("✓ %d files (%s) → %s",
			len(result.Files), humanize.Bytes(uint64(result.Bytes)), result.Path),
		Data: result,
	}
}
