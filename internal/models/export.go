package models

import (
	"fmt"
	"strings"
)

// Destination is where an export batch is materialized.
type Destination int

const (
	// DestinationFolder copies into a fresh timestamped folder.
	DestinationFolder Destination = iota
	// DestinationArchive writes a fresh timestamped zip archive.
	DestinationArchive
	// DestinationSync copies into the long-lived mirror directory.
	DestinationSync
)

func (d Destination) String() string {
	switch d {
	case DestinationArchive:
		return "zip"
	case DestinationSync:
		return "sync"
	default:
		return "folder"
	}
}

// ParseDestination accepts "folder", "zip" (or "archive") and "sync".
func ParseDestination(s string) (Destination, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "folder":
		return DestinationFolder, nil
	case "zip", "archive":
		return DestinationArchive, nil
	case "sync", "mirror":
		return DestinationSync, nil
	default:
		return DestinationFolder, fmt.Errorf("unknown export destination %q", s)
	}
}

// Identity is the owner and group applied to exported files and folders.
type Identity struct {
	UID int
	GID int
}

// ExportRequest describes one export batch.
type ExportRequest struct {
	Songs       []Song
	Destination Destination
	EmbedCovers bool
	RenameFiles bool
	Identity    *Identity // nil skips ownership normalization
}
