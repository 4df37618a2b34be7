package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/grasshide/LMS-Mixtape/internal/models"
)

var (
	_ list.Item = songItem{}
)

// songItem wraps [models.Song] to implement [list.Item].
type songItem struct {
	song     models.Song
	selected bool
}

func (i songItem) FilterValue() string { return i.song.Artist + " " + i.song.Title }

func (i songItem) Title() string {
	mark := "[ ]"
	if i.selected {
		mark = styles.ok.Render("[x]")
	}
	return fmt.Sprintf("%s %s - %s", mark, i.song.Artist, i.song.Title)
}

func (i songItem) Description() string {
	parts := []string{}
	if i.song.Album != "" {
		parts = append(parts, i.song.Album)
	}
	if i.song.Genre != "" {
		parts = append(parts, i.song.Genre)
	}
	parts = append(parts, fmt.Sprintf("rating %d", i.song.Rating))
	if i.song.ExistsInSync {
		parts = append(parts, styles.warn.Render("synced"))
	}
	return "    " + strings.Join(parts, " • ")
}

// destinations offered by the export view, in display order.
var destinations = []models.Destination{
	models.DestinationFolder,
	models.DestinationArchive,
	models.DestinationSync,
}

func destinationLabel(d models.Destination) string {
	switch d {
	case models.DestinationArchive:
		return "Zip archive"
	case models.DestinationSync:
		return "Sync folder"
	default:
		return "New folder"
	}
}
