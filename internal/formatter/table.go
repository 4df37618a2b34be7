package formatter

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/grasshide/LMS-Mixtape/internal/models"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	syncedStyle = cellStyle.Foreground(lipgloss.Color("#04B575"))
)

// SongsToTable renders songs as a bordered terminal table. Rows already
// present in the sync mirror are highlighted.
func SongsToTable(songs []models.Song) string {
	rows := make([][]string, len(songs))
	for i, s := range songs {
		synced := ""
		if s.ExistsInSync {
			synced = "✓"
		}
		rows[i] = []string{
			strconv.Itoa(i + 1),
			truncate(s.Artist, 28),
			truncate(s.Title, 36),
			truncate(s.Album, 28),
			truncate(s.Genre, 16),
			ratingStars(s.Rating),
			formatLastPlayed(s),
			synced,
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("#", "Artist", "Title", "Album", "Genre", "Rating", "Last Played", "Sync").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row >= 0 && row < len(songs) && songs[row].ExistsInSync:
				return syncedStyle
			default:
				return cellStyle
			}
		})

	return t.String() + fmt.Sprintf("\n%d songs", len(songs))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
