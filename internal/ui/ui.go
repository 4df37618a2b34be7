package ui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/grasshide/LMS-Mixtape/internal/mirror"
	"github.com/grasshide/LMS-Mixtape/internal/models"
	"github.com/grasshide/LMS-Mixtape/internal/tasks"
)

var _ Painter = (*Palette)(nil)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	SongListView ViewState = iota
	DestinationView
	ExportView
	ResultView
)

// Selector runs a song selection.
type Selector func(ctx context.Context, opts models.QueryOptions) ([]models.Song, error)

// Exporter materializes an export batch.
type Exporter interface {
	Export(progress chan<- tasks.ProgressUpdate, req models.ExportRequest) (*tasks.ExportResult, error)
}

// ModelOpts configures a [Model].
type ModelOpts struct {
	Query       Selector
	Options     models.QueryOptions
	Exporter    Exporter
	SyncDir     string
	Identity    *models.Identity
	EmbedCovers bool
	RenameFiles bool
	Logger      *log.Logger
}

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	view     ViewState
	opts     ModelOpts
	logger   *log.Logger
	width    int
	height   int
	songList list.Model
	songs    []models.Song
	selected map[int]bool
	cursor   int // destination cursor
	embed    bool
	rename   bool

	progressChan chan tasks.ProgressUpdate
	doneChan     chan exportDone
	progress     tasks.ProgressUpdate
	result       *tasks.ExportResult
	err          error

	spinner spinner.Model
	help    help.Model
	keys    keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts ModelOpts) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Model{
		ctx:      ctx,
		view:     SongListView,
		opts:     opts,
		logger:   logger,
		selected: map[int]bool{},
		embed:    opts.EmbedCovers,
		rename:   opts.RenameFiles,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// Init runs the configured selection.
func (m *Model) Init() tea.Cmd {
	return m.fetchSongs()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.songs != nil {
			m.songList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case SongListView:
			return m.handleSongListKeys(msg)
		case DestinationView:
			return m.handleDestinationKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		case ExportView:
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			return m, nil
		}

	case Msg:
		return m.handleMsg(msg)

	case spinner.TickMsg:
		if m.view != ExportView {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.view == SongListView && m.songs != nil {
		var cmd tea.Cmd
		m.songList, cmd = m.songList.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgSongsFetched:
		data := msg.data.(songsFetched)
		if data.err != nil {
			m.logger.Error("query failed", "error", data.err)
			m.err = data.err
			return m, nil
		}
		m.setSongs(data.songs)
		return m, nil

	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, m.waitForProgress()

	case MsgExportComplete:
		data := msg.data.(exportDone)
		m.result = data.result
		m.err = data.err
		m.progressChan = nil
		m.doneChan = nil
		m.view = ResultView
		if data.err != nil {
			m.logger.Error("export failed", "error", data.err)
		} else {
			m.logger.Info("export finished", "summary", data.result.Summary())
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) setSongs(songs []models.Song) {
	m.songs = mirror.Annotate(songs, m.opts.SyncDir)
	m.selected = map[int]bool{}

	items := make([]list.Item, len(m.songs))
	for i, song := range m.songs {
		items[i] = songItem{song: song}
	}
	m.songList = list.New(items, list.NewDefaultDelegate(), 0, 0)
	m.songList.Title = fmt.Sprintf("%d songs", len(m.songs))
	m.songList.SetFilteringEnabled(false)
	m.songList.SetShowHelp(false)
	m.songList.SetSize(m.width-4, m.height-8)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case SongListView:
		return m.renderSongList()
	case DestinationView:
		return m.renderDestination()
	case ExportView:
		return m.renderExport()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleSongListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case m.err != nil, m.songs == nil:
		return m, nil
	case key.Matches(msg, m.keys.toggle):
		m.toggle(m.songList.Index())
		return m, nil
	case key.Matches(msg, m.keys.all):
		for i := range m.songs {
			m.setSelected(i, true)
		}
		return m, nil
	case key.Matches(msg, m.keys.clear):
		for i := range m.songs {
			m.setSelected(i, false)
		}
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if len(m.Selected()) > 0 {
			m.view = DestinationView
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.songList, cmd = m.songList.Update(msg)
	return m, cmd
}

func (m *Model) handleDestinationKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		return m, tea.Quit
	case key.Matches(msg, m.keys.back), msg.String() == "q":
		m.view = SongListView
	case key.Matches(msg, m.keys.up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.down):
		if m.cursor < len(destinations)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.covers):
		m.embed = !m.embed
	case key.Matches(msg, m.keys.rename):
		m.rename = !m.rename
	case key.Matches(msg, m.keys.enter):
		m.view = ExportView
		return m, tea.Batch(m.startExport(), m.spinner.Tick)
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.restart):
		m.view = SongListView
		m.songs = nil
		m.result = nil
		m.err = nil
		m.progress = tasks.ProgressUpdate{}
		return m, m.fetchSongs()
	}
	return m, nil
}

func (m *Model) toggle(i int) {
	m.setSelected(i, !m.selected[i])
}

func (m *Model) setSelected(i int, on bool) {
	if i < 0 || i >= len(m.songs) {
		return
	}
	if on {
		m.selected[i] = true
	} else {
		delete(m.selected, i)
	}
	m.songList.SetItem(i, songItem{song: m.songs[i], selected: on})
}

// Selected returns the selected songs in list order.
func (m *Model) Selected() []models.Song {
	var out []models.Song
	for i, song := range m.songs {
		if m.selected[i] {
			out = append(out, song)
		}
	}
	return out
}

// Request builds the export request from the current selection and options.
func (m *Model) Request() models.ExportRequest {
	return models.ExportRequest{
		Songs:       m.Selected(),
		Destination: destinations[m.cursor],
		EmbedCovers: m.embed,
		RenameFiles: m.rename,
		Identity:    m.opts.Identity,
	}
}

func (m *Model) fetchSongs() tea.Cmd {
	return func() tea.Msg {
		songs, err := m.opts.Query(m.ctx, m.opts.Options)
		return songsFetchedMsg(songs, err)
	}
}

func (m *Model) startExport() tea.Cmd {
	req := m.Request()
	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan exportDone, 1)
	m.progressChan = progress
	m.doneChan = done

	go func() {
		result, err := m.opts.Exporter.Export(progress, req)
		close(progress)
		done <- exportDone{result, err}
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progress, done := m.progressChan, m.doneChan
	return func() tea.Msg {
		if progress == nil {
			return exportCompleteMsg(nil, fmt.Errorf("no export running"))
		}

		update, ok := <-progress
		if !ok {
			d := <-done
			return exportCompleteMsg(d.result, d.err)
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderSongList() string {
	if m.songs == nil {
		return fmt.Sprintf("%s Loading songs...", m.spinner.View())
	}
	title := fmt.Sprintf("%d/%d selected", len(m.selected), len(m.songs))
	helpKeys := []key.Binding{m.keys.toggle, m.keys.all, m.keys.clear, m.keys.enter, m.keys.quit}
	return fmt.Sprintf("%s\n%s\n\n%s", styles.title.Render(title), m.songList.View(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderDestination() string {
	var b strings.Builder
	b.WriteString(styles.title.Render(fmt.Sprintf("Export %d songs", len(m.selected))))
	b.WriteString("\n")

	for i, d := range destinations {
		line := "  " + destinationLabel(d)
		if d == models.DestinationSync && m.opts.SyncDir == "" {
			line += styles.help.Render(" (not configured)")
		}
		if i == m.cursor {
			line = styles.cursor.Render("> " + destinationLabel(d))
		}
		b.WriteString(line + "\n")
	}

	fmt.Fprintf(&b, "\n%s embed covers\n%s rename files\n", checkbox(m.embed), checkbox(m.rename))

	helpKeys := []key.Binding{m.keys.up, m.keys.down, m.keys.covers, m.keys.rename, m.keys.enter, m.keys.back}
	b.WriteString("\n" + m.help.ShortHelpView(helpKeys))
	return b.String()
}

func (m *Model) renderExport() string {
	title := styles.title.Render("Exporting")

	var phase string
	switch m.progress.Phase {
	case tasks.Prepare:
		phase = "Preparing destination..."
	case tasks.Copy:
		phase = fmt.Sprintf("Copying files (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.Embed:
		phase = fmt.Sprintf("Embedding covers (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.Archive:
		phase = fmt.Sprintf("Archiving (%d/%d)", m.progress.Step, m.progress.Total)
	default:
		phase = "Finishing..."
	}

	return fmt.Sprintf("%s\n\n%s %s\n%s", title, m.spinner.View(), phase, styles.help.Render(m.progress.Message))
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.restart, m.keys.quit})

	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Export failed: %v", m.err)) + "\n\n" + helpView
	}
	if m.result == nil {
		return styles.err.Render("No result available") + "\n\n" + helpView
	}

	r := m.result
	title := styles.ok.Render("✓ Export Complete!")
	info := fmt.Sprintf(
		"\nDestination: %s\nFiles: %d/%d (%s)\nCovers embedded: %d",
		r.Path, len(r.Files), r.Requested, humanize.Bytes(uint64(r.Bytes)), r.Covers,
	)

	var issues string
	if len(r.Skipped) > 0 {
		issues += "\n\n" + styles.warn.Render(fmt.Sprintf("Skipped %d missing files:", len(r.Skipped)))
		for _, f := range r.Skipped {
			issues += "\n  • " + f.Source
		}
	}
	if len(r.Failed) > 0 {
		issues += "\n\n" + styles.err.Render(fmt.Sprintf("Failed %d files:", len(r.Failed)))
		for _, f := range r.Failed {
			issues += fmt.Sprintf("\n  • %s: %v", f.Source, f.Error)
		}
	}

	return fmt.Sprintf("%s\n%s%s\n\n%s", title, info, issues, helpView)
}

func checkbox(on bool) string {
	if on {
		return styles.ok.Render("[x]")
	}
	return "[ ]"
}
