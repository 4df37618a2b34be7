package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/grasshide/LMS-Mixtape/internal/shared"
	"github.com/grasshide/LMS-Mixtape/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for song selection and export.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	opts, err := r.queryOptions(cmd)
	if err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	logPath := r.config.Log.File
	if logPath == "" {
		logPath = "./tmp/mixtape-tui.log"
	}
	fileLogger, err := shared.NewFileLogger(logPath)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	model := ui.NewModel(ctx, ui.ModelOpts{
		Query:       r.querySongs,
		Options:     opts,
		Exporter:    r.engine,
		SyncDir:     r.config.Export.SyncDir,
		Identity:    r.config.Export.Identity(),
		EmbedCovers: r.config.Export.EmbedCovers,
		RenameFiles: r.config.Export.RenameFiles,
		Logger:      fileLogger,
	})
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
