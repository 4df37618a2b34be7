package main

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/grasshide/LMS-Mixtape/internal/formatter"
	"github.com/grasshide/LMS-Mixtape/internal/mirror"
	"github.com/grasshide/LMS-Mixtape/internal/models"
	"github.com/grasshide/LMS-Mixtape/internal/shared"
	"github.com/grasshide/LMS-Mixtape/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Export selects songs (or reads them from --input) and exports them.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	req, err := r.exportRequest(cmd)
	if err != nil {
		return err
	}

	songs, err := r.exportSongs(ctx, cmd)
	if err != nil {
		return err
	}

	if cmd.Bool("skip-synced") {
		synced := mirror.New(r.config.Export.SyncDir)
		if !synced.Available() {
			r.logger.Warn("sync folder not available, nothing skipped", "dir", r.config.Export.SyncDir)
		}
		before := len(songs)
		songs = synced.Missing(songs)
		r.logger.Info("skipping synced songs", "skipped", before-len(songs))
	}
	if len(songs) == 0 {
		return shared.ErrNoSongs
	}
	req.Songs = songs

	r.logger.Info("starting export", "songs", len(songs), "destination", req.Destination)
	r.writePlain("Exporting %d songs to %s...\n\n", len(songs), req.Destination)

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.Prepare:
				r.writePlain("📁 %s\n", update.Message)
			case tasks.Copy, tasks.Archive:
				r.writePlain("   [%d/%d] %s\n", update.Step, update.Total, update.Message)
			case tasks.Embed:
				r.writePlain("   🖼  %s\n", update.Message)
			}
		}
	}()

	result, err := r.engine.Export(progressCh, req)
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Export Complete!")
	r.writePlain("Batch: %s\n", result.BatchID)
	r.writePlain("Destination: %s\n", result.Path)
	r.writePlain("Files: %d/%d (%s)\n", len(result.Files), result.Requested, humanize.Bytes(uint64(result.Bytes)))
	r.writePlain("Covers embedded: %d\n", result.Covers)

	if len(result.Skipped) > 0 {
		r.writePlain("\nSkipped %d missing files:\n", len(result.Skipped))
		for _, f := range result.Skipped {
			r.writePlain("  - %s\n", f.Source)
		}
	}
	if len(result.Failed) > 0 {
		r.writePlain("\nFailed %d files:\n", len(result.Failed))
		for _, f := range result.Failed {
			r.writePlain("  - %s: %v\n", f.Source, f.Error)
		}
	}

	if path := cmd.String("manifest"); path != "" {
		written, err := formatter.WriteExportManifest(result, path)
		if err != nil {
			return err
		}
		r.writePlain("\nManifest: %s\n", written)
	}

	return nil
}

// exportRequest builds the request flags over the [export] config defaults.
func (r *Runner) exportRequest(cmd *cli.Command) (models.ExportRequest, error) {
	to := r.config.Export.Format
	if cmd.IsSet("to") {
		to = cmd.String("to")
	}
	dest, err := models.ParseDestination(to)
	if err != nil {
		return models.ExportRequest{}, fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
	}

	req := models.ExportRequest{
		Destination: dest,
		EmbedCovers: r.config.Export.EmbedCovers,
		RenameFiles: r.config.Export.RenameFiles,
		Identity:    r.config.Export.Identity(),
	}
	if cmd.IsSet("embed-covers") {
		req.EmbedCovers = cmd.Bool("embed-covers")
	}
	if cmd.IsSet("rename") {
		req.RenameFiles = cmd.Bool("rename")
	}
	return req, nil
}

func (r *Runner) exportSongs(ctx context.Context, cmd *cli.Command) ([]models.Song, error) {
	if path := cmd.String("input"); path != "" {
		songs, err := formatter.ReadSongs(path)
		if err != nil {
			return nil, err
		}
		r.logger.Info("songs loaded", "path", path, "count", len(songs))
		return songs, nil
	}

	opts, err := r.queryOptions(cmd)
	if err != nil {
		return nil, err
	}
	return r.querySongs(ctx, opts)
}
