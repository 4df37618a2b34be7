package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/grasshide/LMS-Mixtape/internal/formatter"
	"github.com/grasshide/LMS-Mixtape/internal/mirror"
	"github.com/grasshide/LMS-Mixtape/internal/models"
	"github.com/grasshide/LMS-Mixtape/internal/shared"
	"github.com/urfave/cli/v3"
)

// Query selects songs and prints them in the requested format.
func (r *Runner) Query(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	opts, err := r.queryOptions(cmd)
	if err != nil {
		return err
	}

	songs, err := r.querySongs(ctx, opts)
	if err != nil {
		return err
	}
	songs = mirror.Annotate(songs, r.config.Export.SyncDir)

	r.logger.Info("songs selected", "count", len(songs), "order", opts.Order)

	if path := cmd.String("output"); path != "" {
		if err := formatter.WriteSongs(songs, format, path); err != nil {
			return err
		}
		return r.writePlain("✓ %d songs written to %s\n", len(songs), path)
	}

	data, err := formatter.Render(songs, format)
	if err != nil {
		return err
	}
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// queryOptions merges the query flags over the configured defaults.
func (r *Runner) queryOptions(cmd *cli.Command) (models.QueryOptions, error) {
	opts, err := r.config.Query.Options()
	if err != nil {
		return opts, err
	}

	if cmd.IsSet("rating") {
		opts.MinRating = cmd.Int("rating")
	}
	if cmd.IsSet("limit") {
		opts.Limit = cmd.Int("limit")
	}
	if cmd.IsSet("exclude-genre") {
		opts.ExcludeGenres = cmd.StringSlice("exclude-genre")
	}
	if cmd.IsSet("album-limit") {
		opts.AlbumLimit = cmd.Int("album-limit")
	}
	if cmd.IsSet("dyn-ps") {
		opts.MinDynPSVal = nil
		if v := cmd.Float("dyn-ps"); v != 0 {
			opts.MinDynPSVal = &v
		}
	}
	if cmd.IsSet("order") {
		order, err := models.ParseOrder(cmd.String("order"))
		if err != nil {
			return opts, fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
		}
		opts.Order = order
	}
	if s := cmd.String("added-before"); s != "" {
		ts, err := parseAddedBefore(s)
		if err != nil {
			return opts, err
		}
		opts.AddedBefore = &ts
	}

	if opts.MinRating < 0 || opts.MinRating > 100 {
		return opts, fmt.Errorf("%w: rating must be between 0 and 100, got %d", shared.ErrInvalidFlag, opts.MinRating)
	}
	return opts, nil
}

// parseAddedBefore accepts a date, an RFC 3339 timestamp or Unix seconds.
func parseAddedBefore(s string) (time.Time, error) {
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: added-before %q is not a date, timestamp or Unix time", shared.ErrInvalidFlag, s)
}
