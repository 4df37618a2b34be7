package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/grasshide/LMS-Mixtape/internal/artwork"
	"github.com/grasshide/LMS-Mixtape/internal/shared"
	"github.com/urfave/cli/v3"
)

// Cover writes the cover image for a track to a file or stdout.
func (r *Runner) Cover(ctx context.Context, cmd *cli.Command) error {
	track := cmd.StringArg("path")
	if track == "" {
		return fmt.Errorf("%w: track path", shared.ErrMissingArgument)
	}
	if _, err := os.Stat(track); err != nil {
		return fmt.Errorf("%w: %s", shared.ErrSourceMissing, track)
	}

	resolver := artwork.NewResolver(r.config.Cover, r.logger)

	var cover artwork.Cover
	var err error
	if cmd.Bool("raw") {
		cover, err = resolver.Original(track)
	} else {
		cover, err = resolver.Resolve(track)
	}
	if err != nil {
		return err
	}

	output := cmd.String("output")
	if output == "-" {
		_, err := r.output.Write(cover.Data)
		return err
	}
	if output == "" {
		output = strings.TrimSuffix(filepath.Base(track), filepath.Ext(track)) + extensionFor(cover.MIMEType)
	}

	if err := os.WriteFile(output, cover.Data, 0644); err != nil {
		return fmt.Errorf("failed to write cover: %w", err)
	}

	r.logger.Info("cover written", "path", output, "source", cover.Source)
	return r.writePlain("✓ %s cover (%s, %s) written to %s\n", cover.Source, cover.MIMEType, humanize.Bytes(uint64(len(cover.Data))), output)
}

func extensionFor(mime string) string {
	switch mime {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case artwork.PlaceholderMIME:
		return ".svg"
	default:
		return ".jpg"
	}
}
