package main

import (
	"context"
	"fmt"
	"io/fs"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/grasshide/LMS-Mixtape/internal/shared"
	"github.com/grasshide/LMS-Mixtape/internal/tags"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes the example configuration.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("output")
	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", path)
	r.writePlain("✓ Configuration written to %s\n", path)
	r.writePlainln("Next steps:")
	r.writePlain("1. Set library.dir to the directory holding prefs/persist.db and cache/library.db\n")
	r.writePlain("2. Run 'mixtape query' to check the selection\n")
	return nil
}

// SetupSandbox builds a library database from the audio files under a folder,
// with generated ratings and play history, for trying the tool without a
// media server.
func (r *Runner) SetupSandbox(ctx context.Context, cmd *cli.Command) error {
	music := cmd.StringArg("music")
	if music == "" {
		return fmt.Errorf("%w: music folder", shared.ErrMissingArgument)
	}
	dir := cmd.String("dir")
	if dir == "" {
		dir = r.config.Library.Dir
	}

	seed := uint64(cmd.Int64("seed"))
	count, err := seedSandbox(dir, music, cmd.Bool("dyn-ps"), rand.New(rand.NewPCG(seed, seed)), time.Now())
	if err != nil {
		return err
	}

	r.logger.Info("sandbox library created", "dir", dir, "tracks", count)
	r.writePlain("✓ Sandbox library with %d tracks created in %s\n", count, dir)
	return nil
}

// seedSandbox creates a library under dir holding one track per audio file
// found under music. Tags supply artist, title, album and genre; the parent
// folder stands in for a missing album. Ratings, added and played times are
// drawn from rng relative to now.
func seedSandbox(dir, music string, dynPS bool, rng *rand.Rand, now time.Time) (int, error) {
	persist, _ := shared.LibraryPaths(dir)
	if _, err := os.Stat(persist); err == nil {
		return 0, fmt.Errorf("%w: library already exists at %s", shared.ErrInvalidArgument, dir)
	}

	files, err := audioFiles(music)
	if err != nil {
		return 0, err
	}
	if len(files) == 0 {
		return 0, fmt.Errorf("%w: no mp3 or flac files under %s", shared.ErrInvalidArgument, music)
	}

	db, err := shared.CreateLibrary(dir)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	if err := shared.RunMigrations(db); err != nil {
		return 0, fmt.Errorf("failed to run migrations: %w", err)
	}
	if !dynPS {
		if err := shared.RollbackMigration(db); err != nil {
			return 0, fmt.Errorf("failed to drop play score table: %w", err)
		}
	}

	sandbox := shared.NewSandbox(db)
	year := int64(365 * 24 * time.Hour / time.Second)

	for _, path := range files {
		info, _ := tags.ReadInfo(path)
		track := shared.SandboxTrack{
			Path:      path,
			Title:     fallback(info.Title, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))),
			Artist:    fallback(info.Artist, "Unknown Artist"),
			Album:     fallback(info.Album, filepath.Base(filepath.Dir(path))),
			Added:     now.Unix() - rng.Int64N(year),
			Timestamp: now.Unix() - rng.Int64N(year),
		}
		if info.Genre != "" {
			track.Genres = []string{info.Genre}
		}

		rating := rng.IntN(6) * 20
		track.Rating = &rating
		if rng.IntN(4) > 0 {
			track.Played = now.Unix() - rng.Int64N(year/4)
		}
		if dynPS {
			v := rng.Float64() * 100
			track.DynPSVal = &v
		}

		if _, err := sandbox.Add(track); err != nil {
			return 0, err
		}
	}

	return len(files), nil
}

// audioFiles lists supported audio files under root in lexical order.
func audioFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && tags.FormatOf(path) != tags.FormatUnsupported {
			abs, err := filepath.Abs(path)
			if err != nil {
				return err
			}
			files = append(files, abs)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}
	return files, nil
}

func fallback(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
