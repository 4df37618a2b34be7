// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// queryFlags are the selection filters shared by query, export and tui.
// Unset flags fall back to the [query] section of the config.
func queryFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:    "rating",
			Aliases: []string{"r"},
			Usage:   "Minimum rating (0-100)",
		},
		&cli.IntFlag{
			Name:    "limit",
			Aliases: []string{"n"},
			Usage:   "Maximum number of songs",
		},
		&cli.StringSliceFlag{
			Name:    "exclude-genre",
			Aliases: []string{"x"},
			Usage:   "Genre to exclude (repeatable)",
		},
		&cli.FloatFlag{
			Name:  "dyn-ps",
			Usage: "Minimum dynamic play score (0 disables)",
		},
		&cli.IntFlag{
			Name:  "album-limit",
			Usage: "Maximum songs per album (0 disables)",
		},
		&cli.StringFlag{
			Name:    "order",
			Aliases: []string{"o"},
			Usage:   "Ordering: added, last_played or random",
		},
		&cli.StringFlag{
			Name:  "added-before",
			Usage: "Only tracks scanned before this date (YYYY-MM-DD, RFC 3339 or Unix seconds)",
		},
	}
}

// setupCommand handles setup operations for configuration and sandbox libraries.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write an example config.toml",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Where to write the file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:  "sandbox",
				Usage: "Create a library database from a folder of audio files",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "music",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "dir",
						Usage: "Library directory to create (defaults to library.dir)",
					},
					&cli.BoolFlag{
						Name:  "dyn-ps",
						Usage: "Create the dynamic play score table",
						Value: true,
					},
					&cli.Int64Flag{
						Name:  "seed",
						Usage: "Seed for generated ratings and play history",
						Value: 1,
					},
				},
				Action: r.SetupSandbox,
			},
		},
	}
}

// queryCommand selects songs and prints them
func queryCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "query",
		Aliases: []string{"q"},
		Usage:   "Select songs from the library",
		Flags: append(queryFlags(),
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: table, json, csv, txt or md",
				Value:   "table",
			},
			&cli.StringFlag{
				Name:  "output",
				Usage: "Write the selection to a file instead of stdout",
			},
		),
		Action: r.Query,
	}
}

// exportCommand exports a selection to a folder, archive or the sync mirror
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export songs to a folder, zip archive or the sync folder",
		Flags: append(queryFlags(),
			&cli.StringFlag{
				Name:    "input",
				Aliases: []string{"i"},
				Usage:   "Export songs from a JSON file written by 'query --format json'",
			},
			&cli.StringFlag{
				Name:  "to",
				Usage: "Destination: folder, zip or sync (defaults to export.format)",
			},
			&cli.BoolFlag{
				Name:  "embed-covers",
				Usage: "Embed cover.jpg/cover.png into files without artwork",
			},
			&cli.BoolFlag{
				Name:  "rename",
				Usage: "Rename files to 'Artist - Title'",
			},
			&cli.BoolFlag{
				Name:  "skip-synced",
				Usage: "Leave out songs already present in the sync folder",
			},
			&cli.StringFlag{
				Name:  "manifest",
				Usage: "Write a JSON manifest of the batch to this path",
			},
		),
		Action: r.Export,
	}
}

// coverCommand resolves artwork for a single track
func coverCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cover",
		Usage: "Extract the cover image for a track",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "path",
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file path (- for stdout)",
			},
			&cli.BoolFlag{
				Name:  "raw",
				Usage: "Write the original image without resizing",
			},
		},
		Action: r.Cover,
	}
}

// serveCommand runs the HTTP API
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the JSON API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (defaults to server.host)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Listen port (defaults to server.port)",
			},
		},
		Action: r.Serve,
	}
}

// tuiCommand returns the top-level TUI command for interactive song selection.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for song selection and export",
		Flags:   queryFlags(),
		Action:  r.TUI,
	}
}
