package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/grasshide/LMS-Mixtape/internal/artwork"
	"github.com/grasshide/LMS-Mixtape/internal/server"
	"github.com/grasshide/LMS-Mixtape/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve runs the JSON API until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if file := r.config.Log.File; file != "" {
		fileLogger, err := shared.NewFileLogger(file)
		if err != nil {
			return fmt.Errorf("failed to create file logger: %w", err)
		}
		shared.SetLogLevel(fileLogger, shared.ParseLogLevel(r.config.Log.Level))
		r.SetLogger(fileLogger)
	}

	api, err := r.newAPI()
	if err != nil {
		return err
	}

	host, port := r.config.Server.Host, r.config.Server.Port
	if cmd.IsSet("host") {
		host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		port = cmd.Int("port")
	}
	addr := net.JoinHostPort(host, strconv.Itoa(port))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	r.writePlain("Serving on http://%s\n", addr)
	return server.New(addr, api, r.logger).Run(ctx)
}

func (r *Runner) newAPI() (*server.API, error) {
	defaults, err := r.config.Query.Options()
	if err != nil {
		return nil, err
	}

	return server.NewAPI(server.APIOpts{
		Query:      r.querySongs,
		Exporter:   r.engine,
		Covers:     artwork.NewResolver(r.config.Cover, r.logger),
		ExportRoot: r.config.Export.Root,
		SyncDir:    r.config.Export.SyncDir,
		Defaults:   defaults,
		Identity:   r.config.Export.Identity(),
		CoverLimit: server.RateLimit(r.config.Server.CoverRateLimit, r.config.Server.CoverBurst),
		Logger:     r.logger,
	}), nil
}
