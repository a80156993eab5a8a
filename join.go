/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/Seednode/cursorgrid/client"
	"github.com/Seednode/cursorgrid/desktop"
	"github.com/Seednode/cursorgrid/render"
)

func runJoin(ctx context.Context, cfg *Config) error {
	queue := render.NewFrameQueue()

	app := client.NewApp(client.AppOptions{
		Adapter: client.Options{
			URL:    cfg.url,
			Name:   cfg.name,
			Logger: log.With().Str("name", cfg.name).Logger(),
		},
		Render: render.Options{
			Backend:   desktop.Backend{},
			Scheduler: queue,
		},
	})
	defer app.Close()

	shell := desktop.NewShell(app, queue, "cursorgrid")

	app.Start(ctx)

	return desktop.Run(ctx, shell)
}
