/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"errors"
	"fmt"
	"image/png"
	"math/rand/v2"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sasha-s/go-deadlock"

	"github.com/Seednode/cursorgrid/client"
	"github.com/Seednode/cursorgrid/protocol"
	"github.com/Seednode/cursorgrid/render"
)

const botStep = 100 * time.Millisecond

var errNeverConnected = errors.New("could not connect")

// wanderer is a pointer that random-walks one tile at a time.
type wanderer struct {
	mu        deadlock.Mutex
	rng       *rand.Rand
	listeners map[int]func(render.PointerEvent)
	nextID    int

	placed   bool
	col, row int
}

func newWanderer(seed uint64) *wanderer {
	return &wanderer{
		rng:       rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		listeners: make(map[int]func(render.PointerEvent)),
	}
}

func (w *wanderer) SubscribePointer(fn func(render.PointerEvent)) func() {
	w.mu.Lock()
	defer w.mu.Unlock()

	id := w.nextID
	w.nextID++
	w.listeners[id] = fn

	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()

		delete(w.listeners, id)
	}
}

// step moves to a neighbouring tile, or stays put, and reports the new
// position at the tile's centre.
func (w *wanderer) step(grid protocol.Grid) {
	w.mu.Lock()
	if !w.placed {
		w.placed = true
		w.col, w.row = w.rng.IntN(grid.Cols), w.rng.IntN(grid.Rows)
	} else {
		w.col, w.row = grid.Clamp(w.col+w.rng.IntN(3)-1, w.row+w.rng.IntN(3)-1)
	}

	ts := float64(grid.TileSize)
	ev := render.PointerEvent{
		X: (float64(w.col) + 0.5) * ts,
		Y: (float64(w.row) + 0.5) * ts,
	}

	fns := make([]func(render.PointerEvent), 0, len(w.listeners))
	for _, fn := range w.listeners {
		fns = append(fns, fn)
	}
	w.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

func writePNG(path string, engine *render.Engine) error {
	view, ok := engine.View().(*render.RasterCanvas)
	if !ok {
		return errors.New("nothing has been rendered")
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := png.Encode(f, view.Image()); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}

func runBot(ctx context.Context, cfg *Config) error {
	if cfg.duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.duration)
		defer cancel()
	}
	ctx, stop := context.WithCancel(ctx)
	defer stop()

	seed := cfg.seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	logger := log.With().Str("bot", cfg.name).Uint64("seed", seed).Logger()

	var (
		mu     deadlock.Mutex
		online bool
	)

	queue := render.NewFrameQueue()
	app := client.NewApp(client.AppOptions{
		Adapter: client.Options{
			URL:    cfg.url,
			Name:   cfg.name,
			Logger: logger,
		},
		Render: render.Options{
			Backend:   render.Raster{},
			Scheduler: queue,
		},
		OnStatus: func(s client.Status) {
			mu.Lock()
			defer mu.Unlock()

			switch s {
			case client.StatusOnline:
				online = true
			case client.StatusOffline:
				stop()
			}
		},
	})
	defer app.Close()

	walker := newWanderer(seed)
	app.Engine().BindPointer(walker)

	frames := make(chan struct{})
	go func() {
		defer close(frames)
		queue.Run(ctx, 0)
	}()

	app.Start(ctx)
	logger.Info().Str("url", cfg.url).Msg("CLIENT: bot starting")

	ticker := time.NewTicker(botStep)
	defer ticker.Stop()

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case <-ticker.C:
			if engine := app.Engine(); engine.Active() {
				walker.step(engine.Grid())
			}
		}
	}

	<-frames

	mu.Lock()
	wasOnline := online
	mu.Unlock()

	if !wasOnline {
		return fmt.Errorf("bot: %w to %s", errNeverConnected, cfg.url)
	}

	engine := app.Engine()
	logger.Info().
		Int("frames", engine.Frames()).
		Int("cursors", len(engine.Cursors())).
		Msg("CLIENT: bot leaving")

	if cfg.png != "" {
		queue.Flush()
		if err := writePNG(cfg.png, engine); err != nil {
			return fmt.Errorf("bot: writing %s: %w", cfg.png, err)
		}
		logger.Info().Str("path", cfg.png).Msg("RENDER: frame written")
	}

	return nil
}
