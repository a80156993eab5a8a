package main

import (
	"context"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Seednode/cursorgrid/protocol"
	"github.com/Seednode/cursorgrid/render"
)

func TestWandererStaysOnBoard(t *testing.T) {
	grid := protocol.Grid{TileSize: 10, Cols: 3, Rows: 2}

	var a, b []render.PointerEvent
	wa, wb := newWanderer(42), newWanderer(42)
	unsubscribe := wa.SubscribePointer(func(ev render.PointerEvent) { a = append(a, ev) })
	wb.SubscribePointer(func(ev render.PointerEvent) { b = append(b, ev) })

	for i := 0; i < 200; i++ {
		wa.step(grid)
		wb.step(grid)
	}

	require.Len(t, a, 200)
	assert.Equal(t, a, b, "same seed, same walk")

	for i, ev := range a {
		col, row := int(ev.X)/grid.TileSize, int(ev.Y)/grid.TileSize
		require.True(t, grid.Contains(col, row), "step %d left the board: %+v", i, ev)

		if i > 0 {
			prev := a[i-1]
			assert.LessOrEqual(t, abs(int(ev.X-prev.X)), grid.TileSize)
			assert.LessOrEqual(t, abs(int(ev.Y-prev.Y)), grid.TileSize)
		}
	}

	unsubscribe()
	wa.step(grid)
	assert.Len(t, a, 200)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func TestBotRendersFrame(t *testing.T) {
	cfg := testConfig()
	cfg.cols, cfg.rows, cfg.tileSize = 8, 6, 16
	hub, server := startTestServer(t, cfg)

	out := filepath.Join(t.TempDir(), "frame.png")
	cfg.url = "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	cfg.name = "robo"
	cfg.duration = 600 * time.Millisecond
	cfg.png = out
	cfg.seed = 7

	require.NoError(t, runBot(context.Background(), cfg))

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()

	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 8*16, img.Bounds().Dx())
	assert.Equal(t, 6*16, img.Bounds().Dy())

	// the bot has left again
	require.Eventually(t, func() bool {
		snap, err := hub.Snapshot(context.Background())
		return err == nil && snap.Count == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestBotWithoutServer(t *testing.T) {
	cfg := testConfig()
	cfg.url = "ws://127.0.0.1:1/ws"
	cfg.duration = 2 * time.Second

	err := runBot(context.Background(), cfg)
	assert.ErrorIs(t, err, errNeverConnected)
}
