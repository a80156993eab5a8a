package render

import (
	"context"
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTileSeed(t *testing.T) {
	assert.Equal(t, TerrainSalt, TileSeed(0, 0, TerrainSalt))
	assert.Equal(t, TileSeed(7, 3, TerrainSalt), TileSeed(7, 3, TerrainSalt))
	assert.NotEqual(t, TileSeed(7, 3, TerrainSalt), TileSeed(3, 7, TerrainSalt))
	assert.NotEqual(t, TileSeed(7, 3, TerrainSalt), TileSeed(7, 3, 0))
}

func TestMulberry32IsReproducible(t *testing.T) {
	a, b := NewMulberry32(42), NewMulberry32(42)
	other := NewMulberry32(43)

	same := true
	for i := 0; i < 100; i++ {
		x := a.Uint32()
		require.Equal(t, x, b.Uint32())
		if x != other.Uint32() {
			same = false
		}

		f := a.Float64()
		b.Float64()
		other.Float64()
		require.GreaterOrEqual(t, f, 0.0)
		require.Less(t, f, 1.0)
	}
	assert.False(t, same)
}

func TestTileStyleIgnoresDrawOrder(t *testing.T) {
	const cols, rows = 12, 9

	forward := map[[2]int]tileStyle{}
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			forward[[2]int{col, row}] = tileStyleAt(col, row, 32)
		}
	}

	for row := rows - 1; row >= 0; row-- {
		for col := cols - 1; col >= 0; col-- {
			require.Equal(t, forward[[2]int{col, row}], tileStyleAt(col, row, 32))
		}
	}

	style := tileStyleAt(4, 4, 32)
	assert.GreaterOrEqual(t, len(style.Speckles), 4)
	assert.LessOrEqual(t, len(style.Speckles), 8)
	assert.Equal(t, uint8(0xff), style.Base.A)
	for _, s := range style.Speckles {
		assert.GreaterOrEqual(t, s.X, 0.0)
		assert.LessOrEqual(t, s.X+s.Size, 32.0)
		assert.GreaterOrEqual(t, s.Y, 0.0)
		assert.LessOrEqual(t, s.Y+s.Size, 32.0)
	}
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "AL", Label("alice", "b2"))
	assert.Equal(t, "Z", Label("z", "b2"))
	assert.Equal(t, "B2", Label("", "b2c3"))
	assert.Equal(t, "ÉL", Label("éloïse", "x"))
}

func TestColorForID(t *testing.T) {
	for _, id := range []string{"a1", "b2", "6f1c0e3a-2d9b-4c11-9a0e-3b7d2f8e5c41"} {
		hue := HueForID(id)
		assert.GreaterOrEqual(t, hue, 0.0)
		assert.Less(t, hue, 360.0)
		assert.Equal(t, hue, HueForID(id))
		assert.Equal(t, ColorForID(id), ColorForID(id))
	}
}

func TestHSL(t *testing.T) {
	assert.Equal(t, color.RGBA{0xff, 0x00, 0x00, 0xff}, HSL(0, 1, 0.5))
	assert.Equal(t, color.RGBA{0x00, 0xff, 0x00, 0xff}, HSL(120, 1, 0.5))
	assert.Equal(t, color.RGBA{0x00, 0x00, 0xff, 0xff}, HSL(240, 1, 0.5))
	assert.Equal(t, color.RGBA{0xff, 0x00, 0x00, 0xff}, HSL(360, 1, 0.5))
	assert.Equal(t, color.RGBA{0xff, 0xff, 0xff, 0xff}, HSL(200, 0.3, 1))
	assert.Equal(t, color.RGBA{0x00, 0x00, 0x00, 0xff}, HSL(200, 0.3, 0))
}

func TestFrameQueue(t *testing.T) {
	q := NewFrameQueue()

	var ran []int
	q.Schedule(func() { ran = append(ran, 1) })
	cancel := q.Schedule(func() { ran = append(ran, 2) })
	q.Schedule(func() {
		ran = append(ran, 3)
		q.Schedule(func() { ran = append(ran, 4) })
	})

	cancel()
	assert.Equal(t, 2, q.Pending())

	q.Flush()
	assert.Equal(t, []int{1, 3}, ran)
	assert.Equal(t, 1, q.Pending())

	q.Flush()
	assert.Equal(t, []int{1, 3, 4}, ran)
	assert.Equal(t, 0, q.Pending())
}

func TestFrameQueueRun(t *testing.T) {
	q := NewFrameQueue()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	q.Schedule(func() { close(done) })

	go q.Run(ctx, time.Millisecond)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduled callback never ran")
	}
}
