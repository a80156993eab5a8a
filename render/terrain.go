/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package render

import (
	"image/color"
	"math"

	"github.com/Seednode/cursorgrid/protocol"
)

// TerrainSalt is mixed into every tile seed.
const TerrainSalt uint32 = 0x5eed0b0c

// TileSeed derives a tile's generator seed from its coordinates alone.
func TileSeed(col, row int, salt uint32) uint32 {
	return uint32(col)*73856093 ^ uint32(row)*19349663 ^ salt
}

// Mulberry32 is a small, fast generator. It is not suitable for anything
// but reproducible visual noise.
type Mulberry32 struct {
	state uint32
}

func NewMulberry32(seed uint32) *Mulberry32 {
	return &Mulberry32{state: seed}
}

func (m *Mulberry32) Uint32() uint32 {
	m.state += 0x6d2b79f5
	t := m.state
	t = (t ^ t>>15) * (t | 1)
	t ^= t + (t^t>>7)*(t|61)
	return t ^ t>>14
}

// Float64 returns a value in [0, 1).
func (m *Mulberry32) Float64() float64 {
	return float64(m.Uint32()) / 4294967296
}

type speckle struct {
	X, Y, Size float64
	Color      color.RGBA
}

type tileStyle struct {
	Base     color.RGBA
	Speckles []speckle
}

// tileStyleAt is a pure function of the tile coordinates and tile size.
func tileStyleAt(col, row int, tileSize float64) tileStyle {
	rng := NewMulberry32(TileSeed(col, row, TerrainSalt))

	hue := 88 + rng.Float64()*28
	light := 0.30 + rng.Float64()*0.08

	style := tileStyle{
		Base:     HSL(hue, 0.42, light),
		Speckles: make([]speckle, 4+int(rng.Float64()*5)),
	}

	for i := range style.Speckles {
		size := 1 + math.Floor(rng.Float64()*2)
		style.Speckles[i] = speckle{
			X:     rng.Float64() * (tileSize - size),
			Y:     rng.Float64() * (tileSize - size),
			Size:  size,
			Color: HSL(hue, 0.35, light+(rng.Float64()-0.5)*0.16),
		}
	}

	return style
}

func paintTerrain(c Canvas, grid protocol.Grid) {
	c.Clear(color.RGBA{0x10, 0x14, 0x10, 0xff})

	ts := float64(grid.TileSize)
	for row := 0; row < grid.Rows; row++ {
		for col := 0; col < grid.Cols; col++ {
			x, y := float64(col)*ts, float64(row)*ts
			style := tileStyleAt(col, row, ts)

			c.FillRect(x, y, ts, ts, style.Base)
			for _, s := range style.Speckles {
				c.FillRect(x+s.X, y+s.Y, s.Size, s.Size, s.Color)
			}
		}
	}
}

type terrainKey struct {
	grid protocol.Grid
	dpr  float64
}

// terrainCache holds the pre-rendered terrain layer. Only a change of grid
// or device pixel ratio rebuilds it.
type terrainCache struct {
	key    terrainKey
	canvas Canvas
	builds int
}

func (t *terrainCache) get(b Backend, grid protocol.Grid, dpr float64) Canvas {
	key := terrainKey{grid: grid, dpr: dpr}
	if t.canvas != nil && t.key == key {
		return t.canvas
	}

	t.key = key
	t.canvas = b.NewCanvas(physical(grid.Width(), dpr), physical(grid.Height(), dpr), dpr)
	paintTerrain(t.canvas, grid)
	t.builds++

	return t.canvas
}

func physical(logical int, dpr float64) int {
	return int(math.Round(float64(logical) * dpr))
}
