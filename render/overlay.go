/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package render

import (
	"image/color"

	"github.com/Seednode/cursorgrid/protocol"
)

var (
	gridLineColor   = color.RGBA{0x00, 0x00, 0x00, 0x26}
	hoverFillColor  = color.RGBA{0x2e, 0x2e, 0x2e, 0x2e}
	hoverOuterColor = color.RGBA{0x00, 0x00, 0x00, 0x99}
	hoverInnerColor = color.RGBA{0xe6, 0xe6, 0xe6, 0xe6} // premultiplied
	labelColor      = color.RGBA{0xff, 0xff, 0xff, 0xff}
	labelShadow     = color.RGBA{0x00, 0x00, 0x00, 0xb3}
)

func drawGridLines(c Canvas, grid protocol.Grid) {
	ts := float64(grid.TileSize)
	w, h := float64(grid.Width()), float64(grid.Height())

	for col := 1; col < grid.Cols; col++ {
		x := float64(col) * ts
		c.Line(x, 0, x, h, 1, gridLineColor)
	}
	for row := 1; row < grid.Rows; row++ {
		y := float64(row) * ts
		c.Line(0, y, w, y, 1, gridLineColor)
	}
}

// drawHover fills the tile and outlines it twice, dark outside and light
// inside, so it reads on any terrain.
func drawHover(c Canvas, grid protocol.Grid, tile protocol.Cursor) {
	ts := float64(grid.TileSize)
	x, y := float64(tile.Col)*ts, float64(tile.Row)*ts

	c.FillRect(x, y, ts, ts, hoverFillColor)
	c.StrokeRect(x+1, y+1, ts-2, ts-2, 2, hoverOuterColor)
	c.StrokeRect(x+3, y+3, ts-6, ts-6, 1, hoverInnerColor)
}

func drawMarker(c Canvas, grid protocol.Grid, rc RemoteCursor) {
	ts := float64(grid.TileSize)
	cx := (float64(rc.Col) + 0.5) * ts
	cy := (float64(rc.Row) + 0.5) * ts
	r := ts * 0.36

	ring := ColorForID(rc.ID)
	c.FillCircle(cx, cy, r, color.RGBA{ring.R / 3, ring.G / 3, ring.B / 3, 0x80})
	c.StrokeCircle(cx, cy, r, 3, ring)

	label := Label(rc.Name, rc.ID)
	c.Text(label, cx+1, cy+1, labelShadow)
	c.Text(label, cx, cy, labelColor)
}
