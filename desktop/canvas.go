/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package desktop displays a render engine in an ebiten window.
package desktop

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"github.com/Seednode/cursorgrid/render"
)

var labelFace = text.NewGoXFace(basicfont.Face7x13)

// Backend allocates offscreen ebiten images.
type Backend struct{}

func (Backend) NewCanvas(width, height int, scale float64) render.Canvas {
	return &Canvas{
		img:   ebiten.NewImage(width, height),
		scale: scale,
	}
}

// Canvas takes logical coordinates and draws them scaled to the image.
type Canvas struct {
	img   *ebiten.Image
	scale float64
}

func (c *Canvas) Image() *ebiten.Image {
	return c.img
}

func (c *Canvas) Size() (int, int) {
	b := c.img.Bounds()
	return b.Dx(), b.Dy()
}

func (c *Canvas) s(v float64) float32 {
	return float32(v * c.scale)
}

func (c *Canvas) Clear(col color.Color) {
	c.img.Fill(col)
}

func (c *Canvas) FillRect(x, y, w, h float64, col color.Color) {
	vector.DrawFilledRect(c.img, c.s(x), c.s(y), c.s(w), c.s(h), col, false)
}

func (c *Canvas) StrokeRect(x, y, w, h, width float64, col color.Color) {
	vector.StrokeRect(c.img, c.s(x), c.s(y), c.s(w), c.s(h), c.s(width), col, false)
}

func (c *Canvas) Line(x0, y0, x1, y1, width float64, col color.Color) {
	vector.StrokeLine(c.img, c.s(x0), c.s(y0), c.s(x1), c.s(y1), c.s(width), col, false)
}

func (c *Canvas) FillCircle(cx, cy, r float64, col color.Color) {
	vector.DrawFilledCircle(c.img, c.s(cx), c.s(cy), c.s(r), col, true)
}

func (c *Canvas) StrokeCircle(cx, cy, r, width float64, col color.Color) {
	vector.StrokeCircle(c.img, c.s(cx), c.s(cy), c.s(r), c.s(width), col, true)
}

func (c *Canvas) Text(s string, cx, cy float64, col color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Scale(c.scale, c.scale)
	op.GeoM.Translate(cx*c.scale, cy*c.scale)
	op.ColorScale.ScaleWithColor(col)
	op.PrimaryAlign = text.AlignCenter
	op.SecondaryAlign = text.AlignCenter

	text.Draw(c.img, s, labelFace, op)
}

func (c *Canvas) DrawCanvas(src render.Canvas) {
	sc, ok := src.(*Canvas)
	if !ok {
		return
	}
	c.img.DrawImage(sc.img, nil)
}
