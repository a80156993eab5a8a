/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

const circleSegments = 48

// Raster draws into in-memory RGBA images.
type Raster struct{}

func (Raster) NewCanvas(width, height int, scale float64) Canvas {
	return &RasterCanvas{
		img:   image.NewRGBA(image.Rect(0, 0, width, height)),
		scale: scale,
	}
}

type RasterCanvas struct {
	img   *image.RGBA
	scale float64
}

func (c *RasterCanvas) Image() *image.RGBA {
	return c.img
}

func (c *RasterCanvas) Size() (int, int) {
	b := c.img.Bounds()
	return b.Dx(), b.Dy()
}

func (c *RasterCanvas) Clear(col color.Color) {
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(col), image.Point{}, draw.Src)
}

func (c *RasterCanvas) rect(x, y, w, h float64) image.Rectangle {
	s := c.scale
	return image.Rect(
		int(math.Round(x*s)), int(math.Round(y*s)),
		int(math.Round((x+w)*s)), int(math.Round((y+h)*s)),
	)
}

func (c *RasterCanvas) FillRect(x, y, w, h float64, col color.Color) {
	draw.Draw(c.img, c.rect(x, y, w, h), image.NewUniform(col), image.Point{}, draw.Over)
}

// StrokeRect centers the stroke on the rectangle's edge.
func (c *RasterCanvas) StrokeRect(x, y, w, h, width float64, col color.Color) {
	half := width / 2
	c.FillRect(x-half, y-half, w+width, width, col)
	c.FillRect(x-half, y+h-half, w+width, width, col)
	c.FillRect(x-half, y+half, width, h-width, col)
	c.FillRect(x+w-half, y+half, width, h-width, col)
}

func (c *RasterCanvas) rasterizer() *vector.Rasterizer {
	w, h := c.Size()
	z := vector.NewRasterizer(w, h)
	z.DrawOp = draw.Over
	return z
}

func (c *RasterCanvas) fill(z *vector.Rasterizer, col color.Color) {
	z.Draw(c.img, c.img.Bounds(), image.NewUniform(col), image.Point{})
}

func (c *RasterCanvas) Line(x0, y0, x1, y1, width float64, col color.Color) {
	dx, dy := x1-x0, y1-y0
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}

	s := c.scale
	nx, ny := -dy/length*width/2, dx/length*width/2

	z := c.rasterizer()
	z.MoveTo(float32((x0+nx)*s), float32((y0+ny)*s))
	z.LineTo(float32((x1+nx)*s), float32((y1+ny)*s))
	z.LineTo(float32((x1-nx)*s), float32((y1-ny)*s))
	z.LineTo(float32((x0-nx)*s), float32((y0-ny)*s))
	z.ClosePath()
	c.fill(z, col)
}

// circle adds a closed polygon approximating a circle, wound clockwise or
// counter-clockwise.
func (c *RasterCanvas) circle(z *vector.Rasterizer, cx, cy, r float64, clockwise bool) {
	s := c.scale
	for i := 0; i <= circleSegments; i++ {
		a := 2 * math.Pi * float64(i) / circleSegments
		if !clockwise {
			a = -a
		}
		px, py := float32((cx+r*math.Cos(a))*s), float32((cy+r*math.Sin(a))*s)
		if i == 0 {
			z.MoveTo(px, py)
			continue
		}
		z.LineTo(px, py)
	}
	z.ClosePath()
}

func (c *RasterCanvas) FillCircle(cx, cy, r float64, col color.Color) {
	z := c.rasterizer()
	c.circle(z, cx, cy, r, true)
	c.fill(z, col)
}

// StrokeCircle fills the annulus between r-width/2 and r+width/2. The inner
// edge is wound the other way so it cancels the outer fill.
func (c *RasterCanvas) StrokeCircle(cx, cy, r, width float64, col color.Color) {
	z := c.rasterizer()
	c.circle(z, cx, cy, r+width/2, true)
	if inner := r - width/2; inner > 0 {
		c.circle(z, cx, cy, inner, false)
	}
	c.fill(z, col)
}

func (c *RasterCanvas) Text(s string, cx, cy float64, col color.Color) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: face,
	}

	m := face.Metrics()
	width := d.MeasureString(s)
	d.Dot = fixed.Point26_6{
		X: fixed.I(int(math.Round(cx*c.scale))) - width/2,
		Y: fixed.I(int(math.Round(cy*c.scale))) + (m.Ascent-m.Descent)/2,
	}
	d.DrawString(s)
}

func (c *RasterCanvas) DrawCanvas(src Canvas) {
	rc, ok := src.(*RasterCanvas)
	if !ok {
		return
	}
	draw.Draw(c.img, c.img.Bounds(), rc.img, image.Point{}, draw.Over)
}
