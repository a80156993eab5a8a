/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package render

import (
	"image/color"
)

// Canvas is a drawing surface addressed in logical units. Implementations
// apply their device pixel ratio to every coordinate, so drawing code never
// deals with physical pixels.
type Canvas interface {
	// Size is the physical pixel size of the backing surface.
	Size() (width, height int)

	Clear(c color.Color)
	FillRect(x, y, w, h float64, c color.Color)
	StrokeRect(x, y, w, h, width float64, c color.Color)
	Line(x0, y0, x1, y1, width float64, c color.Color)
	FillCircle(cx, cy, r float64, c color.Color)
	StrokeCircle(cx, cy, r, width float64, c color.Color)

	// Text draws s centered on (cx, cy).
	Text(s string, cx, cy float64, c color.Color)

	// DrawCanvas copies src onto this canvas at the origin. src must come
	// from the same Backend.
	DrawCanvas(src Canvas)
}

// Backend allocates canvases of a given physical size and scale.
type Backend interface {
	NewCanvas(width, height int, scale float64) Canvas
}

// PointerEvent is a pointer position in logical units relative to the top
// left of the board, or a notice that the pointer left it.
type PointerEvent struct {
	X, Y  float64
	Leave bool
}

// PointerSource delivers pointer events until the returned function is called.
type PointerSource interface {
	SubscribePointer(fn func(PointerEvent)) (unsubscribe func())
}
