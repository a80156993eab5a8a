/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package render

import (
	"image/color"
	"math"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// HueForID maps a participant id to a stable hue in [0, 360).
func HueForID(id string) float64 {
	return float64(xxhash.Sum64String(id) % 360)
}

func ColorForID(id string) color.RGBA {
	return HSL(HueForID(id), 0.70, 0.55)
}

// Label is the marker text for a participant: the first two characters of
// its name, or of its id when it has no name, in upper case.
func Label(name, id string) string {
	src := name
	if src == "" {
		src = id
	}

	runes := []rune(src)
	if len(runes) > 2 {
		runes = runes[:2]
	}
	return strings.ToUpper(string(runes))
}

// HSL converts hue (degrees), saturation and lightness (0-1) to opaque RGBA.
func HSL(h, s, l float64) color.RGBA {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	s = math.Max(0, math.Min(1, s))
	l = math.Max(0, math.Min(1, l))

	c := (1 - math.Abs(2*l-1)) * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := l - c/2

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	return color.RGBA{
		R: uint8(math.Round((r + m) * 255)),
		G: uint8(math.Round((g + m) * 255)),
		B: uint8(math.Round((b + m) * 255)),
		A: 0xff,
	}
}
