// Package scene computes the rocket view's render quantities. Everything
// here is a pure function of the smoothed altitude and the frame count, so
// the TUI can paint a frame without touching gameplay state.
package scene

import "math/rand"

// Star is one background star. Depth in (0, 1]: deeper stars sit further
// away and scroll slower for parallax.
type Star struct {
	X     float64 // horizontal position in [0, 1)
	Y     float64 // vertical position in [0, 1)
	Depth float64
	Glyph rune
}

var starGlyphs = []rune{'.', '·', '+', '*'}

// NewStarfield generates a fixed starfield for one session.
func NewStarfield(n int, rng *rand.Rand) []Star {
	stars := make([]Star, n)
	for i := range stars {
		depth := 0.25 + rng.Float64()*0.75
		stars[i] = Star{
			X:     rng.Float64(),
			Y:     rng.Float64(),
			Depth: depth,
			Glyph: starGlyphs[rng.Intn(len(starGlyphs))],
		}
	}
	return stars
}

// StarRow maps a star to a screen row for the given altitude. Higher
// altitude scrolls the field down; shallow stars move faster than deep
// ones. The result is already wrapped into [0, rows).
func StarRow(star Star, visual float64, rows int) int {
	if rows <= 0 {
		return 0
	}
	offset := star.Y + (visual/100.0)*(1.0-star.Depth)
	row := int(offset * float64(rows))
	row %= rows
	if row < 0 {
		row += rows
	}
	return row
}

// StarCol maps a star to a screen column.
func StarCol(star Star, cols int) int {
	if cols <= 0 {
		return 0
	}
	col := int(star.X * float64(cols))
	if col >= cols {
		col = cols - 1
	}
	return col
}

// RocketRow places the rocket glyph within the given number of rows, row 0
// at the top. Altitude 100 maps to the top row, 0 to the bottom.
func RocketRow(visual float64, rows int) int {
	if rows <= 1 {
		return 0
	}
	row := int((1.0 - visual/100.0) * float64(rows-1))
	if row < 0 {
		row = 0
	}
	if row > rows-1 {
		row = rows - 1
	}
	return row
}

// SkyColor blends from a deep night sky at high altitude to a warm ground
// haze near zero. Returned as 24-bit RGB components.
func SkyColor(visual float64) (r, g, b uint8) {
	t := visual / 100.0
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	// ground haze #3A2E4F -> night sky #0B1026
	return lerp8(0x3A, 0x0B, t), lerp8(0x2E, 0x10, t), lerp8(0x4F, 0x26, t)
}

// CloudOpacity fades the cloud band in as the rocket descends through the
// lower half of the sky.
func CloudOpacity(visual float64) float64 {
	if visual >= 50 {
		return 0
	}
	return (50 - visual) / 50
}

// DangerThreshold is the altitude below which the danger flash engages.
const DangerThreshold = 20.0

// DangerFlash pulses on and off while the rocket is low. The pulse is
// derived from the frame count so it needs no timer of its own.
func DangerFlash(visual float64, frame int) bool {
	if visual >= DangerThreshold {
		return false
	}
	return (frame/15)%2 == 0
}

func lerp8(from, to uint8, t float64) uint8 {
	return uint8(float64(from) + (float64(to)-float64(from))*t)
}
