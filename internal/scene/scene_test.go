package scene

import (
	"math/rand"
	"testing"
)

func TestNewStarfieldBounds(t *testing.T) {
	stars := NewStarfield(100, rand.New(rand.NewSource(3)))
	if len(stars) != 100 {
		t.Fatalf("expected 100 stars, got %d", len(stars))
	}
	for _, s := range stars {
		if s.X < 0 || s.X >= 1 || s.Y < 0 || s.Y >= 1 {
			t.Fatalf("star out of unit square: %+v", s)
		}
		if s.Depth <= 0 || s.Depth > 1 {
			t.Fatalf("star depth out of range: %v", s.Depth)
		}
	}
}

func TestStarRowWrapsIntoScreen(t *testing.T) {
	stars := NewStarfield(50, rand.New(rand.NewSource(5)))
	for _, s := range stars {
		for _, visual := range []float64{0, 33.3, 50, 100} {
			row := StarRow(s, visual, 24)
			if row < 0 || row >= 24 {
				t.Fatalf("row %d out of [0,24) for visual %v", row, visual)
			}
		}
	}
}

func TestShallowStarsScrollFaster(t *testing.T) {
	shallow := Star{Y: 0, Depth: 0.25}
	deep := Star{Y: 0, Depth: 0.95}
	const rows = 1000
	shallowShift := StarRow(shallow, 40, rows) - StarRow(shallow, 0, rows)
	deepShift := StarRow(deep, 40, rows) - StarRow(deep, 0, rows)
	if shallowShift <= deepShift {
		t.Fatalf("parallax inverted: shallow %d, deep %d", shallowShift, deepShift)
	}
}

func TestRocketRow(t *testing.T) {
	tests := []struct {
		visual float64
		rows   int
		want   int
	}{
		{100, 20, 0},
		{0, 20, 19},
		{50, 21, 10},
		{120, 20, 0},  // clamped above ceiling
		{-10, 20, 19}, // clamped below ground
	}
	for _, tt := range tests {
		if got := RocketRow(tt.visual, tt.rows); got != tt.want {
			t.Errorf("RocketRow(%v, %d) = %d, want %d", tt.visual, tt.rows, got, tt.want)
		}
	}
}

func TestCloudOpacity(t *testing.T) {
	if CloudOpacity(80) != 0 {
		t.Errorf("clouds should be invisible in the upper sky")
	}
	if CloudOpacity(0) != 1 {
		t.Errorf("clouds should be fully opaque at the ground")
	}
	if op := CloudOpacity(25); op <= 0 || op >= 1 {
		t.Errorf("mid-descent opacity should be partial, got %v", op)
	}
}

func TestDangerFlash(t *testing.T) {
	if DangerFlash(50, 0) {
		t.Errorf("no danger flash at safe altitude")
	}
	on := 0
	for frame := 0; frame < 60; frame++ {
		if DangerFlash(10, frame) {
			on++
		}
	}
	if on == 0 || on == 60 {
		t.Errorf("danger flash should pulse, was on %d/60 frames", on)
	}
}

func TestSkyColorEndpoints(t *testing.T) {
	r0, g0, b0 := SkyColor(0)
	r1, g1, b1 := SkyColor(100)
	if r0 == r1 && g0 == g1 && b0 == b1 {
		t.Fatalf("sky should change color across the descent")
	}
}
