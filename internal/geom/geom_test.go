package geom

import (
	"math"
	"testing"
)

const eps = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < eps
}

func TestRotateQuarterTurn(t *testing.T) {
	p := Point{X: 1, Y: 0}.Rotate(90)
	if !almostEqual(p.X, 0) || !almostEqual(p.Y, 1) {
		t.Errorf("rotate 90 = (%v, %v), want (0, 1)", p.X, p.Y)
	}
}

func TestRotateAround(t *testing.T) {
	c := Point{X: 10, Y: 10}
	p := Point{X: 11, Y: 10}.RotateAround(c, 180)
	if !almostEqual(p.X, 9) || !almostEqual(p.Y, 10) {
		t.Errorf("rotate 180 around center = (%v, %v), want (9, 10)", p.X, p.Y)
	}
}

func TestNormalizeDegrees(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{0, 0},
		{360, 0},
		{-90, 270},
		{450, 90},
		{-720, 0},
	}
	for _, c := range cases {
		if got := NormalizeDegrees(c.in); !almostEqual(got, c.want) {
			t.Errorf("NormalizeDegrees(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(5, 0.25, 4); got != 4 {
		t.Errorf("Clamp(5) = %v, want 4", got)
	}
	if got := Clamp(0.1, 0.25, 4); got != 0.25 {
		t.Errorf("Clamp(0.1) = %v, want 0.25", got)
	}
	if got := Clamp(1, 0.25, 4); got != 1 {
		t.Errorf("Clamp(1) = %v, want 1", got)
	}
}

func TestSegmentDist(t *testing.T) {
	a := Point{X: 0, Y: 0}
	b := Point{X: 10, Y: 0}

	if got := SegmentDist(Point{X: 5, Y: 3}, a, b); !almostEqual(got, 3) {
		t.Errorf("perpendicular distance = %v, want 3", got)
	}
	// Beyond the end: projection clamps to b.
	if got := SegmentDist(Point{X: 13, Y: 4}, a, b); !almostEqual(got, 5) {
		t.Errorf("clamped distance = %v, want 5", got)
	}
	// Degenerate segment falls back to point distance.
	if got := SegmentDist(Point{X: 3, Y: 4}, a, a); !almostEqual(got, 5) {
		t.Errorf("degenerate distance = %v, want 5", got)
	}
}

func TestBoundsOf(t *testing.T) {
	r := BoundsOf([]Point{{1, 2}, {5, -3}, {-2, 4}})
	if r.X != -2 || r.Y != -3 || r.Width != 7 || r.Height != 7 {
		t.Errorf("bounds = %+v, want {-2 -3 7 7}", r)
	}
	if !r.Contains(0, 0) || r.Contains(6, 0) {
		t.Errorf("bounds containment wrong for %+v", r)
	}

	if got := BoundsOf(nil); !got.IsEmpty() {
		t.Errorf("empty point set bounds = %+v, want empty", got)
	}
}

func TestRectUnionAndCenter(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 2, Height: 2}
	b := Rect{X: 3, Y: 3, Width: 1, Height: 1}
	u := a.Union(b)
	if u.X != 0 || u.Y != 0 || u.Width != 4 || u.Height != 4 {
		t.Errorf("union = %+v, want {0 0 4 4}", u)
	}
	if c := u.Center(); c.X != 2 || c.Y != 2 {
		t.Errorf("center = %+v, want (2, 2)", c)
	}
	if got := a.Union(Rect{}); got != a {
		t.Errorf("union with empty = %+v, want %+v", got, a)
	}
}
