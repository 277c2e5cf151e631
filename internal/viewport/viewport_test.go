package viewport

import (
	"math"
	"testing"
)

const tolerance = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < tolerance
}

func TestRoundTrip(t *testing.T) {
	v := New()

	states := []struct {
		zoomSteps int // positive zooms in at (300, 200), negative out
		panX      float64
		panY      float64
	}{
		{0, 0, 0},
		{3, 0, 0},
		{-5, 40, -25},
		{10, -100, 300},
	}

	points := [][2]float64{{0, 0}, {10, 20}, {-57.5, 123.25}, {1e6, -1e6}}

	for _, st := range states {
		steps := st.zoomSteps
		for steps > 0 {
			v.ZoomAt(1, 300, 200)
			steps--
		}
		for steps < 0 {
			v.ZoomAt(-1, 300, 200)
			steps++
		}
		v.PanBy(st.panX, st.panY)

		for _, p := range points {
			sx, sy := v.WorldToScreen(p[0], p[1])
			wx, wy := v.ScreenToWorld(sx, sy)
			if math.Abs(wx-p[0]) > 1e-6 || math.Abs(wy-p[1]) > 1e-6 {
				t.Errorf("zoom=%v: round trip of (%v, %v) gave (%v, %v)", v.Zoom(), p[0], p[1], wx, wy)
			}
		}
	}
}

func TestCursorAnchoredZoom(t *testing.T) {
	v := New()
	v.PanBy(37, -12)

	const cx, cy = 421.0, 233.0
	wx, wy := v.ScreenToWorld(cx, cy)

	if !v.ZoomAt(1, cx, cy) {
		t.Fatal("zoom in from 1.0 should change the zoom")
	}

	sx, sy := v.WorldToScreen(wx, wy)
	if math.Abs(sx-cx) > 1e-6 || math.Abs(sy-cy) > 1e-6 {
		t.Errorf("anchored world point maps to (%v, %v), want (%v, %v)", sx, sy, cx, cy)
	}
}

func TestZoomClamp(t *testing.T) {
	v := New()

	for i := 0; i < 200; i++ {
		v.ZoomAt(1, 100, 100)
	}
	if v.Zoom() > MaxZoom {
		t.Errorf("zoom = %v, exceeds %v", v.Zoom(), MaxZoom)
	}
	if !almostEqual(v.Zoom(), MaxZoom) {
		t.Errorf("zoom = %v, want to reach %v", v.Zoom(), MaxZoom)
	}

	for i := 0; i < 200; i++ {
		v.ZoomAt(-1, 100, 100)
	}
	if v.Zoom() < MinZoom {
		t.Errorf("zoom = %v, below %v", v.Zoom(), MinZoom)
	}
	if !almostEqual(v.Zoom(), MinZoom) {
		t.Errorf("zoom = %v, want to reach %v", v.Zoom(), MinZoom)
	}
}

func TestZoomAtReportsNoChangeAtLimit(t *testing.T) {
	v := New()
	for v.ZoomAt(1, 0, 0) {
	}
	if v.ZoomAt(1, 0, 0) {
		t.Error("zooming past the limit should report no change")
	}
}

func TestZoomFactors(t *testing.T) {
	v := New()
	v.ZoomAt(1, 0, 0)
	if !almostEqual(v.Zoom(), 1.1) {
		t.Errorf("zoom after one step in = %v, want 1.1", v.Zoom())
	}
	v.ZoomAt(-1, 0, 0)
	if !almostEqual(v.Zoom(), 1.1*0.9) {
		t.Errorf("zoom after step out = %v, want %v", v.Zoom(), 1.1*0.9)
	}
}

func TestPanIsScaledByZoom(t *testing.T) {
	v := New()
	v.ZoomAt(1, 0, 0) // zoom = 1.1

	v.PanBy(11, -22)
	ox, oy := v.Offset()
	if !almostEqual(ox, 10) || !almostEqual(oy, -20) {
		t.Errorf("offset = (%v, %v), want (10, -20)", ox, oy)
	}
}

func TestReset(t *testing.T) {
	v := New()
	v.ZoomAt(1, 50, 60)
	v.PanBy(100, 200)

	v.Reset()
	if v.Zoom() != 1.0 {
		t.Errorf("zoom = %v, want 1.0", v.Zoom())
	}
	ox, oy := v.Offset()
	if ox != 0 || oy != 0 {
		t.Errorf("offset = (%v, %v), want (0, 0)", ox, oy)
	}
}
