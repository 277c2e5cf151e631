// Package viewport maps between world and screen coordinates. The transform
// is a uniform zoom about the origin plus a world-space offset:
//
//	screen = (world + offset) * zoom
package viewport

import (
	"github.com/planemotion/planemotion/backend-go/internal/geom"
)

const (
	MinZoom = 0.25
	MaxZoom = 4.0

	zoomInFactor  = 1.1
	zoomOutFactor = 0.9
)

type Viewport struct {
	zoom    float64
	offsetX float64
	offsetY float64
}

func New() *Viewport {
	return &Viewport{zoom: 1.0}
}

func (v *Viewport) Zoom() float64 { return v.zoom }

// Offset returns the world-space offset.
func (v *Viewport) Offset() (float64, float64) { return v.offsetX, v.offsetY }

// WorldToScreen maps a world point to screen pixels.
func (v *Viewport) WorldToScreen(wx, wy float64) (float64, float64) {
	return (wx + v.offsetX) * v.zoom, (wy + v.offsetY) * v.zoom
}

// ScreenToWorld is the exact inverse of WorldToScreen.
func (v *Viewport) ScreenToWorld(sx, sy float64) (float64, float64) {
	return sx/v.zoom - v.offsetX, sy/v.zoom - v.offsetY
}

// ZoomAt zooms in (delta > 0) or out (delta <= 0) keeping the world point
// under the screen cursor (cx, cy) visually fixed. Returns whether the zoom
// level changed.
func (v *Viewport) ZoomAt(delta, cx, cy float64) bool {
	factor := zoomOutFactor
	if delta > 0 {
		factor = zoomInFactor
	}
	newZoom := geom.Clamp(v.zoom*factor, MinZoom, MaxZoom)
	if newZoom == v.zoom {
		return false
	}

	// Capture the anchored world point before the zoom changes, then solve
	// the offset so it lands back under the cursor.
	wx, wy := v.ScreenToWorld(cx, cy)
	v.zoom = newZoom
	v.offsetX = cx/newZoom - wx
	v.offsetY = cy/newZoom - wy
	return true
}

// PanBy shifts the viewport by a screen-space delta.
func (v *Viewport) PanBy(dxScreen, dyScreen float64) {
	v.offsetX += dxScreen / v.zoom
	v.offsetY += dyScreen / v.zoom
}

// Reset restores the identity transform.
func (v *Viewport) Reset() {
	v.zoom = 1.0
	v.offsetX = 0
	v.offsetY = 0
}
