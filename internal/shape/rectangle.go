package shape

import (
	"github.com/planemotion/planemotion/backend-go/internal/geom"
)

type Rectangle struct {
	base
	baseWidth  float64
	baseHeight float64
}

func NewRectangle(x, y, width, height float64, color Color) *Rectangle {
	return &Rectangle{
		base:       newBase(x, y, color),
		baseWidth:  width,
		baseHeight: height,
	}
}

func (r *Rectangle) Kind() Kind { return KindRectangle }

// Width returns the effective (scaled) width.
func (r *Rectangle) Width() float64 { return r.baseWidth * r.scale }

// Height returns the effective (scaled) height.
func (r *Rectangle) Height() float64 { return r.baseHeight * r.scale }

func (r *Rectangle) ContainsPoint(x, y float64) bool {
	local := r.toLocal(x, y)
	halfW := r.Width() / 2
	halfH := r.Height() / 2
	return local.X >= -halfW && local.X <= halfW &&
		local.Y >= -halfH && local.Y <= halfH
}

func (r *Rectangle) localVertices() []geom.Point {
	halfW := r.Width() / 2
	halfH := r.Height() / 2
	return []geom.Point{
		{X: -halfW, Y: -halfH},
		{X: halfW, Y: -halfH},
		{X: halfW, Y: halfH},
		{X: -halfW, Y: halfH},
	}
}

// Vertices returns the corners in world coordinates, clockwise from top-left.
func (r *Rectangle) Vertices() []geom.Point {
	local := r.localVertices()
	world := make([]geom.Point, len(local))
	for i, p := range local {
		world[i] = r.toWorld(p)
	}
	return world
}

func (r *Rectangle) Record() Record {
	return Record{
		Kind:        KindRectangle,
		X:           r.pos.X,
		Y:           r.pos.Y,
		Width:       r.baseWidth,
		Height:      r.baseHeight,
		Color:       r.color,
		Scale:       r.scale,
		RotationDeg: r.rotation,
	}
}
