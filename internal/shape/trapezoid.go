package shape

import (
	"github.com/planemotion/planemotion/backend-go/internal/geom"
)

type Trapezoid struct {
	base
	baseTopWidth    float64
	baseBottomWidth float64
	baseHeight      float64
}

func NewTrapezoid(x, y, topWidth, bottomWidth, height float64, color Color) *Trapezoid {
	return &Trapezoid{
		base:            newBase(x, y, color),
		baseTopWidth:    topWidth,
		baseBottomWidth: bottomWidth,
		baseHeight:      height,
	}
}

func (t *Trapezoid) Kind() Kind { return KindTrapezoid }

// TopWidth returns the effective (scaled) top width.
func (t *Trapezoid) TopWidth() float64 { return t.baseTopWidth * t.scale }

// BottomWidth returns the effective (scaled) bottom width.
func (t *Trapezoid) BottomWidth() float64 { return t.baseBottomWidth * t.scale }

// Height returns the effective (scaled) height.
func (t *Trapezoid) Height() float64 { return t.baseHeight * t.scale }

func (t *Trapezoid) localVertices() []geom.Point {
	halfH := t.Height() / 2
	halfTop := t.TopWidth() / 2
	halfBottom := t.BottomWidth() / 2
	return []geom.Point{
		{X: -halfTop, Y: -halfH},
		{X: halfTop, Y: -halfH},
		{X: halfBottom, Y: halfH},
		{X: -halfBottom, Y: halfH},
	}
}

// ContainsPoint ray-casts against the local polygon after transforming the
// query point into the unrotated frame. The epsilon keeps the edge-slope
// denominator nonzero on horizontal edges.
func (t *Trapezoid) ContainsPoint(x, y float64) bool {
	local := t.toLocal(x, y)
	vertices := t.localVertices()

	inside := false
	j := len(vertices) - 1
	for i := 0; i < len(vertices); i++ {
		vi := vertices[i]
		vj := vertices[j]
		if (vi.Y > local.Y) != (vj.Y > local.Y) &&
			local.X < (vj.X-vi.X)*(local.Y-vi.Y)/(vj.Y-vi.Y+1e-9)+vi.X {
			inside = !inside
		}
		j = i
	}
	return inside
}

// Vertices returns the corners in world coordinates, clockwise from top-left.
func (t *Trapezoid) Vertices() []geom.Point {
	local := t.localVertices()
	world := make([]geom.Point, len(local))
	for i, p := range local {
		world[i] = t.toWorld(p)
	}
	return world
}

func (t *Trapezoid) Record() Record {
	return Record{
		Kind:        KindTrapezoid,
		X:           t.pos.X,
		Y:           t.pos.Y,
		TopWidth:    t.baseTopWidth,
		BottomWidth: t.baseBottomWidth,
		Height:      t.baseHeight,
		Color:       t.color,
		Scale:       t.scale,
		RotationDeg: t.rotation,
	}
}
