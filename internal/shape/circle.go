package shape

import (
	"math"

	"github.com/planemotion/planemotion/backend-go/internal/geom"
)

// circleSegments is the polygon resolution used when a circle outline is
// needed as vertices.
const circleSegments = 32

type Circle struct {
	base
	baseRadius float64
}

func NewCircle(x, y, radius float64, color Color) *Circle {
	return &Circle{
		base:       newBase(x, y, color),
		baseRadius: radius,
	}
}

func (c *Circle) Kind() Kind { return KindCircle }

// Radius returns the effective (scaled) radius.
func (c *Circle) Radius() float64 { return c.baseRadius * c.scale }

func (c *Circle) ContainsPoint(x, y float64) bool {
	return math.Hypot(x-c.pos.X, y-c.pos.Y) <= c.Radius()
}

// Vertices approximates the circle as a regular polygon. Rotation is applied
// for consistency with the other kinds even though the result is radially
// symmetric.
func (c *Circle) Vertices() []geom.Point {
	r := c.Radius()
	points := make([]geom.Point, 0, circleSegments)
	for i := 0; i < circleSegments; i++ {
		angle := 2 * math.Pi * float64(i) / circleSegments
		local := geom.Point{X: r * math.Cos(angle), Y: r * math.Sin(angle)}
		points = append(points, c.toWorld(local))
	}
	return points
}

func (c *Circle) Record() Record {
	return Record{
		Kind:        KindCircle,
		X:           c.pos.X,
		Y:           c.pos.Y,
		Radius:      c.baseRadius,
		Color:       c.color,
		Scale:       c.scale,
		RotationDeg: c.rotation,
	}
}
