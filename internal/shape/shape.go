package shape

import (
	"github.com/planemotion/planemotion/backend-go/internal/geom"
	"github.com/planemotion/planemotion/backend-go/internal/typeid"
)

// Uniform scale bounds shared by every shape kind.
const (
	MinScale = 0.25
	MaxScale = 4.0
)

// Kind identifies a shape variant. The set is closed: hit testing and
// serialization dispatch exhaustively over these values.
type Kind string

const (
	KindCircle    Kind = "circle"
	KindRectangle Kind = "rectangle"
	KindTrapezoid Kind = "trapezoid"
)

// Color is an RGB triple, serialized as a three-element JSON array.
type Color [3]uint8

// Shape is the capability set shared by all scene shapes. Base dimensions
// are stored unscaled; effective dimensions are base times the uniform scale.
type Shape interface {
	ID() string
	Kind() Kind
	Position() geom.Point
	SetPosition(p geom.Point)
	Color() Color
	Scale() float64
	SetScale(s float64)
	ScaleBy(delta float64)
	Rotation() float64
	Rotate(deltaDeg float64)

	// ContainsPoint reports whether the world point (x, y) is inside the shape.
	ContainsPoint(x, y float64) bool
	// Vertices returns the shape outline in world coordinates, clockwise,
	// with rotation applied.
	Vertices() []geom.Point
	// ConnectionPoint is where connection lines attach. Always the center.
	ConnectionPoint() geom.Point

	Record() Record
}

// base carries the state common to every shape kind.
type base struct {
	id       string
	pos      geom.Point
	color    Color
	scale    float64
	rotation float64 // degrees, kept in [0, 360)
}

func newBase(x, y float64, color Color) base {
	return base{
		id:    typeid.NewShapeID(),
		pos:   geom.Point{X: x, Y: y},
		color: color,
		scale: 1.0,
	}
}

func (b *base) ID() string               { return b.id }
func (b *base) Position() geom.Point     { return b.pos }
func (b *base) SetPosition(p geom.Point) { b.pos = p }
func (b *base) Color() Color             { return b.color }
func (b *base) Scale() float64           { return b.scale }
func (b *base) Rotation() float64        { return b.rotation }

func (b *base) SetScale(s float64) {
	b.scale = geom.Clamp(s, MinScale, MaxScale)
}

func (b *base) ScaleBy(delta float64) {
	b.SetScale(b.scale + delta)
}

func (b *base) Rotate(deltaDeg float64) {
	b.rotation = geom.NormalizeDegrees(b.rotation + deltaDeg)
}

func (b *base) ConnectionPoint() geom.Point { return b.pos }

// toWorld rotates a local-frame point and translates it to world coordinates.
func (b *base) toWorld(local geom.Point) geom.Point {
	return local.Rotate(b.rotation).Add(b.pos)
}

// toLocal transforms a world point into the shape's unrotated local frame.
func (b *base) toLocal(x, y float64) geom.Point {
	return geom.Point{X: x - b.pos.X, Y: y - b.pos.Y}.Rotate(-b.rotation)
}

// restore applies persisted scale and rotation, re-clamping so the
// invariants hold even for hand-edited documents.
func (b *base) restore(scale, rotationDeg float64) {
	b.SetScale(scale)
	b.rotation = geom.NormalizeDegrees(rotationDeg)
}
