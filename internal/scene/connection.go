package scene

import (
	"github.com/planemotion/planemotion/backend-go/internal/geom"
	"github.com/planemotion/planemotion/backend-go/internal/shape"
)

// DefaultLineWidth is the stroke width for new connections.
const DefaultLineWidth = 2.0

var defaultConnectionColor = shape.Color{200, 200, 200}

// Connection is an edge between two shapes. It holds non-owning references;
// the scene removes touching connections when a shape is deleted.
type Connection struct {
	Source    shape.Shape
	Target    shape.Shape
	Color     shape.Color
	LineWidth float64
}

// LineEndpoints returns the connection line as (source point, target point).
func (c *Connection) LineEndpoints() (geom.Point, geom.Point) {
	return c.Source.ConnectionPoint(), c.Target.ConnectionPoint()
}

// ContainsPoint reports whether (x, y) is within threshold of the line.
func (c *Connection) ContainsPoint(x, y, threshold float64) bool {
	a, b := c.LineEndpoints()
	return geom.SegmentDist(geom.Point{X: x, Y: y}, a, b) <= threshold
}

// links reports whether the connection touches the shape with the given id.
func (c *Connection) links(id string) bool {
	return c.Source.ID() == id || c.Target.ID() == id
}

// joins reports whether the connection links the unordered pair {a, b}.
func (c *Connection) joins(a, b string) bool {
	return (c.Source.ID() == a && c.Target.ID() == b) ||
		(c.Source.ID() == b && c.Target.ID() == a)
}
