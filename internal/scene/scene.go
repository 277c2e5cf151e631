package scene

import (
	"errors"

	"github.com/planemotion/planemotion/backend-go/internal/shape"
)

var (
	ErrSelfConnection      = errors.New("cannot connect a shape to itself")
	ErrDuplicateConnection = errors.New("connection already exists")
)

// Scene holds the shape and connection collections. Shape insertion order is
// z-order: later shapes draw on top and win hit-test ties.
type Scene struct {
	shapes      []shape.Shape
	connections []*Connection
}

func New() *Scene {
	return &Scene{}
}

// AddShape appends a shape at the top of the z-order.
func (s *Scene) AddShape(sh shape.Shape) {
	s.shapes = append(s.shapes, sh)
}

// Shapes returns the shape sequence in z-order (bottom first).
func (s *Scene) Shapes() []shape.Shape {
	return s.shapes
}

// Connections returns the connection sequence in insertion order.
func (s *Scene) Connections() []*Connection {
	return s.connections
}

// ShapeAt returns the topmost shape containing the world point, or nil.
func (s *Scene) ShapeAt(x, y float64) shape.Shape {
	for i := len(s.shapes) - 1; i >= 0; i-- {
		if s.shapes[i].ContainsPoint(x, y) {
			return s.shapes[i]
		}
	}
	return nil
}

// ShapeByID returns the shape with the given id, or nil.
func (s *Scene) ShapeByID(id string) shape.Shape {
	for _, sh := range s.shapes {
		if sh.ID() == id {
			return sh
		}
	}
	return nil
}

// ConnectionAt returns the first connection within threshold of the world
// point, or nil.
func (s *Scene) ConnectionAt(x, y, threshold float64) *Connection {
	for i := len(s.connections) - 1; i >= 0; i-- {
		if s.connections[i].ContainsPoint(x, y, threshold) {
			return s.connections[i]
		}
	}
	return nil
}

// Connect creates a connection between two shapes. It fails on a
// self-connection and when the unordered pair is already linked.
func (s *Scene) Connect(source, target shape.Shape) (*Connection, error) {
	if source.ID() == target.ID() {
		return nil, ErrSelfConnection
	}
	for _, c := range s.connections {
		if c.joins(source.ID(), target.ID()) {
			return nil, ErrDuplicateConnection
		}
	}
	conn := &Connection{
		Source:    source,
		Target:    target,
		Color:     defaultConnectionColor,
		LineWidth: DefaultLineWidth,
	}
	s.connections = append(s.connections, conn)
	return conn, nil
}

// DeleteShape removes the shape and cascades to every connection touching it.
// Returns false if the shape is not in the scene.
func (s *Scene) DeleteShape(sh shape.Shape) bool {
	idx := -1
	for i, existing := range s.shapes {
		if existing.ID() == sh.ID() {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}

	kept := s.connections[:0]
	for _, c := range s.connections {
		if !c.links(sh.ID()) {
			kept = append(kept, c)
		}
	}
	s.connections = kept

	s.shapes = append(s.shapes[:idx], s.shapes[idx+1:]...)
	return true
}

// DeleteConnection removes a single connection. Returns false if absent.
func (s *Scene) DeleteConnection(conn *Connection) bool {
	for i, c := range s.connections {
		if c == conn {
			s.connections = append(s.connections[:i], s.connections[i+1:]...)
			return true
		}
	}
	return false
}

// Clear removes every shape and connection.
func (s *Scene) Clear() {
	s.shapes = nil
	s.connections = nil
}
