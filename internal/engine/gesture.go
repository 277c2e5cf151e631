package engine

import (
	"github.com/planemotion/planemotion/backend-go/internal/geom"
	"github.com/planemotion/planemotion/backend-go/internal/shape"
)

// Gesture is the interaction state. Exactly one gesture is active at a time;
// the closed set makes combinations like dragging-while-resizing
// unrepresentable.
type Gesture interface {
	isGesture()
}

// Idle is the rest state.
type Idle struct{}

// Dragging moves a shape, preserving the grab offset between the pointer and
// the shape center.
type Dragging struct {
	Shape      shape.Shape
	GrabOffset geom.Point
}

// Resizing scales a shape from a corner handle. The new scale is the start
// scale multiplied by the ratio of the current and initial pointer distances
// to the shape center.
type Resizing struct {
	Shape      shape.Shape
	Handle     int // corner index into the world-bounds rect, 0 = top-left clockwise
	StartScale float64
	GrabDist   float64
}

// Panning shifts the viewport incrementally, re-anchoring on every update.
type Panning struct {
	Anchor geom.Point // screen coordinates
}

// ConnectingFrom is the pending half of the two-click connection gesture.
type ConnectingFrom struct {
	Shape shape.Shape
}

func (Idle) isGesture()           {}
func (Dragging) isGesture()       {}
func (Resizing) isGesture()       {}
func (Panning) isGesture()        {}
func (ConnectingFrom) isGesture() {}
