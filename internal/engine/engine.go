// Package engine owns the interactive scene state: the shape and connection
// collections, the viewport transform, the current gesture, and selection.
// All pointer coordinates are world coordinates unless a method says
// otherwise; the input layer converts through the viewport first.
//
// Expected misses (nothing under the pointer, nothing selected) return a
// bool or nil, never an error. Validation failures surface through the
// transient status string.
package engine

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/planemotion/planemotion/backend-go/internal/geom"
	"github.com/planemotion/planemotion/backend-go/internal/scene"
	"github.com/planemotion/planemotion/backend-go/internal/shape"
	"github.com/planemotion/planemotion/backend-go/internal/viewport"
)

// Default base dimensions and colors for new shapes.
const (
	DefaultCircleRadius    = 30.0
	DefaultRectWidth       = 60.0
	DefaultRectHeight      = 40.0
	DefaultTrapTopWidth    = 50.0
	DefaultTrapBottomWidth = 90.0
	DefaultTrapHeight      = 50.0
)

var (
	defaultCircleColor    = shape.Color{100, 100, 255}
	defaultRectColor      = shape.Color{255, 100, 100}
	defaultTrapezoidColor = shape.Color{120, 200, 140}
)

// ErrNoPath is returned by Save when no file path is supplied or remembered.
var ErrNoPath = errors.New("no file path set")

type Engine struct {
	scene *scene.Scene
	view  *viewport.Viewport

	gesture   Gesture
	selected  shape.Shape
	lastClick *geom.Point

	status   string
	filePath string
}

func New() *Engine {
	return &Engine{
		scene:   scene.New(),
		view:    viewport.New(),
		gesture: Idle{},
	}
}

func (e *Engine) Scene() *scene.Scene          { return e.scene }
func (e *Engine) Viewport() *viewport.Viewport { return e.view }
func (e *Engine) Gesture() Gesture             { return e.gesture }
func (e *Engine) Selected() shape.Shape        { return e.selected }

// Status returns the transient human-readable status line.
func (e *Engine) Status() string { return e.status }
func (e *Engine) ClearStatus()   { e.status = "" }

func (e *Engine) setStatus(format string, args ...any) {
	e.status = fmt.Sprintf(format, args...)
}

// --- Shape creation ---

func (e *Engine) CreateCircle(x, y float64) *shape.Circle {
	c := shape.NewCircle(x, y, DefaultCircleRadius, defaultCircleColor)
	e.scene.AddShape(c)
	e.setStatus("Circle created")
	return c
}

func (e *Engine) CreateRectangle(x, y float64) *shape.Rectangle {
	r := shape.NewRectangle(x, y, DefaultRectWidth, DefaultRectHeight, defaultRectColor)
	e.scene.AddShape(r)
	e.setStatus("Rectangle created")
	return r
}

func (e *Engine) CreateTrapezoid(x, y float64) *shape.Trapezoid {
	t := shape.NewTrapezoid(x, y, DefaultTrapTopWidth, DefaultTrapBottomWidth, DefaultTrapHeight, defaultTrapezoidColor)
	e.scene.AddShape(t)
	e.setStatus("Trapezoid created")
	return t
}

// --- Selection ---

// SelectAt hit-tests the scene and updates the selection. A miss clears it.
func (e *Engine) SelectAt(wx, wy float64) shape.Shape {
	e.selected = e.scene.ShapeAt(wx, wy)
	return e.selected
}

func (e *Engine) DeselectAll() {
	e.selected = nil
}

// --- Dragging ---

// StartDrag begins dragging the topmost shape under the pointer. The grab
// offset keeps the grabbed point under the cursor rather than snapping the
// center to it.
func (e *Engine) StartDrag(wx, wy float64) bool {
	sh := e.SelectAt(wx, wy)
	if sh == nil {
		return false
	}
	e.gesture = Dragging{
		Shape:      sh,
		GrabOffset: sh.Position().Sub(geom.Point{X: wx, Y: wy}),
	}
	return true
}

func (e *Engine) UpdateDrag(wx, wy float64) {
	g, ok := e.gesture.(Dragging)
	if !ok {
		return
	}
	g.Shape.SetPosition(geom.Point{X: wx, Y: wy}.Add(g.GrabOffset))
}

// StopDrag ends the drag; the selection persists.
func (e *Engine) StopDrag() {
	if _, ok := e.gesture.(Dragging); ok {
		e.gesture = Idle{}
	}
}

func (e *Engine) IsDragging() bool {
	_, ok := e.gesture.(Dragging)
	return ok
}

// --- Resizing ---

// ResizeHandleAt finds a corner handle within worldThreshold of the pointer,
// topmost shape first. Callers derive worldThreshold from a pixel threshold
// divided by the zoom so the hit radius is constant on screen.
func (e *Engine) ResizeHandleAt(wx, wy, worldThreshold float64) (shape.Shape, int, bool) {
	p := geom.Point{X: wx, Y: wy}
	shapes := e.scene.Shapes()
	for i := len(shapes) - 1; i >= 0; i-- {
		sh := shapes[i]
		corners := geom.BoundsOf(sh.Vertices()).Corners()
		best := -1
		bestDist := worldThreshold
		for h, corner := range corners {
			if d := p.Dist(corner); d <= bestDist {
				best = h
				bestDist = d
			}
		}
		if best >= 0 {
			return sh, best, true
		}
	}
	return nil, 0, false
}

// StartResize begins a corner-handle resize if one is under the pointer.
func (e *Engine) StartResize(wx, wy, worldThreshold float64) bool {
	sh, handle, ok := e.ResizeHandleAt(wx, wy, worldThreshold)
	if !ok {
		return false
	}
	grabDist := geom.Point{X: wx, Y: wy}.Dist(sh.Position())
	if grabDist == 0 {
		return false
	}
	e.selected = sh
	e.gesture = Resizing{
		Shape:      sh,
		Handle:     handle,
		StartScale: sh.Scale(),
		GrabDist:   grabDist,
	}
	return true
}

// UpdateResize sets the uniform scale proportionally to how far the pointer
// has moved from the shape center relative to where it grabbed the handle.
func (e *Engine) UpdateResize(wx, wy float64) {
	g, ok := e.gesture.(Resizing)
	if !ok {
		return
	}
	dist := geom.Point{X: wx, Y: wy}.Dist(g.Shape.Position())
	g.Shape.SetScale(g.StartScale * dist / g.GrabDist)
}

func (e *Engine) StopResize() {
	if _, ok := e.gesture.(Resizing); ok {
		e.gesture = Idle{}
	}
}

func (e *Engine) IsResizing() bool {
	_, ok := e.gesture.(Resizing)
	return ok
}

// --- Panning (screen coordinates) ---

func (e *Engine) StartPan(sx, sy float64) {
	e.gesture = Panning{Anchor: geom.Point{X: sx, Y: sy}}
}

// UpdatePan applies the delta from the last anchor and re-anchors, so each
// update is incremental rather than measured from the gesture start.
func (e *Engine) UpdatePan(sx, sy float64) {
	g, ok := e.gesture.(Panning)
	if !ok {
		return
	}
	e.view.PanBy(sx-g.Anchor.X, sy-g.Anchor.Y)
	e.gesture = Panning{Anchor: geom.Point{X: sx, Y: sy}}
}

func (e *Engine) StopPan() {
	if _, ok := e.gesture.(Panning); ok {
		e.gesture = Idle{}
	}
}

func (e *Engine) IsPanning() bool {
	_, ok := e.gesture.(Panning)
	return ok
}

// --- Two-click connection protocol ---

// StartConnectionAt handles both clicks of the connection gesture. The first
// hit records the pending start; the second attempts the connection and
// clears the pending state whether or not it succeeded, so a failed second
// click cancels the whole gesture.
func (e *Engine) StartConnectionAt(wx, wy float64) bool {
	sh := e.scene.ShapeAt(wx, wy)
	if sh == nil {
		return false
	}

	switch g := e.gesture.(type) {
	case ConnectingFrom:
		e.gesture = Idle{}
		if _, err := e.scene.Connect(g.Shape, sh); err != nil {
			switch {
			case errors.Is(err, scene.ErrSelfConnection):
				e.setStatus("Cannot connect shape to itself")
			case errors.Is(err, scene.ErrDuplicateConnection):
				e.setStatus("Connection already exists")
			default:
				e.setStatus("Connection failed")
			}
			return false
		}
		e.setStatus("Connection created")
		return true
	case Idle:
		e.gesture = ConnectingFrom{Shape: sh}
		e.setStatus("Connection start selected")
		return true
	default:
		// Another gesture is in flight; connections only start from rest.
		return false
	}
}

// CancelConnection clears a pending connection start, if any.
func (e *Engine) CancelConnection() {
	if _, ok := e.gesture.(ConnectingFrom); ok {
		e.gesture = Idle{}
		e.setStatus("Connection cancelled")
	}
}

// ConnectionPreview returns the rubber-band line from the pending start to
// the pointer. Pure query for the renderer; no state changes.
func (e *Engine) ConnectionPreview(mouseWx, mouseWy float64) (geom.Point, geom.Point, bool) {
	g, ok := e.gesture.(ConnectingFrom)
	if !ok {
		return geom.Point{}, geom.Point{}, false
	}
	return g.Shape.ConnectionPoint(), geom.Point{X: mouseWx, Y: mouseWy}, true
}

func (e *Engine) IsConnecting() bool {
	_, ok := e.gesture.(ConnectingFrom)
	return ok
}

// --- Selected-shape mutations ---

func (e *Engine) ScaleSelected(delta float64) {
	if e.selected != nil {
		e.selected.ScaleBy(delta)
	}
}

func (e *Engine) RotateSelected(deltaDeg float64) {
	if e.selected != nil {
		e.selected.Rotate(deltaDeg)
	}
}

// DeleteSelected removes the selected shape, cascading to its connections.
func (e *Engine) DeleteSelected() bool {
	if e.selected == nil {
		return false
	}
	e.scene.DeleteShape(e.selected)
	e.selected = nil
	e.setStatus("Shape deleted")
	return true
}

// --- Viewport commands ---

// ZoomViewport zooms about the screen cursor position.
func (e *Engine) ZoomViewport(delta, cx, cy float64) {
	e.view.ZoomAt(delta, cx, cy)
}

func (e *Engine) ResetViewport() {
	e.view.Reset()
}

// ScreenToWorld converts through the current viewport.
func (e *Engine) ScreenToWorld(sx, sy float64) (float64, float64) {
	return e.view.ScreenToWorld(sx, sy)
}

// WorldToScreen converts through the current viewport.
func (e *Engine) WorldToScreen(wx, wy float64) (float64, float64) {
	return e.view.WorldToScreen(wx, wy)
}

// --- Last click ---

func (e *Engine) RecordLastClick(wx, wy float64) {
	e.lastClick = &geom.Point{X: wx, Y: wy}
}

func (e *Engine) LastClick() (geom.Point, bool) {
	if e.lastClick == nil {
		return geom.Point{}, false
	}
	return *e.lastClick, true
}

// --- Scene management ---

// SetScene replaces the scene and resets interaction state. The viewport is
// left alone; it is reset only by explicit command.
func (e *Engine) SetScene(s *scene.Scene) {
	e.scene = s
	e.selected = nil
	e.gesture = Idle{}
}

func (e *Engine) ClearScene() {
	e.scene.Clear()
	e.selected = nil
	e.gesture = Idle{}
	e.setStatus("Scene cleared")
}

// --- Persistence ---

func (e *Engine) FilePath() string { return e.filePath }

// Save writes the scene to path, or to the remembered path when path is
// empty. A successful save remembers the path.
func (e *Engine) Save(path string) error {
	if path == "" {
		path = e.filePath
	}
	if path == "" {
		return ErrNoPath
	}
	if err := scene.SaveFile(e.scene, path); err != nil {
		e.setStatus("Failed to save: %v", err)
		return err
	}
	e.filePath = path
	e.setStatus("Saved to %s", path)
	return nil
}

// Load reads a scene from path. A missing or malformed file falls back to an
// empty scene with a status message; only unexpected I/O failures propagate.
func (e *Engine) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			e.SetScene(scene.New())
			e.setStatus("File %s not found. Starting with empty scene.", path)
			return nil
		}
		return fmt.Errorf("read scene file: %w", err)
	}

	s, err := scene.Unmarshal(data)
	if err != nil {
		e.SetScene(scene.New())
		e.setStatus("Error loading scene: %v", err)
		return nil
	}

	e.SetScene(s)
	e.filePath = path
	e.setStatus("Loaded from %s", path)
	return nil
}
