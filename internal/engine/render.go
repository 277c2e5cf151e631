package engine

import (
	"encoding/json"

	"github.com/planemotion/planemotion/backend-go/internal/geom"
	"github.com/planemotion/planemotion/backend-go/internal/shape"
)

// Frame is the render-ready snapshot of everything a frontend needs to draw:
// z-ordered shapes with resolved vertices, connections with resolved
// endpoints, the selection, the connection preview line, the viewport, and
// the status line. Building a frame never mutates engine state.
type Frame struct {
	Shapes      []ShapeView      `json:"shapes"`
	Connections []ConnectionView `json:"connections"`
	Preview     *Line            `json:"preview,omitempty"`
	SelectedID  string           `json:"selectedId,omitempty"`
	Zoom        float64          `json:"zoom"`
	OffsetX     float64          `json:"offsetX"`
	OffsetY     float64          `json:"offsetY"`
	Status      string           `json:"status,omitempty"`
}

// ShapeView is a shape resolved for drawing, in painter's order.
type ShapeView struct {
	ID       string       `json:"id"`
	Kind     shape.Kind   `json:"kind"`
	Center   geom.Point   `json:"center"`
	Vertices []geom.Point `json:"vertices"`
	Color    shape.Color  `json:"color"`
	Selected bool         `json:"selected"`
}

// ConnectionView is a connection with endpoints resolved to world points.
type ConnectionView struct {
	From      geom.Point  `json:"from"`
	To        geom.Point  `json:"to"`
	Color     shape.Color `json:"color"`
	LineWidth float64     `json:"lineWidth"`
}

type Line struct {
	From geom.Point `json:"from"`
	To   geom.Point `json:"to"`
}

// Frame builds the current snapshot. The mouse position (world coordinates)
// anchors the connection preview line, when one is active.
func (e *Engine) Frame(mouseWx, mouseWy float64) Frame {
	shapes := e.scene.Shapes()
	conns := e.scene.Connections()

	f := Frame{
		Shapes:      make([]ShapeView, 0, len(shapes)),
		Connections: make([]ConnectionView, 0, len(conns)),
		Zoom:        e.view.Zoom(),
		Status:      e.status,
	}
	f.OffsetX, f.OffsetY = e.view.Offset()

	for _, sh := range shapes {
		selected := e.selected != nil && e.selected.ID() == sh.ID()
		f.Shapes = append(f.Shapes, ShapeView{
			ID:       sh.ID(),
			Kind:     sh.Kind(),
			Center:   sh.Position(),
			Vertices: sh.Vertices(),
			Color:    sh.Color(),
			Selected: selected,
		})
		if selected {
			f.SelectedID = sh.ID()
		}
	}

	for _, c := range conns {
		from, to := c.LineEndpoints()
		f.Connections = append(f.Connections, ConnectionView{
			From:      from,
			To:        to,
			Color:     c.Color,
			LineWidth: c.LineWidth,
		})
	}

	if from, to, ok := e.ConnectionPreview(mouseWx, mouseWy); ok {
		f.Preview = &Line{From: from, To: to}
	}

	return f
}

// FrameJSON serializes the current frame for the wasm boundary.
func (e *Engine) FrameJSON(mouseWx, mouseWy float64) string {
	data, err := json.Marshal(e.Frame(mouseWx, mouseWy))
	if err != nil {
		return "{}"
	}
	return string(data)
}
