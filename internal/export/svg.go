package export

import (
	"fmt"
	"strings"

	"github.com/planemotion/planemotion/backend-go/internal/geom"
	"github.com/planemotion/planemotion/backend-go/internal/scene"
	"github.com/planemotion/planemotion/backend-go/internal/shape"
)

// svgMargin pads the viewBox so strokes at the scene edge are not clipped.
const svgMargin = 20.0

// RenderSVG renders a scene as a standalone SVG document in world
// coordinates. Connections are drawn under shapes, matching the editor's
// paint order.
func RenderSVG(s *scene.Scene) []byte {
	var b strings.Builder

	box := sceneBounds(s)
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%s %s %s %s">`+"\n",
		num(box.X), num(box.Y), num(box.Width), num(box.Height))

	for _, conn := range s.Connections() {
		from, to := conn.LineEndpoints()
		fmt.Fprintf(&b, `  <line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="%s"/>`+"\n",
			num(from.X), num(from.Y), num(to.X), num(to.Y), rgb(conn.Color), num(conn.LineWidth))
	}

	for _, sh := range s.Shapes() {
		writeShape(&b, sh)
	}

	b.WriteString("</svg>\n")
	return []byte(b.String())
}

func writeShape(b *strings.Builder, sh shape.Shape) {
	switch c := sh.(type) {
	case *shape.Circle:
		center := c.Position()
		fmt.Fprintf(b, `  <circle cx="%s" cy="%s" r="%s" fill="%s"/>`+"\n",
			num(center.X), num(center.Y), num(c.Radius()), rgb(c.Color()))
	default:
		points := make([]string, 0, len(sh.Vertices()))
		for _, v := range sh.Vertices() {
			points = append(points, num(v.X)+","+num(v.Y))
		}
		fmt.Fprintf(b, `  <polygon points="%s" fill="%s"/>`+"\n",
			strings.Join(points, " "), rgb(sh.Color()))
	}
}

func sceneBounds(s *scene.Scene) geom.Rect {
	var box geom.Rect
	first := true
	for _, sh := range s.Shapes() {
		sb := geom.BoundsOf(sh.Vertices())
		if first {
			box = sb
			first = false
		} else {
			box = box.Union(sb)
		}
	}
	if first {
		// Empty scene still gets a valid viewBox
		return geom.Rect{X: 0, Y: 0, Width: 100, Height: 100}
	}
	return geom.Rect{
		X:      box.X - svgMargin,
		Y:      box.Y - svgMargin,
		Width:  box.Width + 2*svgMargin,
		Height: box.Height + 2*svgMargin,
	}
}

func rgb(c shape.Color) string {
	return fmt.Sprintf("rgb(%d,%d,%d)", c[0], c[1], c[2])
}

// num trims trailing zeros so coordinates stay readable.
func num(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.3f", v), "0"), ".")
}
