package export

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/planemotion/planemotion/backend-go/internal/scene"
	"github.com/planemotion/planemotion/backend-go/internal/shape"
)

func buildScene(t *testing.T) *scene.Scene {
	t.Helper()
	s := scene.New()
	c := shape.NewCircle(100, 100, 30, shape.Color{100, 100, 255})
	r := shape.NewRectangle(300, 100, 60, 40, shape.Color{255, 100, 100})
	s.AddShape(c)
	s.AddShape(r)
	if _, err := s.Connect(c, r); err != nil {
		t.Fatalf("connect: %v", err)
	}
	return s
}

func TestRenderSVG(t *testing.T) {
	svg := string(RenderSVG(buildScene(t)))

	if !strings.HasPrefix(svg, `<svg xmlns="http://www.w3.org/2000/svg"`) {
		t.Errorf("missing svg root element:\n%s", svg)
	}
	if !strings.Contains(svg, `<circle cx="100" cy="100" r="30" fill="rgb(100,100,255)"/>`) {
		t.Errorf("missing circle element:\n%s", svg)
	}
	if !strings.Contains(svg, `<polygon points="`) {
		t.Errorf("missing polygon element:\n%s", svg)
	}
	if !strings.Contains(svg, `<line x1="100" y1="100" x2="300" y2="100"`) {
		t.Errorf("missing connection line:\n%s", svg)
	}

	// Connections paint before shapes
	if strings.Index(svg, "<line") > strings.Index(svg, "<circle") {
		t.Error("connections should render under shapes")
	}
}

func TestRenderSVGEmptyScene(t *testing.T) {
	svg := string(RenderSVG(scene.New()))
	if !strings.Contains(svg, `viewBox="0 0 100 100"`) {
		t.Errorf("empty scene should get a default viewBox:\n%s", svg)
	}
}

func TestExportSVGHandler(t *testing.T) {
	doc, err := scene.Marshal(buildScene(t))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/export/svg?name=My%20Diagram%21", strings.NewReader(string(doc)))
	rec := httptest.NewRecorder()
	NewHandler().ExportSVG(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("content type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, `filename="My-Diagram-.svg"`) {
		t.Errorf("content disposition = %q", cd)
	}
	if !strings.Contains(rec.Body.String(), "<svg") {
		t.Error("body should contain svg markup")
	}
}

func TestExportSVGHandlerRejectsGarbage(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/export/svg", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	NewHandler().ExportSVG(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
