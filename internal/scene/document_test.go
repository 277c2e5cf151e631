package scene

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/planemotion/planemotion/backend-go/internal/shape"
)

func sampleScene(t *testing.T) *Scene {
	t.Helper()
	s := New()
	c := shape.NewCircle(10, 20, 30, shape.Color{100, 100, 255})
	r := shape.NewRectangle(100, 50, 60, 40, shape.Color{255, 100, 100})
	r.Rotate(45)
	s.AddShape(c)
	s.AddShape(r)
	if _, err := s.Connect(c, r); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestDocumentRoundTrip(t *testing.T) {
	s := sampleScene(t)

	loaded := FromDocument(s.Document())

	shapes := loaded.Shapes()
	if len(shapes) != 2 {
		t.Fatalf("shapes = %d, want 2", len(shapes))
	}
	if shapes[0].Kind() != shape.KindCircle || shapes[1].Kind() != shape.KindRectangle {
		t.Error("shape order or kinds changed across round trip")
	}
	orig := s.Shapes()
	for i := range shapes {
		if shapes[i].Position() != orig[i].Position() {
			t.Errorf("shape %d position = %+v, want %+v", i, shapes[i].Position(), orig[i].Position())
		}
		if shapes[i].Scale() != orig[i].Scale() || shapes[i].Rotation() != orig[i].Rotation() {
			t.Errorf("shape %d scale/rotation changed", i)
		}
	}

	conns := loaded.Connections()
	if len(conns) != 1 {
		t.Fatalf("connections = %d, want 1", len(conns))
	}
	if conns[0].Source.ID() != shapes[0].ID() || conns[0].Target.ID() != shapes[1].ID() {
		t.Error("connection endpoints do not match loaded shapes")
	}
}

func TestSaveLoadSaveIsStable(t *testing.T) {
	s := sampleScene(t)

	first, err := Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	loaded, err := Unmarshal(first)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Marshal(loaded)
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(first, second) {
		t.Errorf("save(load(save)) differs:\n%s\n---\n%s", first, second)
	}
}

func TestLoadDropsOutOfRangeConnection(t *testing.T) {
	raw := `{
		"shapes": [
			{"kind": "circle", "x": 0, "y": 0, "radius": 30, "color": [0,0,0], "scale": 1, "rotation_deg": 0},
			{"kind": "circle", "x": 100, "y": 0, "radius": 30, "color": [0,0,0], "scale": 1, "rotation_deg": 0}
		],
		"connections": [
			{"source": 0, "target": 5, "color": [200,200,200], "line_width": 2},
			{"source": 0, "target": 1, "color": [200,200,200], "line_width": 2},
			{"source": -1, "target": 1, "color": [200,200,200], "line_width": 2}
		]
	}`

	s, err := Unmarshal([]byte(raw))
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Shapes()) != 2 {
		t.Fatalf("shapes = %d, want 2", len(s.Shapes()))
	}
	if len(s.Connections()) != 1 {
		t.Fatalf("connections = %d, want only the in-range one", len(s.Connections()))
	}
}

func TestLoadDropsUnknownKind(t *testing.T) {
	raw := `{
		"shapes": [
			{"kind": "hexagon", "x": 0, "y": 0, "color": [0,0,0], "scale": 1},
			{"kind": "rectangle", "x": 5, "y": 5, "width": 60, "height": 40, "color": [0,0,0], "scale": 1}
		],
		"connections": []
	}`

	s, err := Unmarshal([]byte(raw))
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Shapes()) != 1 {
		t.Fatalf("shapes = %d, want 1 after dropping unknown kind", len(s.Shapes()))
	}
	if s.Shapes()[0].Kind() != shape.KindRectangle {
		t.Errorf("kept shape kind = %v, want rectangle", s.Shapes()[0].Kind())
	}
}

func TestMalformedDocument(t *testing.T) {
	if _, err := Unmarshal([]byte(`{"shapes": "nope"`)); err == nil {
		t.Error("malformed JSON should return an error")
	}
}

func TestSaveAndLoadFile(t *testing.T) {
	s := sampleScene(t)
	path := filepath.Join(t.TempDir(), "scene.json")

	if err := SaveFile(s, path); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Shapes()) != 2 || len(loaded.Connections()) != 1 {
		t.Errorf("loaded %d shapes, %d connections; want 2, 1",
			len(loaded.Shapes()), len(loaded.Connections()))
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("loading a missing file should return an error")
	}
}
