package shape

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/planemotion/planemotion/backend-go/internal/geom"
)

const tolerance = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < tolerance
}

func allShapes() []Shape {
	return []Shape{
		NewCircle(10, 20, 30, Color{100, 100, 255}),
		NewRectangle(100, 50, 60, 40, Color{255, 100, 100}),
		NewTrapezoid(-40, 7, 50, 90, 50, Color{120, 200, 140}),
	}
}

func TestContainsOwnCenter(t *testing.T) {
	scales := []float64{0.25, 0.5, 1, 2.5, 4}
	rotations := []float64{0, 33, 90, 180, 271.5}

	for _, sh := range allShapes() {
		for _, scale := range scales {
			for _, rot := range rotations {
				sh.SetScale(scale)
				sh.Rotate(rot - sh.Rotation())
				c := sh.Position()
				if !sh.ContainsPoint(c.X, c.Y) {
					t.Errorf("%s scale=%v rotation=%v: center not contained", sh.Kind(), scale, rot)
				}
			}
		}
	}
}

func TestCircleContains(t *testing.T) {
	c := NewCircle(0, 0, 30, Color{})
	if !c.ContainsPoint(30, 0) {
		t.Error("point on radius should be contained")
	}
	if c.ContainsPoint(30.001, 0) {
		t.Error("point past radius should not be contained")
	}

	c.SetScale(2)
	if !c.ContainsPoint(59, 0) {
		t.Error("scaled radius should contain (59, 0)")
	}
	if c.ContainsPoint(61, 0) {
		t.Error("scaled radius should not contain (61, 0)")
	}
}

func TestRectangleContainsRotated(t *testing.T) {
	r := NewRectangle(0, 0, 60, 40, Color{})
	r.Rotate(90)

	// After a quarter turn the long axis is vertical.
	if !r.ContainsPoint(0, 29) {
		t.Error("rotated rectangle should contain (0, 29)")
	}
	if r.ContainsPoint(29, 0) {
		t.Error("rotated rectangle should not contain (29, 0)")
	}
}

func TestTrapezoidContains(t *testing.T) {
	tr := NewTrapezoid(0, 0, 50, 90, 50, Color{})

	// Wider at the bottom: a point past the top half-width but inside the
	// bottom half-width is inside only below the center line.
	if !tr.ContainsPoint(40, 20) {
		t.Error("trapezoid should contain (40, 20)")
	}
	if tr.ContainsPoint(40, -20) {
		t.Error("trapezoid should not contain (40, -20) near narrow top")
	}
	if tr.ContainsPoint(0, 30) {
		t.Error("trapezoid should not contain point below bottom edge")
	}
}

func TestScaleClamp(t *testing.T) {
	sh := NewCircle(0, 0, 30, Color{})

	for i := 0; i < 100; i++ {
		sh.ScaleBy(0.5)
	}
	if sh.Scale() != MaxScale {
		t.Errorf("scale = %v, want clamp at %v", sh.Scale(), MaxScale)
	}

	for i := 0; i < 100; i++ {
		sh.ScaleBy(-0.5)
	}
	if sh.Scale() != MinScale {
		t.Errorf("scale = %v, want clamp at %v", sh.Scale(), MinScale)
	}
}

func TestRotateNormalization(t *testing.T) {
	sh := NewRectangle(0, 0, 60, 40, Color{})

	sh.Rotate(-90)
	if !almostEqual(sh.Rotation(), 270) {
		t.Errorf("rotation = %v, want 270", sh.Rotation())
	}
	sh.Rotate(450)
	if !almostEqual(sh.Rotation(), 0) {
		t.Errorf("rotation = %v, want 0", sh.Rotation())
	}
	if sh.Rotation() < 0 || sh.Rotation() >= 360 {
		t.Errorf("rotation %v outside [0, 360)", sh.Rotation())
	}
}

func TestFourQuarterTurnsRestoreVertices(t *testing.T) {
	r := NewRectangle(5, -3, 60, 40, Color{})
	before := r.Vertices()

	for i := 0; i < 4; i++ {
		r.Rotate(90)
	}

	after := r.Vertices()
	if len(after) != len(before) {
		t.Fatalf("vertex count changed: %d -> %d", len(before), len(after))
	}
	for i := range before {
		if !almostEqual(before[i].X, after[i].X) || !almostEqual(before[i].Y, after[i].Y) {
			t.Errorf("vertex %d moved: %+v -> %+v", i, before[i], after[i])
		}
	}
}

func TestCircleVertexCount(t *testing.T) {
	c := NewCircle(0, 0, 30, Color{})
	verts := c.Vertices()
	if len(verts) != 32 {
		t.Fatalf("circle vertices = %d, want 32", len(verts))
	}
	for i, v := range verts {
		if d := v.Dist(geom.Point{}); !almostEqual(d, 30) {
			t.Errorf("vertex %d at distance %v, want 30", i, d)
		}
	}
}

func TestRecordRoundTrip(t *testing.T) {
	for _, sh := range allShapes() {
		sh.SetScale(1.5)
		sh.Rotate(45)

		restored, ok := FromRecord(sh.Record())
		if !ok {
			t.Fatalf("%s: FromRecord failed", sh.Kind())
		}
		if restored.Kind() != sh.Kind() {
			t.Errorf("kind = %v, want %v", restored.Kind(), sh.Kind())
		}
		if restored.Position() != sh.Position() {
			t.Errorf("%s position = %+v, want %+v", sh.Kind(), restored.Position(), sh.Position())
		}
		if restored.Scale() != sh.Scale() {
			t.Errorf("%s scale = %v, want %v", sh.Kind(), restored.Scale(), sh.Scale())
		}
		if restored.Rotation() != sh.Rotation() {
			t.Errorf("%s rotation = %v, want %v", sh.Kind(), restored.Rotation(), sh.Rotation())
		}
		if restored.Color() != sh.Color() {
			t.Errorf("%s color = %v, want %v", sh.Kind(), restored.Color(), sh.Color())
		}
	}
}

func TestFromRecordUnknownKind(t *testing.T) {
	if _, ok := FromRecord(Record{Kind: "hexagon"}); ok {
		t.Error("unknown kind should be rejected")
	}
}

func TestMissingRotationDefaultsToZero(t *testing.T) {
	// A record written before rotation existed.
	raw := `{"kind": "circle", "x": 1, "y": 2, "radius": 30, "color": [1, 2, 3], "scale": 1}`
	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	sh, ok := FromRecord(rec)
	if !ok {
		t.Fatal("FromRecord failed")
	}
	if sh.Rotation() != 0 {
		t.Errorf("rotation = %v, want 0", sh.Rotation())
	}
}

func TestRecordClampsHandEditedValues(t *testing.T) {
	rec := Record{Kind: KindCircle, Radius: 30, Scale: 99, RotationDeg: -45}
	sh, ok := FromRecord(rec)
	if !ok {
		t.Fatal("FromRecord failed")
	}
	if sh.Scale() != MaxScale {
		t.Errorf("scale = %v, want clamp at %v", sh.Scale(), MaxScale)
	}
	if !almostEqual(sh.Rotation(), 315) {
		t.Errorf("rotation = %v, want 315", sh.Rotation())
	}
}

func TestShapeIDsAreUnique(t *testing.T) {
	a := NewCircle(0, 0, 30, Color{})
	b := NewCircle(0, 0, 30, Color{})
	if a.ID() == b.ID() {
		t.Error("two shapes share an id")
	}
	if a.ID() == "" {
		t.Error("shape id is empty")
	}
}
