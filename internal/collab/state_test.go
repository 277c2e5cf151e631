package collab

import (
	"strings"
	"testing"

	"github.com/planemotion/planemotion/backend-go/internal/scene"
	"github.com/planemotion/planemotion/backend-go/internal/shape"
)

func circleRecord(x, y float64) *shape.Record {
	return &shape.Record{
		Kind:   shape.KindCircle,
		X:      x,
		Y:      y,
		Radius: 30,
		Color:  shape.Color{100, 100, 255},
		Scale:  1.0,
	}
}

func mustCreate(t *testing.T, ss *SceneState, x, y float64) string {
	t.Helper()
	op := &Operation{Type: OpShapeCreate, Shape: circleRecord(x, y)}
	if _, err := ss.Apply(op); err != nil {
		t.Fatalf("create: %v", err)
	}
	if op.ShapeID == "" {
		t.Fatal("create did not assign a shape id")
	}
	return op.ShapeID
}

func TestApplyShapeCreateAssignsID(t *testing.T) {
	ss := NewSceneState(scene.New())

	id := mustCreate(t, ss, 100, 100)
	if !strings.HasPrefix(id, "shape_") {
		t.Errorf("shape id = %q, want shape_ prefix", id)
	}
	if ss.ServerSeq() != 1 {
		t.Errorf("server seq = %d, want 1", ss.ServerSeq())
	}
	if !ss.Dirty() {
		t.Error("state should be dirty after a create")
	}
}

func TestApplyShapeTransform(t *testing.T) {
	ss := NewSceneState(scene.New())
	id := mustCreate(t, ss, 100, 100)

	x, scale, rot := 250.0, 2.0, 45.0
	op := &Operation{Type: OpShapeTransform, ShapeID: id, X: &x, Scale: &scale, Rotation: &rot}
	if _, err := ss.Apply(op); err != nil {
		t.Fatalf("transform: %v", err)
	}

	sh := ss.scene.ShapeByID(id)
	if got := sh.Position(); got.X != 250 || got.Y != 100 {
		t.Errorf("position = %v, want (250, 100)", got)
	}
	if sh.Scale() != 2.0 {
		t.Errorf("scale = %v, want 2", sh.Scale())
	}
	if sh.Rotation() != 45 {
		t.Errorf("rotation = %v, want 45", sh.Rotation())
	}
}

func TestApplyTransformUnknownShape(t *testing.T) {
	ss := NewSceneState(scene.New())

	x := 10.0
	if _, err := ss.Apply(&Operation{Type: OpShapeTransform, ShapeID: "shape_missing", X: &x}); err == nil {
		t.Fatal("expected error for unknown shape")
	}
	if ss.ServerSeq() != 0 {
		t.Error("failed op must not advance the server seq")
	}
}

func TestApplyConnectionLifecycle(t *testing.T) {
	ss := NewSceneState(scene.New())
	a := mustCreate(t, ss, 0, 0)
	b := mustCreate(t, ss, 200, 0)

	if _, err := ss.Apply(&Operation{Type: OpConnectionCreate, SourceID: a, TargetID: b}); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if _, err := ss.Apply(&Operation{Type: OpConnectionCreate, SourceID: b, TargetID: a}); err == nil {
		t.Error("duplicate connection should be rejected")
	}
	if _, err := ss.Apply(&Operation{Type: OpConnectionCreate, SourceID: a, TargetID: a}); err == nil {
		t.Error("self connection should be rejected")
	}

	if _, err := ss.Apply(&Operation{Type: OpConnectionDelete, SourceID: a, TargetID: b}); err != nil {
		t.Fatalf("delete connection: %v", err)
	}
	if len(ss.scene.Connections()) != 0 {
		t.Error("connection should be gone")
	}
}

func TestApplyShapeDeleteCascades(t *testing.T) {
	ss := NewSceneState(scene.New())
	a := mustCreate(t, ss, 0, 0)
	b := mustCreate(t, ss, 200, 0)
	if _, err := ss.Apply(&Operation{Type: OpConnectionCreate, SourceID: a, TargetID: b}); err != nil {
		t.Fatalf("connect: %v", err)
	}

	if _, err := ss.Apply(&Operation{Type: OpShapeDelete, ShapeID: a}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(ss.scene.Shapes()) != 1 {
		t.Errorf("shapes = %d, want 1", len(ss.scene.Shapes()))
	}
	if len(ss.scene.Connections()) != 0 {
		t.Error("deleting an endpoint should drop its connections")
	}
}

func TestApplySceneClear(t *testing.T) {
	ss := NewSceneState(scene.New())
	mustCreate(t, ss, 0, 0)
	mustCreate(t, ss, 50, 50)

	if _, err := ss.Apply(&Operation{Type: OpSceneClear}); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if len(ss.scene.Shapes()) != 0 {
		t.Error("scene should be empty after clear")
	}
}

func TestApplyUnknownOpType(t *testing.T) {
	ss := NewSceneState(scene.New())
	if _, err := ss.Apply(&Operation{Type: "shape.sparkle"}); err == nil {
		t.Fatal("expected error for unknown op type")
	}
}

func TestSnapshotClearsDirty(t *testing.T) {
	ss := NewSceneState(scene.New())
	mustCreate(t, ss, 0, 0)

	data, err := ss.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("snapshot should not be empty")
	}
	if ss.Dirty() {
		t.Error("snapshot should clear the dirty flag")
	}

	restored, err := scene.Unmarshal(data)
	if err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}
	if len(restored.Shapes()) != 1 {
		t.Errorf("restored shapes = %d, want 1", len(restored.Shapes()))
	}
}
