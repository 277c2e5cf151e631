package collab

import (
	"fmt"
	"sync"
	"time"

	"github.com/planemotion/planemotion/backend-go/internal/scene"
	"github.com/planemotion/planemotion/backend-go/internal/shape"
)

// SceneState holds the authoritative scene for a room. All mutations go
// through Apply so the server sequence and dirty flag stay consistent.
type SceneState struct {
	mu        sync.RWMutex
	scene     *scene.Scene
	serverSeq int64
	dirty     bool
}

func NewSceneState(s *scene.Scene) *SceneState {
	return &SceneState{scene: s}
}

// Snapshot serializes the current scene. Clears the dirty flag, so the
// caller is expected to persist the result.
func (ss *SceneState) Snapshot() ([]byte, error) {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	data, err := scene.Marshal(ss.scene)
	if err != nil {
		return nil, err
	}
	ss.dirty = false
	return data, nil
}

// Document serializes the scene without touching the dirty flag.
func (ss *SceneState) Document() ([]byte, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return scene.Marshal(ss.scene)
}

func (ss *SceneState) Dirty() bool {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return ss.dirty
}

func (ss *SceneState) ServerSeq() int64 {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return ss.serverSeq
}

// Apply validates and applies op, returning the new server sequence.
// For shape.create it assigns the new shape's ID into op so the caller
// broadcasts the authoritative identity.
func (ss *SceneState) Apply(op *Operation) (int64, error) {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if err := ss.applyLocked(op); err != nil {
		return 0, err
	}

	ss.serverSeq++
	ss.dirty = true
	return ss.serverSeq, nil
}

func (ss *SceneState) applyLocked(op *Operation) error {
	switch op.Type {
	case OpShapeCreate:
		return ss.applyShapeCreate(op)
	case OpShapeTransform:
		return ss.applyShapeTransform(op)
	case OpShapeDelete:
		return ss.applyShapeDelete(op)
	case OpConnectionCreate:
		return ss.applyConnectionCreate(op)
	case OpConnectionDelete:
		return ss.applyConnectionDelete(op)
	case OpSceneClear:
		ss.scene.Clear()
		return nil
	default:
		return fmt.Errorf("unknown operation type: %s", op.Type)
	}
}

func (ss *SceneState) applyShapeCreate(op *Operation) error {
	if op.Shape == nil {
		return fmt.Errorf("shape.create without shape")
	}

	sh, ok := shape.FromRecord(*op.Shape)
	if !ok {
		return fmt.Errorf("unknown shape kind: %s", op.Shape.Kind)
	}

	ss.scene.AddShape(sh)
	op.ShapeID = sh.ID()
	return nil
}

func (ss *SceneState) applyShapeTransform(op *Operation) error {
	sh := ss.scene.ShapeByID(op.ShapeID)
	if sh == nil {
		return fmt.Errorf("shape not found: %s", op.ShapeID)
	}

	if op.X != nil || op.Y != nil {
		pos := sh.Position()
		if op.X != nil {
			pos.X = *op.X
		}
		if op.Y != nil {
			pos.Y = *op.Y
		}
		sh.SetPosition(pos)
	}
	if op.Scale != nil {
		sh.SetScale(*op.Scale)
	}
	if op.Rotation != nil {
		sh.Rotate(*op.Rotation - sh.Rotation())
	}
	return nil
}

func (ss *SceneState) applyShapeDelete(op *Operation) error {
	sh := ss.scene.ShapeByID(op.ShapeID)
	if sh == nil {
		return fmt.Errorf("shape not found: %s", op.ShapeID)
	}

	ss.scene.DeleteShape(sh)
	return nil
}

func (ss *SceneState) applyConnectionCreate(op *Operation) error {
	source := ss.scene.ShapeByID(op.SourceID)
	if source == nil {
		return fmt.Errorf("shape not found: %s", op.SourceID)
	}
	target := ss.scene.ShapeByID(op.TargetID)
	if target == nil {
		return fmt.Errorf("shape not found: %s", op.TargetID)
	}

	_, err := ss.scene.Connect(source, target)
	return err
}

func (ss *SceneState) applyConnectionDelete(op *Operation) error {
	for _, conn := range ss.scene.Connections() {
		if conn.Source.ID() == op.SourceID && conn.Target.ID() == op.TargetID {
			ss.scene.DeleteConnection(conn)
			return nil
		}
	}
	return fmt.Errorf("connection not found: %s -> %s", op.SourceID, op.TargetID)
}

// GetServerTimestamp returns the current server timestamp.
func GetServerTimestamp() int64 {
	return time.Now().UnixMilli()
}
