package scene

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/planemotion/planemotion/backend-go/internal/shape"
)

// Document is the persisted form of a scene. Connection endpoints are
// positional indices into the shapes array as serialized; the indices carry
// no identity beyond the enumeration order at save time.
type Document struct {
	Shapes      []shape.Record     `json:"shapes"`
	Connections []ConnectionRecord `json:"connections"`
}

type ConnectionRecord struct {
	Source    int         `json:"source"`
	Target    int         `json:"target"`
	Color     shape.Color `json:"color"`
	LineWidth float64     `json:"line_width"`
}

// Document converts the live scene to its persisted form.
func (s *Scene) Document() Document {
	doc := Document{
		Shapes:      make([]shape.Record, 0, len(s.shapes)),
		Connections: make([]ConnectionRecord, 0, len(s.connections)),
	}

	indexByID := make(map[string]int, len(s.shapes))
	for i, sh := range s.shapes {
		indexByID[sh.ID()] = i
		doc.Shapes = append(doc.Shapes, sh.Record())
	}

	for _, c := range s.connections {
		doc.Connections = append(doc.Connections, ConnectionRecord{
			Source:    indexByID[c.Source.ID()],
			Target:    indexByID[c.Target.ID()],
			Color:     c.Color,
			LineWidth: c.LineWidth,
		})
	}

	return doc
}

// FromDocument rebuilds a scene from its persisted form. Shape records with
// an unknown kind and connection records with an out-of-range index are
// dropped with a warning; loading always produces a usable scene.
func FromDocument(doc Document) *Scene {
	s := New()

	for _, rec := range doc.Shapes {
		sh, ok := shape.FromRecord(rec)
		if !ok {
			slog.Warn("dropping shape record with unknown kind", "kind", rec.Kind)
			continue
		}
		s.AddShape(sh)
	}

	for _, rec := range doc.Connections {
		if rec.Source < 0 || rec.Source >= len(s.shapes) ||
			rec.Target < 0 || rec.Target >= len(s.shapes) {
			slog.Warn("dropping connection record with out-of-range index",
				"source", rec.Source, "target", rec.Target, "shapes", len(s.shapes))
			continue
		}
		source := s.shapes[rec.Source]
		target := s.shapes[rec.Target]
		conn, err := s.Connect(source, target)
		if err != nil {
			slog.Warn("dropping invalid connection record", "error", err)
			continue
		}
		conn.Color = rec.Color
		if rec.LineWidth > 0 {
			conn.LineWidth = rec.LineWidth
		}
	}

	return s
}

// Marshal serializes the scene document to JSON.
func Marshal(s *Scene) ([]byte, error) {
	data, err := json.MarshalIndent(s.Document(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal scene: %w", err)
	}
	return data, nil
}

// Unmarshal rebuilds a scene from document JSON.
func Unmarshal(data []byte) (*Scene, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal scene: %w", err)
	}
	return FromDocument(doc), nil
}

// SaveFile writes the scene document to a file.
func SaveFile(s *Scene, path string) error {
	data, err := Marshal(s)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write scene file: %w", err)
	}
	return nil
}

// LoadFile reads a scene document from a file.
func LoadFile(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene file: %w", err)
	}
	return Unmarshal(data)
}
