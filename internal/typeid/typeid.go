package typeid

import (
	"fmt"

	"go.jetify.com/typeid/v2"
)

const (
	PrefixUser       = "user"
	PrefixDiagram    = "diag"
	PrefixSnapshot   = "snap"
	PrefixOp         = "op"
	PrefixShape      = "shape"
	PrefixConnection = "conn"
)

func New(prefix string) string {
	id := typeid.MustGenerate(prefix)
	return id.String()
}

func NewUserID() string       { return New(PrefixUser) }
func NewDiagramID() string    { return New(PrefixDiagram) }
func NewSnapshotID() string   { return New(PrefixSnapshot) }
func NewOpID() string         { return New(PrefixOp) }
func NewShapeID() string      { return New(PrefixShape) }
func NewConnectionID() string { return New(PrefixConnection) }

func Validate(id, expectedPrefix string) error {
	parsed, err := typeid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid typeid %q: %w", id, err)
	}
	if parsed.Prefix() != expectedPrefix {
		return fmt.Errorf("expected prefix %q but got %q in id %q", expectedPrefix, parsed.Prefix(), id)
	}
	return nil
}
