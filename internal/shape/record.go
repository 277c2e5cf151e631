package shape

// Record is the persisted form of a shape. Base dimensions are stored
// unscaled; only the fields for the record's kind are populated. A missing
// rotation_deg decodes to 0 for documents written before rotation existed.
type Record struct {
	Kind        Kind    `json:"kind"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Radius      float64 `json:"radius,omitempty"`
	Width       float64 `json:"width,omitempty"`
	Height      float64 `json:"height,omitempty"`
	TopWidth    float64 `json:"top_width,omitempty"`
	BottomWidth float64 `json:"bottom_width,omitempty"`
	Color       Color   `json:"color"`
	Scale       float64 `json:"scale"`
	RotationDeg float64 `json:"rotation_deg"`
}

// FromRecord builds a shape from its persisted form. The second return is
// false for an unknown kind; callers drop the record and continue.
func FromRecord(rec Record) (Shape, bool) {
	switch rec.Kind {
	case KindCircle:
		c := NewCircle(rec.X, rec.Y, rec.Radius, rec.Color)
		c.restore(rec.Scale, rec.RotationDeg)
		return c, true
	case KindRectangle:
		r := NewRectangle(rec.X, rec.Y, rec.Width, rec.Height, rec.Color)
		r.restore(rec.Scale, rec.RotationDeg)
		return r, true
	case KindTrapezoid:
		t := NewTrapezoid(rec.X, rec.Y, rec.TopWidth, rec.BottomWidth, rec.Height, rec.Color)
		t.restore(rec.Scale, rec.RotationDeg)
		return t, true
	default:
		return nil, false
	}
}
