// Package geo handles geographic data structures and coordinate conversions.
package geo

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
)

// Type is the geometry family an editable field accepts.
type Type string

const (
	Point      Type = "Point"
	LineString Type = "LineString"
	Polygon    Type = "Polygon"
)

// ErrUnknownType is returned for geometry families the editor does not support.
var ErrUnknownType = errors.New("unknown geometry type")

// ParseType validates a geometry type name as written in field configuration.
func ParseType(s string) (Type, error) {
	switch t := Type(s); t {
	case Point, LineString, Polygon:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
}

// TypeOf reports the family of an orb geometry.
// Only the three editable families are recognized.
func TypeOf(g orb.Geometry) (Type, bool) {
	switch g.(type) {
	case orb.Point:
		return Point, true
	case orb.LineString:
		return LineString, true
	case orb.Polygon:
		return Polygon, true
	}
	return "", false
}

// Feature is a single editable shape. Its geometry is always in the display frame.
type Feature struct {
	Geometry orb.Geometry
}

// NewFeature wraps a display-frame geometry.
func NewFeature(g orb.Geometry) *Feature {
	return &Feature{Geometry: g}
}

// Type returns the geometry family, or an empty Type for unsupported geometries.
func (f *Feature) Type() Type {
	if f == nil {
		return ""
	}
	t, _ := TypeOf(f.Geometry)
	return t
}

// Extent is the axis-aligned bounding box in the display frame.
func (f *Feature) Extent() orb.Bound {
	return f.Geometry.Bound()
}

// Clone returns a deep copy, so callers can mutate coordinates freely.
func (f *Feature) Clone() *Feature {
	if f == nil {
		return nil
	}
	return &Feature{Geometry: orb.Clone(f.Geometry)}
}
