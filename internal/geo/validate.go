package geo

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// ErrInvalidGeometry is returned for shapes that no text format can carry
// back: too few positions, or coordinates that are not finite numbers.
var ErrInvalidGeometry = errors.New("invalid geometry")

// Validate checks that g is one of the editable families with enough
// positions and only finite coordinates. It holds in either frame.
func Validate(g orb.Geometry) error {
	switch g := g.(type) {
	case orb.Point:
		return checkPoint(g)
	case orb.LineString:
		if len(g) < 2 {
			return fmt.Errorf("%w: line string needs at least 2 positions", ErrInvalidGeometry)
		}
		return checkPoints(g)
	case orb.Polygon:
		if len(g) == 0 {
			return fmt.Errorf("%w: polygon has no rings", ErrInvalidGeometry)
		}
		for _, r := range g {
			if len(r) < 4 {
				return fmt.Errorf("%w: polygon ring needs at least 4 positions", ErrInvalidGeometry)
			}
			if err := checkPoints(r); err != nil {
				return err
			}
		}
		return nil
	case nil:
		return fmt.Errorf("%w: no geometry", ErrInvalidGeometry)
	}
	return fmt.Errorf("%w: %s", ErrUnknownType, g.GeoJSONType())
}

func checkPoints(ps []orb.Point) error {
	for _, p := range ps {
		if err := checkPoint(p); err != nil {
			return err
		}
	}
	return nil
}

func checkPoint(p orb.Point) error {
	for _, v := range p {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: coordinate %v is not finite", ErrInvalidGeometry, v)
		}
	}
	return nil
}
