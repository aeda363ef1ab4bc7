// Package format converts between serialized storage-frame geometry text and
// display-frame features.
package format

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/woozymasta/geofield/internal/geo"

	"github.com/paulmach/orb"
)

// DefaultPrecision is the number of decimals written when none is configured.
const DefaultPrecision = 7

// maxPrecision keeps the rounding factor inside float64 significant digits.
const maxPrecision = 15

// Names of the built-in adapters.
const (
	GeoJSON = "geojson"
	WKT     = "wkt"
)

// ErrUnknownFormat is returned by New for an adapter name it does not know.
var ErrUnknownFormat = errors.New("unknown geometry format")

// Adapter reads and writes a single feature. Storage and display frames are
// fixed: EPSG:4326 text on one side, EPSG:3857 features on the other.
type Adapter interface {
	// Parse returns nil without error for empty input.
	Parse(serialized string) (*geo.Feature, error)
	// Serialize never modifies f.
	Serialize(f *geo.Feature, precision int) (string, error)
}

// FormatError reports text that is not a valid geometry of the expected family.
type FormatError struct {
	Format string
	Input  string
	Err    error
}

func (e *FormatError) Error() string {
	in := e.Input
	if r := []rune(in); len(r) > 64 {
		in = string(r[:61]) + "..."
	}
	return fmt.Sprintf("malformed %s geometry %q: %v", e.Format, in, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// Names lists the adapters accepted by New.
func Names() []string {
	return []string{GeoJSON, WKT}
}

// New builds the named adapter. A non-empty family restricts Parse to that
// geometry type.
func New(name string, family geo.Type) (Adapter, error) {
	c := codec{family: family}
	switch strings.ToLower(name) {
	case "", GeoJSON:
		return geoJSONAdapter{c}, nil
	case WKT:
		return wktAdapter{c}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// codec holds the frame and family handling shared by every text format.
type codec struct {
	family geo.Type
}

// toFeature checks a decoded storage-frame geometry and projects it.
func (c codec) toFeature(g orb.Geometry) (*geo.Feature, error) {
	if g == nil {
		return nil, errors.New("no geometry")
	}
	t, ok := geo.TypeOf(g)
	if !ok {
		return nil, fmt.Errorf("unsupported geometry %s", g.GeoJSONType())
	}
	if c.family != "" && t != c.family {
		return nil, fmt.Errorf("expected %s, got %s", c.family, t)
	}
	if err := geo.Validate(g); err != nil {
		return nil, err
	}
	return geo.NewFeature(geo.GeometryToDisplay(g)), nil
}

// toStorage unprojects and rounds a copy of the feature geometry.
func (c codec) toStorage(f *geo.Feature, precision int) (orb.Geometry, error) {
	if f == nil || f.Geometry == nil {
		return nil, errors.New("no feature to serialize")
	}
	if _, ok := geo.TypeOf(f.Geometry); !ok {
		return nil, fmt.Errorf("unsupported geometry %s", f.Geometry.GeoJSONType())
	}
	if precision < 0 {
		precision = DefaultPrecision
	}
	if precision > maxPrecision {
		precision = maxPrecision
	}

	g := orb.Round(geo.GeometryToStorage(f.Geometry), int(math.Pow10(precision)))
	if err := geo.Validate(g); err != nil {
		return nil, err
	}
	return g, nil
}
