package format

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/woozymasta/geofield/internal/geo"

	"github.com/paulmach/orb/geojson"
)

type geoJSONAdapter struct {
	codec
}

// Parse accepts a bare geometry object or a Feature wrapping one.
func (a geoJSONAdapter) Parse(serialized string) (*geo.Feature, error) {
	s := strings.TrimSpace(serialized)
	if s == "" {
		return nil, nil
	}

	f, err := a.parse([]byte(s))
	if err != nil {
		return nil, &FormatError{Format: GeoJSON, Input: s, Err: err}
	}
	return f, nil
}

// rawGeometry keeps coordinates undecoded: orb fills short positions with
// zeros, so their length is checked here first.
type rawGeometry struct {
	Geometry    *rawGeometry    `json:"geometry"`
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// positionDepth is the array nesting above a single position.
var positionDepth = map[string]int{
	string(geo.Point):      0,
	string(geo.LineString): 1,
	string(geo.Polygon):    2,
}

func (a geoJSONAdapter) parse(data []byte) (*geo.Feature, error) {
	var head rawGeometry
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}

	switch head.Type {
	case "Feature":
		if head.Geometry == nil {
			return nil, errors.New("feature has no geometry")
		}
		if err := checkPositions(*head.Geometry); err != nil {
			return nil, err
		}
		feature, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, err
		}
		return a.toFeature(feature.Geometry)
	case "FeatureCollection":
		return nil, fmt.Errorf("feature collections are not editable")
	}

	if err := checkPositions(head); err != nil {
		return nil, err
	}
	g, err := geojson.UnmarshalGeometry(data)
	if err != nil {
		return nil, err
	}
	return a.toFeature(g.Geometry())
}

// checkPositions rejects missing coordinates and positions with fewer than
// two numbers. Other geometry types are left to toFeature.
func checkPositions(g rawGeometry) error {
	depth, ok := positionDepth[g.Type]
	if !ok {
		return nil
	}

	var coords interface{}
	if len(g.Coordinates) > 0 {
		if err := json.Unmarshal(g.Coordinates, &coords); err != nil {
			return err
		}
	}
	if coords == nil {
		return fmt.Errorf("%s has no coordinates", g.Type)
	}
	return walkPositions(coords, depth)
}

func walkPositions(v interface{}, depth int) error {
	arr, ok := v.([]interface{})
	if !ok {
		return fmt.Errorf("expected coordinate array, got %v", v)
	}

	if depth == 0 {
		if len(arr) < 2 {
			return fmt.Errorf("position needs at least 2 numbers, got %d", len(arr))
		}
		for _, n := range arr {
			if _, ok := n.(float64); !ok {
				return fmt.Errorf("position holds %v, not a number", n)
			}
		}
		return nil
	}

	for _, e := range arr {
		if err := walkPositions(e, depth-1); err != nil {
			return err
		}
	}
	return nil
}

func (a geoJSONAdapter) Serialize(f *geo.Feature, precision int) (string, error) {
	g, err := a.toStorage(f, precision)
	if err != nil {
		return "", err
	}

	data, err := geojson.NewGeometry(g).MarshalJSON()
	if err != nil {
		return "", fmt.Errorf("encode geojson: %w", err)
	}
	return string(data), nil
}
