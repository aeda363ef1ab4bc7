package format

import (
	"strings"

	"github.com/woozymasta/geofield/internal/geo"

	"github.com/paulmach/orb/encoding/wkt"
)

type wktAdapter struct {
	codec
}

func (a wktAdapter) Parse(serialized string) (*geo.Feature, error) {
	s := strings.TrimSpace(serialized)
	if s == "" {
		return nil, nil
	}

	g, err := wkt.Unmarshal(s)
	if err == nil {
		var f *geo.Feature
		if f, err = a.toFeature(g); err == nil {
			return f, nil
		}
	}
	return nil, &FormatError{Format: WKT, Input: s, Err: err}
}

func (a wktAdapter) Serialize(f *geo.Feature, precision int) (string, error) {
	g, err := a.toStorage(f, precision)
	if err != nil {
		return "", err
	}
	return wkt.MarshalString(g), nil
}
