package view

import (
	"math"
	"testing"

	"github.com/woozymasta/geofield/internal/config"
	"github.com/woozymasta/geofield/internal/geo"

	"github.com/paulmach/orb"
)

const eps = 1e-6

func contains(outer, inner orb.Bound) bool {
	return outer.Min[0] <= inner.Min[0]+eps && outer.Min[1] <= inner.Min[1]+eps &&
		outer.Max[0] >= inner.Max[0]-eps && outer.Max[1] >= inner.Max[1]-eps
}

func TestDefaultView(t *testing.T) {
	v := Initial(config.NewField("a"), nil, 640, 400)

	if math.Abs(v.Center[0]) > eps || math.Abs(v.Center[1]) > eps {
		t.Errorf("expected center at origin, got %v", v.Center)
	}
	if v.Zoom != 2 {
		t.Errorf("expected zoom 2, got %v", v.Zoom)
	}
	if v.Resolution != geo.ResolutionForZoom(2) {
		t.Errorf("resolution does not match zoom: %v", v.Resolution)
	}
}

func TestConfiguredView(t *testing.T) {
	f := config.NewField("a")
	f.Longitude, f.Latitude, f.Zoom = 14.42, 50.08, 11

	v := Initial(f, nil, 640, 400)
	if v.Center != geo.ToDisplay(14.42, 50.08) || v.Zoom != 11 {
		t.Errorf("unexpected view %+v", v)
	}
}

func TestFeatureOverridesConfig(t *testing.T) {
	f := config.NewField("a")
	f.Longitude, f.Latitude, f.Zoom = 100, -40, 3

	feature := geo.NewFeature(geo.ToDisplay(14.42, 50.08))
	v := Initial(f, feature, 640, 400)

	if v.Center != feature.Geometry.(orb.Point) {
		t.Errorf("expected center on feature, got %v", v.Center)
	}
	if math.Abs(v.Zoom-MaxZoom) > eps {
		t.Errorf("expected point to fit at max zoom, got %v", v.Zoom)
	}
}

func TestFitContainsPaddedExtent(t *testing.T) {
	extents := []orb.Bound{
		geo.GeometryToDisplay(orb.LineString{{2.29, 48.85}, {2.35, 48.87}}).Bound(),
		geo.GeometryToDisplay(orb.LineString{{-10, 35}, {30, 60}}).Bound(),
		geo.GeometryToDisplay(orb.LineString{{-170, -70}, {170, 70}}).Bound(),
		geo.GeometryToDisplay(orb.LineString{{0, 0}, {0, 10}}).Bound(),
		geo.GeometryToDisplay(orb.LineString{{0, 0}, {0.00001, 0.00001}}).Bound(),
	}
	sizes := [][2]int{{640, 400}, {400, 640}, {1920, 1080}, {100, 100}}

	for _, e := range extents {
		for _, s := range sizes {
			v := Fit(e, s[0], s[1])
			if v.Zoom > MaxZoom+eps {
				t.Errorf("zoom %v exceeds cap for extent %v", v.Zoom, e)
			}
			pad := Padding * v.Resolution
			if s[0] <= 2*Padding || s[1] <= 2*Padding {
				// degenerate viewport, only the extent itself must fit
				pad = 0
			}
			padded := orb.Bound{
				Min: orb.Point{e.Min[0] - pad, e.Min[1] - pad},
				Max: orb.Point{e.Max[0] + pad, e.Max[1] + pad},
			}
			if !contains(Visible(v, s[0], s[1]), padded) {
				t.Errorf("view %+v at %v does not contain %v", v, s, padded)
			}
		}
	}
}

func TestFitIsPure(t *testing.T) {
	e := geo.GeometryToDisplay(orb.LineString{{-10, 35}, {30, 60}}).Bound()
	if Fit(e, 640, 400) != Fit(e, 640, 400) {
		t.Error("expected identical views for identical input")
	}
}
