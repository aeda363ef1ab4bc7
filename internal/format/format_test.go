package format

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/woozymasta/geofield/internal/geo"

	"github.com/paulmach/orb"
)

var storageGeometries = map[geo.Type]orb.Geometry{
	geo.Point:      orb.Point{14.4213421, 50.0875311},
	geo.LineString: orb.LineString{{-122.41, 37.77}, {-122.27, 37.80}, {-122.25, 37.87}},
	geo.Polygon: orb.Polygon{{
		{2.29, 48.85}, {2.35, 48.85}, {2.35, 48.87}, {2.29, 48.87}, {2.29, 48.85},
	}},
}

func mustAdapter(t *testing.T, name string, family geo.Type) Adapter {
	t.Helper()
	a, err := New(name, family)
	if err != nil {
		t.Fatalf("New(%q): %v", name, err)
	}
	return a
}

func storagePoints(g orb.Geometry) []orb.Point {
	var out []orb.Point
	switch g := g.(type) {
	case orb.Point:
		out = append(out, g)
	case orb.LineString:
		out = append(out, g...)
	case orb.Polygon:
		for _, r := range g {
			out = append(out, r...)
		}
	}
	return out
}

func TestParseEmpty(t *testing.T) {
	for _, name := range Names() {
		a := mustAdapter(t, name, geo.Polygon)
		for _, in := range []string{"", "   ", "\n"} {
			f, err := a.Parse(in)
			if err != nil || f != nil {
				t.Errorf("%s Parse(%q) = %v, %v; expected nil, nil", name, in, f, err)
			}
		}
	}
}

func TestParseGeoJSON(t *testing.T) {
	tests := []struct {
		name    string
		family  geo.Type
		input   string
		want    geo.Type
		wantErr bool
	}{
		{"Point", geo.Point, `{"type":"Point","coordinates":[0,0]}`, geo.Point, false},
		{"Feature wrapper", geo.Point, `{"type":"Feature","properties":{},"geometry":{"type":"Point","coordinates":[10,20]}}`, geo.Point, false},
		{"LineString", "", `{"type":"LineString","coordinates":[[0,0],[1,1]]}`, geo.LineString, false},
		{"Polygon", geo.Polygon, `{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]}`, geo.Polygon, false},
		{"Family mismatch", geo.Polygon, `{"type":"Point","coordinates":[0,0]}`, "", true},
		{"MultiPoint", "", `{"type":"MultiPoint","coordinates":[[0,0]]}`, "", true},
		{"Collection", "", `{"type":"FeatureCollection","features":[]}`, "", true},
		{"Short line", geo.LineString, `{"type":"LineString","coordinates":[[0,0]]}`, "", true},
		{"Open ring", geo.Polygon, `{"type":"Polygon","coordinates":[[[0,0],[1,0]]]}`, "", true},
		{"Garbage", geo.Point, `POINT (1 2)`, "", true},
		{"Truncated", geo.Point, `{"type":"Point","coordinates":[0,`, "", true},
		{"Empty position", geo.Point, `{"type":"Point","coordinates":[]}`, "", true},
		{"Short position", geo.Point, `{"type":"Point","coordinates":[1]}`, "", true},
		{"Missing coordinates", geo.Point, `{"type":"Point"}`, "", true},
		{"Null coordinates", geo.Point, `{"type":"Point","coordinates":null}`, "", true},
		{"Short line position", geo.LineString, `{"type":"LineString","coordinates":[[0,0],[1]]}`, "", true},
		{"Short ring position", geo.Polygon, `{"type":"Polygon","coordinates":[[[0,0],[1,0],[1],[0,0]]]}`, "", true},
		{"Feature short position", geo.Point, `{"type":"Feature","geometry":{"type":"Point","coordinates":[5]}}`, "", true},
		{"Feature without geometry", geo.Point, `{"type":"Feature","geometry":null}`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := mustAdapter(t, GeoJSON, tt.family).Parse(tt.input)
			if tt.wantErr {
				var fe *FormatError
				if !errors.As(err, &fe) {
					t.Fatalf("expected FormatError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if f.Type() != tt.want {
				t.Errorf("expected %s, got %s", tt.want, f.Type())
			}
		})
	}
}

func TestParseProjectsToDisplay(t *testing.T) {
	f, err := mustAdapter(t, GeoJSON, geo.Point).Parse(`{"type":"Point","coordinates":[10,20]}`)
	if err != nil {
		t.Fatal(err)
	}
	want := geo.ToDisplay(10, 20)
	got := f.Geometry.(orb.Point)
	if math.Abs(got[0]-want[0]) > 1e-6 || math.Abs(got[1]-want[1]) > 1e-6 {
		t.Errorf("expected display point %v, got %v", want, got)
	}
}

func TestParseWKT(t *testing.T) {
	a := mustAdapter(t, WKT, geo.LineString)
	if _, err := a.Parse("LINESTRING (0 0, 1 1)"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var fe *FormatError
	if _, err := a.Parse("POINT (0 0)"); !errors.As(err, &fe) {
		t.Errorf("expected FormatError for family mismatch, got %v", err)
	}
	if _, err := a.Parse("LINESTRING (0 0,"); !errors.As(err, &fe) {
		t.Errorf("expected FormatError for truncated text, got %v", err)
	}

	notFinite := []struct {
		family geo.Type
		input  string
	}{
		{geo.Point, "POINT (NaN NaN)"},
		{geo.Point, "POINT (1 Inf)"},
		{geo.LineString, "LINESTRING (0 0, NaN 1)"},
		{geo.Polygon, "POLYGON ((0 0, 1 0, 1 -Inf, 0 0))"},
	}
	for _, tt := range notFinite {
		if _, err := mustAdapter(t, WKT, tt.family).Parse(tt.input); !errors.As(err, &fe) {
			t.Errorf("Parse(%q): expected FormatError, got %v", tt.input, err)
		}
	}
	if _, err := a.Parse("LINESTRING (0 0, NaN 1)"); !errors.Is(err, geo.ErrInvalidGeometry) {
		t.Errorf("expected ErrInvalidGeometry for NaN coordinate, got %v", err)
	}
}

func TestFormatErrorTruncatesByRune(t *testing.T) {
	err := &FormatError{Format: GeoJSON, Input: strings.Repeat("ž", 80), Err: errors.New("bad")}
	msg := err.Error()
	if !utf8.ValidString(msg) {
		t.Fatalf("error text is not valid UTF-8: %q", msg)
	}
	if !strings.Contains(msg, strings.Repeat("ž", 61)+"...") || strings.Contains(msg, strings.Repeat("ž", 62)) {
		t.Errorf("expected input cut to 61 runes, got %q", msg)
	}
}

func TestRoundTrip(t *testing.T) {
	for _, name := range Names() {
		for family, g := range storageGeometries {
			a := mustAdapter(t, name, family)
			original := geo.NewFeature(geo.GeometryToDisplay(g))

			for p := 0; p <= 10; p++ {
				t.Run(name+"/"+string(family)+"/"+strconv.Itoa(p), func(t *testing.T) {
					text, err := a.Serialize(original, p)
					if err != nil {
						t.Fatalf("Serialize: %v", err)
					}
					parsed, err := a.Parse(text)
					if err != nil {
						t.Fatalf("Parse(%q): %v", text, err)
					}
					if parsed.Type() != family {
						t.Fatalf("expected %s, got %s", family, parsed.Type())
					}

					want := storagePoints(geo.GeometryToStorage(original.Geometry))
					got := storagePoints(geo.GeometryToStorage(parsed.Geometry))
					if len(got) != len(want) {
						t.Fatalf("expected %d positions, got %d", len(want), len(got))
					}
					tol := math.Pow10(-p)
					for i := range want {
						if math.Abs(got[i][0]-want[i][0]) > tol || math.Abs(got[i][1]-want[i][1]) > tol {
							t.Errorf("position %d: expected %v within %g, got %v", i, want[i], tol, got[i])
						}
					}
				})
			}
		}
	}
}

func TestSerializeDoesNotMutate(t *testing.T) {
	f := geo.NewFeature(geo.GeometryToDisplay(storageGeometries[geo.Polygon]))
	before := f.Clone()

	if _, err := mustAdapter(t, GeoJSON, "").Serialize(f, 2); err != nil {
		t.Fatal(err)
	}
	if !orb.Equal(f.Geometry, before.Geometry) {
		t.Errorf("Serialize modified its input")
	}
}

func TestSerializeDeterministic(t *testing.T) {
	a := mustAdapter(t, GeoJSON, "")
	f := geo.NewFeature(geo.GeometryToDisplay(storageGeometries[geo.LineString]))

	first, _ := a.Serialize(f, 5)
	second, _ := a.Serialize(f, 5)
	if first != second {
		t.Errorf("expected identical output, got %q and %q", first, second)
	}
}

func TestSerializeDefaultPrecision(t *testing.T) {
	a := mustAdapter(t, GeoJSON, "")
	f := geo.NewFeature(geo.ToDisplay(1.123456789, 2.123456789))

	got, err := a.Serialize(f, -1)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := a.Serialize(f, DefaultPrecision)
	if got != want {
		t.Errorf("expected default precision output %q, got %q", want, got)
	}
	if !strings.Contains(got, "1.1234568") {
		t.Errorf("expected 7 decimals in %q", got)
	}
}

func TestPrecisionOnlyAffectsTrailingDigits(t *testing.T) {
	a := mustAdapter(t, WKT, "")
	f := geo.NewFeature(geo.GeometryToDisplay(storageGeometries[geo.LineString]))

	coarse, err := a.Serialize(f, 2)
	if err != nil {
		t.Fatal(err)
	}
	fine, err := a.Serialize(f, 7)
	if err != nil {
		t.Fatal(err)
	}

	c, err := a.Parse(coarse)
	if err != nil {
		t.Fatal(err)
	}
	p, err := a.Parse(fine)
	if err != nil {
		t.Fatal(err)
	}

	cp := storagePoints(geo.GeometryToStorage(c.Geometry))
	fp := storagePoints(geo.GeometryToStorage(p.Geometry))
	for i := range cp {
		if math.Abs(cp[i][0]-fp[i][0]) > 0.005+1e-9 || math.Abs(cp[i][1]-fp[i][1]) > 0.005+1e-9 {
			t.Errorf("position %d differs beyond rounding: %v vs %v", i, cp[i], fp[i])
		}
	}
}

func TestSerializeErrors(t *testing.T) {
	a := mustAdapter(t, GeoJSON, "")
	if _, err := a.Serialize(nil, 7); err == nil {
		t.Error("expected error for nil feature")
	}
	if _, err := a.Serialize(geo.NewFeature(orb.MultiPoint{{0, 0}}), 7); err == nil {
		t.Error("expected error for unsupported geometry")
	}

	// nothing Parse would reject may be written
	degenerate := []orb.Geometry{
		orb.LineString{{1, 1}},
		orb.Polygon{{{0, 0}, {1, 0}, {0, 0}}},
		orb.Point{math.NaN(), 0},
	}
	for _, g := range degenerate {
		for _, name := range Names() {
			if _, err := mustAdapter(t, name, "").Serialize(geo.NewFeature(g), 7); !errors.Is(err, geo.ErrInvalidGeometry) {
				t.Errorf("%s Serialize(%v): expected ErrInvalidGeometry, got %v", name, g, err)
			}
		}
	}
}

func TestNewUnknown(t *testing.T) {
	if _, err := New("kml", geo.Point); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}
