package main

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/woozymasta/geofield/internal/geo"

	"gopkg.in/yaml.v3"
)

func defaults() Options {
	return Options{From: "geojson", To: "geojson", Precision: 7, Width: 640, Height: 400}
}

func TestConvertFormats(t *testing.T) {
	tests := []struct {
		name  string
		opts  func(*Options)
		input string
		want  []string
	}{
		{
			name:  "GeoJSON to WKT",
			opts:  func(o *Options) { o.To = "wkt" },
			input: `{"type":"Point","coordinates":[14.4213421,50.0875311]}`,
			want:  []string{"POINT", "14.4213421", "50.0875311"},
		},
		{
			name:  "WKT to GeoJSON with precision",
			opts:  func(o *Options) { o.From = "wkt"; o.Precision = 2 },
			input: "LINESTRING (0.123 1.456, 2.789 3.001)",
			want:  []string{`{"type":"LineString","coordinates":[[0.12,1.46],[2.79,3]]}`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := defaults()
			tt.opts(&opts)
			out, err := convert(opts, tt.input)
			if err != nil {
				t.Fatalf("convert: %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(string(out), w) {
					t.Errorf("expected %q in %q", w, out)
				}
			}
		})
	}
}

func TestConvertErrors(t *testing.T) {
	opts := defaults()
	if _, err := convert(opts, "   "); err == nil {
		t.Error("expected error for empty input")
	}

	opts.Type = "Polygon"
	if _, err := convert(opts, `{"type":"Point","coordinates":[0,0]}`); err == nil {
		t.Error("expected error for type mismatch")
	}
}

func TestConvertReport(t *testing.T) {
	input := `{"type":"LineString","coordinates":[[0,0],[10,10]]}`

	opts := defaults()
	opts.Report = "json"
	out, err := convert(opts, input)
	if err != nil {
		t.Fatal(err)
	}

	var report Report
	if err := json.Unmarshal(out, &report); err != nil {
		t.Fatalf("report is not JSON: %v", err)
	}
	if report.Type != geo.LineString || report.View.Zoom <= 2 {
		t.Errorf("unexpected report %+v", report)
	}
	if math.Abs(report.Extent[1][0]-10) > 1e-6 || math.Abs(report.Extent[1][1]-10) > 1e-6 {
		t.Errorf("unexpected extent %v", report.Extent)
	}

	opts.Report = "yaml"
	out, err = convert(opts, input)
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]interface{}
	if err := yaml.Unmarshal(out, &doc); err != nil {
		t.Fatalf("report is not YAML: %v", err)
	}
	if !strings.Contains(string(out), "type: LineString") {
		t.Errorf("unexpected yaml %q", out)
	}
}
