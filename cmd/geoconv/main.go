package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/woozymasta/geofield/internal/config"
	"github.com/woozymasta/geofield/internal/format"
	"github.com/woozymasta/geofield/internal/geo"
	"github.com/woozymasta/geofield/internal/view"

	"github.com/jessevdk/go-flags"
	"gopkg.in/yaml.v3"
)

type Options struct {
	Input     string `short:"i" long:"in"        description:"Input file path. Reads from stdin if empty"`
	Output    string `short:"o" long:"out"       description:"Output file path. Writes to stdout if empty"`
	From      string `short:"f" long:"from"      description:"Input geometry format"  choice:"geojson" choice:"wkt" default:"geojson"`
	To        string `short:"t" long:"to"        description:"Output geometry format" choice:"geojson" choice:"wkt" default:"geojson"`
	Type      string `short:"T" long:"type"      description:"Required geometry type" choice:"Point" choice:"LineString" choice:"Polygon"`
	Report    string `short:"r" long:"report"    description:"Print a report with type, extent and initial view" choice:"json" choice:"yaml"`
	Precision int    `short:"p" long:"precision" description:"Output decimals" default:"7"`
	Width     int    `short:"W" long:"width"     description:"Viewport width for the report view" default:"640"`
	Height    int    `short:"H" long:"height"    description:"Viewport height for the report view" default:"400"`
}

// Report describes a geometry as the editor would mount it.
type Report struct {
	Type   geo.Type      `json:"type" yaml:"type"`
	Value  string        `json:"value" yaml:"value"`
	Extent [2][2]float64 `json:"extent" yaml:"extent"` // storage frame [[minLon, minLat], [maxLon, maxLat]]
	View   geo.ViewState `json:"view" yaml:"view"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	// Read Input
	var inputData []byte
	var err error

	if opts.Input != "" {
		inputData, err = os.ReadFile(opts.Input)
	} else {
		inputData, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(1)
	}

	outputData, err := convert(opts, string(inputData))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, outputData, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
			os.Exit(1)
		}
		return
	}
	fmt.Println(strings.TrimRight(string(outputData), "\n"))
}

func convert(opts Options, input string) ([]byte, error) {
	family := geo.Type(opts.Type)

	src, err := format.New(opts.From, family)
	if err != nil {
		return nil, err
	}
	dst, err := format.New(opts.To, family)
	if err != nil {
		return nil, err
	}

	f, err := src.Parse(input)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, fmt.Errorf("empty input")
	}

	value, err := dst.Serialize(f, opts.Precision)
	if err != nil {
		return nil, err
	}
	if opts.Report == "" {
		return []byte(value), nil
	}

	extent := geo.GeometryToStorage(f.Extent().ToPolygon()).Bound()
	report := Report{
		Type:  f.Type(),
		Value: value,
		Extent: [2][2]float64{
			{extent.Min[0], extent.Min[1]},
			{extent.Max[0], extent.Max[1]},
		},
		View: view.Initial(config.NewField(""), f, opts.Width, opts.Height),
	}

	if opts.Report == "yaml" {
		return yaml.Marshal(report)
	}
	return json.MarshalIndent(report, "", "  ")
}
