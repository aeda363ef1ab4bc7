package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/woozymasta/geofield/internal/format"
	"github.com/woozymasta/geofield/internal/geo"

	"gopkg.in/yaml.v3"
)

// Defaults for every recognized field option.
const (
	DefaultType     = geo.Polygon
	DefaultZoom     = 2
	DefaultDecimals = format.DefaultPrecision
	DefaultHeight   = "400px"
	DefaultFormat   = format.GeoJSON

	// MaxDecimals bounds output precision to what float64 can carry.
	MaxDecimals = 15
)

// Field is the configuration of one geometry field. It is immutable once a
// control is mounted with it. Build it with NewField or decode it from
// YAML/JSON; a bare struct literal gets defaults for its zero values from
// WithDefaults.
type Field struct {
	Name           string   `yaml:"name" json:"name"`
	Type           geo.Type `yaml:"type" json:"type"`
	Height         string   `yaml:"height" json:"height"`
	Format         string   `yaml:"format" json:"format"`
	Longitude      float64  `yaml:"longitude" json:"longitude"`
	Latitude       float64  `yaml:"latitude" json:"latitude"`
	Zoom           float64  `yaml:"zoom" json:"zoom"`
	Decimals       int      `yaml:"decimals" json:"decimals"`
	CommitOnModify bool     `yaml:"commit_on_modify" json:"commit_on_modify"`

	// set by NewField, so explicit zeros survive WithDefaults
	defaulted bool
}

// NewField returns a field with every option at its default.
func NewField(name string) Field {
	return Field{
		Name:      name,
		Type:      DefaultType,
		Height:    DefaultHeight,
		Format:    DefaultFormat,
		Zoom:      DefaultZoom,
		Decimals:  DefaultDecimals,
		defaulted: true,
	}
}

// WithDefaults returns f unchanged when it came from NewField or a decoder.
// Otherwise every zero-valued option takes its default: a literal with
// Decimals 0 writes DefaultDecimals, not integers.
func (f Field) WithDefaults() Field {
	if f.defaulted {
		return f
	}

	d := NewField(f.Name)
	if f.Type == "" {
		f.Type = d.Type
	}
	if f.Height == "" {
		f.Height = d.Height
	}
	if f.Format == "" {
		f.Format = d.Format
	}
	if f.Zoom == 0 {
		f.Zoom = d.Zoom
	}
	if f.Decimals == 0 {
		f.Decimals = d.Decimals
	}
	f.defaulted = true
	return f
}

// UnmarshalYAML decodes on top of the defaults, so omitted keys keep them.
func (f *Field) UnmarshalYAML(value *yaml.Node) error {
	type plain Field
	p := plain(NewField(""))
	if err := value.Decode(&p); err != nil {
		return err
	}
	*f = Field(p)
	return nil
}

// UnmarshalJSON decodes on top of the defaults, so omitted keys keep them.
func (f *Field) UnmarshalJSON(data []byte) error {
	type plain Field
	p := plain(NewField(""))
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*f = Field(p)
	return nil
}

// Validate checks every option once. Coordinates are trusted as given.
func (f Field) Validate() error {
	if _, err := geo.ParseType(string(f.Type)); err != nil {
		return err
	}
	if f.Decimals < 0 || f.Decimals > MaxDecimals {
		return fmt.Errorf("decimals must be within 0..%d, got %d", MaxDecimals, f.Decimals)
	}
	if f.Zoom < 0 {
		return fmt.Errorf("zoom must not be negative, got %v", f.Zoom)
	}
	if _, err := format.New(f.Format, f.Type); err != nil {
		return err
	}
	if strings.TrimSpace(f.Height) == "" {
		return errors.New("height must not be empty")
	}
	return nil
}

// PixelHeight returns the container height in pixels when it is expressed in
// px (or as a bare number). Other CSS units are left to the browser.
func (f Field) PixelHeight() (int, bool) {
	h := strings.TrimSuffix(strings.TrimSpace(f.Height), "px")
	v, err := strconv.ParseFloat(h, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return int(v), true
}
