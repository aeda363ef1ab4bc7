package geo

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

const (
	// TileSize is the pixel size of a base map tile at every zoom level.
	TileSize = 256

	// EarthRadius is the sphere radius of EPSG:3857.
	EarthRadius = 6378137.0

	// MaxLat is the latitude at which the mercator square ends.
	MaxLat = 85.05112878
)

// MaxResolution is metres per pixel at zoom 0.
var MaxResolution = 2 * math.Pi * EarthRadius / TileSize

// ViewState is the map viewport: a display-frame center and a zoom level.
type ViewState struct {
	Center     orb.Point `json:"center" yaml:"center"`
	Zoom       float64   `json:"zoom" yaml:"zoom"`
	Resolution float64   `json:"resolution" yaml:"resolution"`
}

// NewViewState derives the resolution for the given zoom.
func NewViewState(center orb.Point, zoom float64) ViewState {
	return ViewState{Center: center, Zoom: zoom, Resolution: ResolutionForZoom(zoom)}
}

// ResolutionForZoom converts a (possibly fractional) zoom to metres per pixel.
func ResolutionForZoom(zoom float64) float64 {
	return MaxResolution / math.Pow(2, zoom)
}

// ZoomForResolution is the inverse of ResolutionForZoom.
func ZoomForResolution(res float64) float64 {
	return math.Log2(MaxResolution / res)
}

// ToDisplay projects storage-frame lon/lat degrees into the display frame.
//
// Latitude is clamped to the mercator square so poles stay finite.
func ToDisplay(lon, lat float64) orb.Point {
	if lat > MaxLat {
		lat = MaxLat
	} else if lat < -MaxLat {
		lat = -MaxLat
	}
	return project.WGS84.ToMercator(orb.Point{lon, lat})
}

// ToStorage unprojects a display-frame point back to lon/lat degrees.
func ToStorage(p orb.Point) orb.Point {
	return project.Mercator.ToWGS84(p)
}

// GeometryToDisplay returns a projected copy of a storage-frame geometry.
func GeometryToDisplay(g orb.Geometry) orb.Geometry {
	return project.Geometry(orb.Clone(g), func(p orb.Point) orb.Point {
		return ToDisplay(p[0], p[1])
	})
}

// GeometryToStorage returns an unprojected copy of a display-frame geometry.
func GeometryToStorage(g orb.Geometry) orb.Geometry {
	return project.Geometry(orb.Clone(g), project.Mercator.ToWGS84)
}
