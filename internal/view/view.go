// Package view computes the initial map viewport of an editing control.
package view

import (
	"math"

	"github.com/woozymasta/geofield/internal/config"
	"github.com/woozymasta/geofield/internal/geo"

	"github.com/paulmach/orb"
)

const (
	// Padding is the pixel margin kept around a fitted feature on every side.
	Padding = 80

	// MaxZoom caps fitting so points and tiny features are not over-zoomed.
	MaxZoom = 16
)

// Initial returns the viewport for a freshly mounted control. An initial
// feature wins over the configured center and zoom.
func Initial(field config.Field, initial *geo.Feature, width, height int) geo.ViewState {
	if initial == nil || initial.Geometry == nil {
		return geo.NewViewState(geo.ToDisplay(field.Longitude, field.Latitude), field.Zoom)
	}
	return Fit(initial.Extent(), width, height)
}

// Fit picks the view that shows the whole extent inside the padded viewport.
// The zoom is not snapped to integer levels.
func Fit(extent orb.Bound, width, height int) geo.ViewState {
	w := math.Max(float64(width-2*Padding), 1)
	h := math.Max(float64(height-2*Padding), 1)

	res := math.Max(
		(extent.Max[0]-extent.Min[0])/w,
		(extent.Max[1]-extent.Min[1])/h,
	)

	// also catches NaN from a degenerate extent
	minRes := geo.ResolutionForZoom(MaxZoom)
	if !(res >= minRes) {
		res = minRes
	}

	return geo.ViewState{
		Center:     extent.Center(),
		Zoom:       geo.ZoomForResolution(res),
		Resolution: res,
	}
}

// Visible is the display-frame region a viewport of the given size shows.
func Visible(v geo.ViewState, width, height int) orb.Bound {
	hw := float64(width) / 2 * v.Resolution
	hh := float64(height) / 2 * v.Resolution
	return orb.Bound{
		Min: orb.Point{v.Center[0] - hw, v.Center[1] - hh},
		Max: orb.Point{v.Center[0] + hw, v.Center[1] + hh},
	}
}
