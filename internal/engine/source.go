package engine

import (
	"github.com/woozymasta/geofield/internal/geo"

	"github.com/paulmach/orb"
)

// Source is the editable feature collection. It holds at most one feature.
type Source struct {
	feature  *geo.Feature
	onChange listeners[*geo.Feature]
}

// NewSource creates a source holding f, which may be nil.
func NewSource(f *geo.Feature) *Source {
	return &Source{feature: f}
}

// Feature returns the current feature or nil.
func (s *Source) Feature() *geo.Feature {
	return s.feature
}

// Len is 0 or 1.
func (s *Source) Len() int {
	if s.feature == nil {
		return 0
	}
	return 1
}

// Replace swaps the feature in one step; listeners never observe an empty source.
func (s *Source) Replace(f *geo.Feature) {
	s.feature = f
	s.onChange.emit(f)
}

// Clear removes the feature.
func (s *Source) Clear() {
	if s.feature == nil {
		return
	}
	s.Replace(nil)
}

// Extent of the current feature; false when the source is empty.
func (s *Source) Extent() (orb.Bound, bool) {
	if s.feature == nil || s.feature.Geometry == nil {
		return orb.Bound{}, false
	}
	return s.feature.Extent(), true
}

// OnChange registers fn for every replacement and returns its detach func.
func (s *Source) OnChange(fn func(*geo.Feature)) func() {
	return s.onChange.add(fn)
}
