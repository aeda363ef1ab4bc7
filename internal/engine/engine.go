// Package engine defines the map capabilities an editing control relies on
// and ships a headless implementation of them.
package engine

import (
	"errors"

	"github.com/woozymasta/geofield/internal/geo"

	"github.com/paulmach/orb"
	"github.com/rs/zerolog"
)

var (
	// ErrClosed is returned by every operation on a closed engine.
	ErrClosed = errors.New("engine closed")
	// ErrWrongType is returned when a finished sketch does not match the draw type.
	ErrWrongType = errors.New("drawn geometry does not match draw type")
	// ErrNoInteraction is returned when input arrives with no interaction to take it.
	ErrNoInteraction = errors.New("no active interaction")
)

// Engine is the rendering and input surface a control is mounted on.
type Engine interface {
	// Size is the viewport size in pixels.
	Size() (width, height int)
	View() geo.ViewState
	SetView(v geo.ViewState)
	AddInteraction(i Interaction) error
	RemoveInteraction(i Interaction)
	// Close releases the surface. Calling it again is a no-op.
	Close() error
}

// Input is implemented by engines that accept user input programmatically.
type Input interface {
	// FinishDraw completes a sketch with the given display-frame geometry.
	FinishDraw(g orb.Geometry) error
	// DragVertex moves the vertex nearest to from onto to. Resolution is the
	// metres per pixel the drag was made at; zero means the engine's view.
	DragVertex(from, to orb.Point, resolution float64) error
	// ModifyFeature replaces the feature with an edited copy of the same type.
	ModifyFeature(g orb.Geometry) error
}

// Options configure an engine instance.
type Options struct {
	TileURL     string
	Attribution string
	// Logger defaults to the global zerolog logger.
	Logger *zerolog.Logger

	Width  int
	Height int
}

// Factory creates an engine over the editable source.
type Factory func(src *Source, opts Options) (Engine, error)

// Default is the Factory used when a host provides none.
func Default(src *Source, opts Options) (Engine, error) {
	return NewSurface(src, opts), nil
}
