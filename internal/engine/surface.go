package engine

import (
	"fmt"

	"github.com/woozymasta/geofield/internal/geo"

	"github.com/paulmach/orb"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Default viewport size when a host does not size the surface.
const (
	DefaultWidth  = 640
	DefaultHeight = 400
)

// Surface is a headless engine: it keeps the view and interactions in memory
// and receives input through FinishDraw, DragVertex and ModifyFeature. Rendering is left to
// whoever reads its state.
type Surface struct {
	source       *Source
	interactions []Interaction
	logger       zerolog.Logger
	opts         Options
	view         geo.ViewState
	closed       bool
}

// NewSurface creates a surface showing src with a world view.
func NewSurface(src *Source, opts Options) *Surface {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}

	logger := log.Logger
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	return &Surface{
		source: src,
		opts:   opts,
		logger: logger,
		view:   geo.NewViewState(orb.Point{0, 0}, 2),
	}
}

func (s *Surface) Size() (int, int)            { return s.opts.Width, s.opts.Height }
func (s *Surface) View() geo.ViewState         { return s.view }
func (s *Surface) SetView(v geo.ViewState)     { s.view = v }
func (s *Surface) Interactions() []Interaction { return s.interactions }

// AddInteraction attaches i. Attaching the same interaction twice is a no-op.
func (s *Surface) AddInteraction(i Interaction) error {
	if s.closed {
		return ErrClosed
	}
	for _, have := range s.interactions {
		if have == i {
			return nil
		}
	}
	s.interactions = append(s.interactions, i)
	return nil
}

func (s *Surface) RemoveInteraction(i Interaction) {
	for idx, have := range s.interactions {
		if have == i {
			s.interactions = append(s.interactions[:idx], s.interactions[idx+1:]...)
			return
		}
	}
}

// Close deactivates and drops every interaction.
func (s *Surface) Close() error {
	if s.closed {
		return nil
	}
	for _, i := range s.interactions {
		i.SetActive(false)
	}
	s.interactions = nil
	s.closed = true

	s.logger.Trace().Msg("Surface closed")
	return nil
}

// FinishDraw hands a completed sketch to the active draw interactions.
func (s *Surface) FinishDraw(g orb.Geometry) error {
	if s.closed {
		return ErrClosed
	}

	handled := false
	for _, i := range s.interactions {
		d, ok := i.(*Draw)
		if !ok || !d.Active() {
			continue
		}
		if err := d.finish(g); err != nil {
			return err
		}
		handled = true
	}

	if !handled {
		return ErrNoInteraction
	}
	return nil
}

func (s *Surface) modifiers() []*Modify {
	var out []*Modify
	for _, i := range s.interactions {
		if m, ok := i.(*Modify); ok && m.Active() {
			out = append(out, m)
		}
	}
	return out
}

// DragVertex forwards a drag to the first active modify interaction that
// hits a vertex. A resolution of zero means the drag was made at the
// surface's own view.
func (s *Surface) DragVertex(from, to orb.Point, resolution float64) error {
	if s.closed {
		return ErrClosed
	}
	if !(resolution > 0) {
		resolution = s.view.Resolution
	}

	for _, m := range s.modifiers() {
		if m.drag(from, to, resolution) {
			return nil
		}
	}

	return ErrNoInteraction
}

// ModifyFeature hands an edited copy of the feature to the first active
// modify interaction.
func (s *Surface) ModifyFeature(g orb.Geometry) error {
	if s.closed {
		return ErrClosed
	}
	if s.source.Len() == 0 {
		return fmt.Errorf("%w: nothing to modify", ErrNoInteraction)
	}

	mods := s.modifiers()
	if len(mods) == 0 {
		return ErrNoInteraction
	}
	return mods[0].reshape(g)
}
