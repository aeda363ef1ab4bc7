package engine

import (
	"fmt"
	"math"

	"github.com/woozymasta/geofield/internal/geo"

	"github.com/paulmach/orb"
)

// DefaultPixelTolerance is how close, in pixels, a drag must start to a vertex.
const DefaultPixelTolerance = 10

// Interaction is an input handler attached to an engine.
type Interaction interface {
	Active() bool
	SetActive(active bool)
}

type toggle struct {
	active bool
}

func (t *toggle) Active() bool          { return t.active }
func (t *toggle) SetActive(active bool) { t.active = active }

// Draw sketches one geometry of a fixed type.
type Draw struct {
	toggle
	onEnd listeners[*geo.Feature]
	Type  geo.Type
}

// NewDraw returns an active draw interaction.
func NewDraw(t geo.Type) *Draw {
	return &Draw{Type: t, toggle: toggle{active: true}}
}

// OnDrawEnd registers fn for completed sketches and returns its detach func.
func (d *Draw) OnDrawEnd(fn func(*geo.Feature)) func() {
	return d.onEnd.add(fn)
}

// Listeners counts attached drawend callbacks.
func (d *Draw) Listeners() int {
	return d.onEnd.len()
}

func (d *Draw) finish(g orb.Geometry) error {
	if g == nil {
		return fmt.Errorf("%w: empty sketch", ErrWrongType)
	}
	t, ok := geo.TypeOf(g)
	if !ok || t != d.Type {
		return fmt.Errorf("%w: want %s, got %s", ErrWrongType, d.Type, g.GeoJSONType())
	}
	if err := geo.Validate(g); err != nil {
		return err
	}
	d.onEnd.emit(geo.NewFeature(orb.Clone(g)))
	return nil
}

// Modify drags vertices of the feature held by a source.
type Modify struct {
	toggle
	source    *Source
	onEnd     listeners[*geo.Feature]
	Tolerance float64
}

// NewModify returns an active modify interaction over src.
func NewModify(src *Source) *Modify {
	return &Modify{source: src, Tolerance: DefaultPixelTolerance, toggle: toggle{active: true}}
}

// OnModifyEnd registers fn for finished drags and returns its detach func.
func (m *Modify) OnModifyEnd(fn func(*geo.Feature)) func() {
	return m.onEnd.add(fn)
}

// Listeners counts attached modifyend callbacks.
func (m *Modify) Listeners() int {
	return m.onEnd.len()
}

// drag moves the vertex nearest to from, within Tolerance pixels at the
// given resolution. It reports whether a vertex was hit.
func (m *Modify) drag(from, to orb.Point, resolution float64) bool {
	current := m.source.Feature()
	if current == nil {
		return false
	}

	g, ok := moveVertex(orb.Clone(current.Geometry), from, to, m.Tolerance*resolution)
	if !ok {
		return false
	}

	m.commit(g)
	return true
}

// reshape takes an edited copy of the whole feature, as an engine that
// inserts or removes vertices reports it. The family must not change.
func (m *Modify) reshape(g orb.Geometry) error {
	current := m.source.Feature()
	if current == nil {
		return fmt.Errorf("%w: nothing to modify", ErrNoInteraction)
	}
	if t, ok := geo.TypeOf(g); !ok || t != current.Type() {
		return fmt.Errorf("%w: want %s, got %s", ErrWrongType, current.Type(), g.GeoJSONType())
	}
	if err := geo.Validate(g); err != nil {
		return err
	}

	m.commit(orb.Clone(g))
	return nil
}

func (m *Modify) commit(g orb.Geometry) {
	f := geo.NewFeature(g)
	m.source.Replace(f)
	m.onEnd.emit(f)
}

// moveVertex edits g in place and returns it. Closing vertices of a ring
// move together.
func moveVertex(g orb.Geometry, from, to orb.Point, tolerance float64) (orb.Geometry, bool) {
	best := math.Inf(1)
	var target *orb.Point
	var ring orb.Ring

	consider := func(p *orb.Point, r orb.Ring) {
		if d := math.Hypot(p[0]-from[0], p[1]-from[1]); d <= tolerance && d < best {
			best, target, ring = d, p, r
		}
	}

	switch g := g.(type) {
	case orb.Point:
		if math.Hypot(g[0]-from[0], g[1]-from[1]) > tolerance {
			return g, false
		}
		return to, true
	case orb.LineString:
		for i := range g {
			consider(&g[i], nil)
		}
	case orb.Polygon:
		for _, r := range g {
			for i := range r {
				consider(&r[i], r)
			}
		}
	}

	if target == nil {
		return g, false
	}

	if n := len(ring); n > 1 && (target == &ring[0] || target == &ring[n-1]) && ring.Closed() {
		ring[0], ring[n-1] = to, to
	} else {
		*target = to
	}
	return g, true
}
