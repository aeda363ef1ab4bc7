// Package control implements the geometry field editor: it mounts a map
// engine over a single editable feature and reports every committed edit to
// the host as serialized text.
//
// A Control is not safe for concurrent use. Engines deliver input one event
// at a time and hosts that share a control between goroutines must serialize
// access themselves.
package control

import (
	"errors"
	"fmt"

	"github.com/woozymasta/geofield/internal/config"
	"github.com/woozymasta/geofield/internal/engine"
	"github.com/woozymasta/geofield/internal/format"
	"github.com/woozymasta/geofield/internal/geo"
	"github.com/woozymasta/geofield/internal/view"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ErrNoCallback is returned by Mount when the host gives no change callback.
var ErrNoCallback = errors.New("onChange callback is required")

// FormatFactory builds the format adapter for a field.
type FormatFactory func(field config.Field) (format.Adapter, error)

// DefaultFormat resolves the adapter named by the field configuration.
func DefaultFormat(field config.Field) (format.Adapter, error) {
	return format.New(field.Format, field.Type)
}

// Options is everything a host passes at mount time.
type Options struct {
	OnChange func(serialized string)

	// Format and Engine override the default factories.
	Format FormatFactory
	Engine engine.Factory

	// Logger defaults to the global zerolog logger.
	Logger *zerolog.Logger

	Value         string
	EngineOptions engine.Options
	Field         config.Field
}

// Control is a mounted geometry editor.
type Control struct {
	format   format.Adapter
	engine   engine.Engine
	source   *engine.Source
	draw     *engine.Draw
	modify   *engine.Modify
	onChange func(string)
	fault    error
	logger   zerolog.Logger
	detach   []func()
	value    string
	field    config.Field
	closed   bool
}

// Mount parses the initial value, creates the engine, fits the view and
// attaches the draw and modify interactions. A malformed initial value does
// not fail the mount: the map starts empty and Fault reports the problem.
// Anything acquired before a failure is released before Mount returns.
// Fields not built by config.NewField get defaults for their zero values.
func Mount(opts Options) (*Control, error) {
	if opts.OnChange == nil {
		return nil, ErrNoCallback
	}
	field := opts.Field.WithDefaults()
	if err := field.Validate(); err != nil {
		return nil, fmt.Errorf("field %q: %w", field.Name, err)
	}

	logger := log.Logger
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	logger = logger.With().Str("field", field.Name).Logger()

	newFormat := opts.Format
	if newFormat == nil {
		newFormat = DefaultFormat
	}
	adapter, err := newFormat(field)
	if err != nil {
		return nil, fmt.Errorf("field %q: format: %w", field.Name, err)
	}

	c := &Control{
		format:   adapter,
		onChange: opts.OnChange,
		logger:   logger,
		field:    field,
	}

	initial, err := adapter.Parse(opts.Value)
	if err != nil {
		var fe *format.FormatError
		if !errors.As(err, &fe) {
			return nil, err
		}
		logger.Warn().Err(err).Msg("Ignoring malformed initial value")
		c.fault = err
		initial = nil
	} else if initial != nil {
		c.value = opts.Value
	}

	c.source = engine.NewSource(initial)

	newEngine := opts.Engine
	if newEngine == nil {
		newEngine = engine.Default
	}
	engineOpts := opts.EngineOptions
	if engineOpts.Height <= 0 {
		engineOpts.Height, _ = field.PixelHeight()
	}
	if engineOpts.Logger == nil {
		engineOpts.Logger = &c.logger
	}
	c.engine, err = newEngine(c.source, engineOpts)
	if err != nil {
		return nil, fmt.Errorf("field %q: engine: %w", field.Name, err)
	}

	if err := c.attach(initial); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("field %q: %w", field.Name, err)
	}

	logger.Debug().
		Str("type", string(field.Type)).
		Bool("has_value", initial != nil).
		Float64("zoom", c.engine.View().Zoom).
		Msg("Control mounted")

	return c, nil
}

func (c *Control) attach(initial *geo.Feature) error {
	w, h := c.engine.Size()
	c.engine.SetView(view.Initial(c.field, initial, w, h))

	c.draw = engine.NewDraw(c.field.Type)
	if err := c.engine.AddInteraction(c.draw); err != nil {
		return fmt.Errorf("attach draw: %w", err)
	}
	c.detach = append(c.detach, c.draw.OnDrawEnd(c.handleDrawEnd))

	c.modify = engine.NewModify(c.source)
	if err := c.engine.AddInteraction(c.modify); err != nil {
		return fmt.Errorf("attach modify: %w", err)
	}
	c.detach = append(c.detach, c.modify.OnModifyEnd(c.handleModifyEnd))

	return nil
}

// handleDrawEnd is the only unconditional write path to the host.
func (c *Control) handleDrawEnd(f *geo.Feature) {
	c.source.Replace(f)
	c.commit(f)
}

func (c *Control) handleModifyEnd(f *geo.Feature) {
	if !c.field.CommitOnModify {
		c.logger.Debug().Msg("Modify end not committed")
		return
	}
	c.commit(f)
}

func (c *Control) commit(f *geo.Feature) {
	text, err := c.format.Serialize(f, c.field.Decimals)
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to serialize geometry")
		return
	}

	c.value = text
	c.onChange(text)
}

// Close detaches listeners, removes the interactions and closes the engine.
// It is safe to call more than once.
func (c *Control) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true

	for _, detach := range c.detach {
		detach()
	}
	c.detach = nil

	if c.engine == nil {
		return nil
	}
	if c.draw != nil {
		c.engine.RemoveInteraction(c.draw)
	}
	if c.modify != nil {
		c.engine.RemoveInteraction(c.modify)
	}

	if err := c.engine.Close(); err != nil {
		return fmt.Errorf("close engine: %w", err)
	}
	return nil
}

// Value is the last committed serialization, or the initial value.
func (c *Control) Value() string { return c.value }

// Feature is the feature currently in the editable layer.
func (c *Control) Feature() *geo.Feature { return c.source.Feature() }

// Layer is the editable source.
func (c *Control) Layer() *engine.Source { return c.source }

// View is the current engine view.
func (c *Control) View() geo.ViewState { return c.engine.View() }

// Engine returns the engine the control is mounted on.
func (c *Control) Engine() engine.Engine { return c.engine }

// Field returns the configuration the control was mounted with.
func (c *Control) Field() config.Field { return c.field }

// Fault is the error of a rejected initial value, if any.
func (c *Control) Fault() error { return c.fault }

// Closed reports whether Close has been called.
func (c *Control) Closed() bool { return c.closed }

// Input returns the engine's input entry points when it exposes them.
func (c *Control) Input() (engine.Input, bool) {
	in, ok := c.engine.(engine.Input)
	return in, ok
}

// Shell returns the container presentation for this control.
func (c *Control) Shell() Shell { return NewShell(c.field.Height) }
