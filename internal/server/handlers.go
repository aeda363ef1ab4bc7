// Package server handles HTTP requests and middleware.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/woozymasta/geofield/internal/config"
	"github.com/woozymasta/geofield/internal/control"
	"github.com/woozymasta/geofield/internal/engine"
	"github.com/woozymasta/geofield/internal/geo"
	"github.com/woozymasta/geofield/internal/render"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog/log"
)

// maxBody bounds request bodies; a single edited feature is small.
const maxBody = 1 << 20

type mountRequest struct {
	Config *config.Field `json:"config,omitempty"`
	Field  string        `json:"field"`
	Value  string        `json:"value"`
}

type drawRequest struct {
	Geometry *geojson.Geometry `json:"geometry"`
}

// modifyRequest carries either the edited geometry or a single vertex drag
// made at the client's current resolution.
type modifyRequest struct {
	Geometry   *geojson.Geometry `json:"geometry,omitempty"`
	From       orb.Point         `json:"from"`
	To         orb.Point         `json:"to"`
	Resolution float64           `json:"resolution"`
}

type controlResponse struct {
	// Feature is the current feature in the display frame, whatever the
	// field's text format.
	Feature     *geojson.Geometry `json:"feature,omitempty"`
	View        geo.ViewState     `json:"view"`
	Shell       control.Shell     `json:"shell"`
	Field       config.Field      `json:"field"`
	ID          string            `json:"id"`
	Value       string            `json:"value"`
	Fault       string            `json:"fault,omitempty"`
	TileURL     string            `json:"tiles"`
	Attribution string            `json:"attribution"`
	Changes     int               `json:"changes"`
}

type fieldsResponse struct {
	TileURL     string         `json:"tiles"`
	Attribution string         `json:"attribution"`
	Fields      []config.Field `json:"fields"`
}

// Routes registers every handler on a new mux.
func (s *ServerContext) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/fields", s.HandleFieldsList)
	mux.HandleFunc("POST /api/controls", s.HandleMount)
	mux.HandleFunc("GET /api/controls/{id}", s.HandleControl)
	mux.HandleFunc("DELETE /api/controls/{id}", s.HandleUnmount)
	mux.HandleFunc("POST /api/controls/{id}/draw", s.HandleDraw)
	mux.HandleFunc("POST /api/controls/{id}/modify", s.HandleModify)
	mux.HandleFunc("GET /api/controls/{id}/preview.webp", s.HandlePreview)
	mux.HandleFunc("/", s.HandleIndex)
	return mux
}

// HandleFieldsList serves the configured field presets.
func (s *ServerContext) HandleFieldsList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, fieldsResponse{
		TileURL:     s.Config.TileURL,
		Attribution: s.Config.Attribution,
		Fields:      s.Config.Fields,
	})
}

// HandleMount mounts a control for a field preset or an inline configuration.
func (s *ServerContext) HandleMount(w http.ResponseWriter, r *http.Request) {
	var req mountRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	field, err := s.resolveField(req.Field, req.Config)
	if err != nil {
		writeError(w, http.StatusNotFound, fmt.Errorf("%w: %q", err, req.Field))
		return
	}

	sess, err := s.mount(field, req.Value)
	switch {
	case errors.Is(err, errTooManySessions):
		writeError(w, http.StatusServiceUnavailable, err)
		return
	case err != nil:
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	writeJSON(w, http.StatusCreated, s.describe(sess))
}

// HandleControl reports the current value and view of a control.
func (s *ServerContext) HandleControl(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session) {
		writeJSON(w, http.StatusOK, s.describe(sess))
	})
}

// HandleUnmount releases a control.
func (s *ServerContext) HandleUnmount(w http.ResponseWriter, r *http.Request) {
	if err := s.unmount(r.PathValue("id")); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, errUnknownSession) {
			status = http.StatusNotFound
		}
		writeError(w, status, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDraw completes a sketch. The geometry is in the display frame, as the
// browser surface reports it.
func (s *ServerContext) HandleDraw(w http.ResponseWriter, r *http.Request) {
	var req drawRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Geometry == nil || req.Geometry.Geometry() == nil {
		writeError(w, http.StatusBadRequest, errors.New("geometry is required"))
		return
	}

	s.withInput(w, r, func(in engine.Input) error {
		return in.FinishDraw(req.Geometry.Geometry())
	})
}

// HandleModify applies an edited geometry, or drags the vertex nearest to
// from onto to.
func (s *ServerContext) HandleModify(w http.ResponseWriter, r *http.Request) {
	var req modifyRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Geometry != nil && req.Geometry.Geometry() == nil {
		writeError(w, http.StatusBadRequest, errors.New("geometry is empty"))
		return
	}
	if req.Resolution < 0 {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid resolution %v", req.Resolution))
		return
	}

	s.withInput(w, r, func(in engine.Input) error {
		if req.Geometry != nil {
			return in.ModifyFeature(req.Geometry.Geometry())
		}
		return in.DragVertex(req.From, req.To, req.Resolution)
	})
}

// HandlePreview renders the control as WebP, optionally scaled to ?w= pixels.
func (s *ServerContext) HandlePreview(w http.ResponseWriter, r *http.Request) {
	width := 0
	if v := r.URL.Query().Get("w"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid width %q", v))
			return
		}
		width = n
	}

	s.withSession(w, r, func(sess *session) {
		c := sess.control
		vw, vh := c.Engine().Size()
		img := render.Thumbnail(render.Snapshot(c.Feature(), c.View(), vw, vh), width)

		w.Header().Set("Content-Type", "image/webp")
		w.Header().Set("Cache-Control", "no-store")
		if err := render.EncodeWebP(w, img, 80); err != nil {
			log.Error().Err(err).Str("id", sess.id).Msg("Failed to encode preview")
		}
	})
}

// HandleIndex serves the main HTML application.
func (s *ServerContext) HandleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && strings.Contains(r.URL.Path, ".") {
		http.NotFound(w, r)
		return
	}

	etag := fmt.Sprintf(`"%x"`, len(s.IndexHTML))

	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, no-cache")
	_, _ = w.Write(s.IndexHTML)
}

func (s *ServerContext) withSession(w http.ResponseWriter, r *http.Request, fn func(*session)) {
	sess, err := s.session(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.control.Closed() {
		writeError(w, http.StatusGone, engine.ErrClosed)
		return
	}
	fn(sess)
}

// withInput delivers one input event and answers with the resulting state.
func (s *ServerContext) withInput(w http.ResponseWriter, r *http.Request, fn func(engine.Input) error) {
	s.withSession(w, r, func(sess *session) {
		in, ok := sess.control.Input()
		if !ok {
			writeError(w, http.StatusNotImplemented, errors.New("engine does not accept remote input"))
			return
		}

		if err := fn(in); err != nil {
			status := http.StatusInternalServerError
			switch {
			case errors.Is(err, engine.ErrWrongType), errors.Is(err, engine.ErrNoInteraction),
				errors.Is(err, geo.ErrInvalidGeometry):
				status = http.StatusUnprocessableEntity
			case errors.Is(err, engine.ErrClosed):
				status = http.StatusGone
			}
			writeError(w, status, err)
			return
		}

		writeJSON(w, http.StatusOK, s.describe(sess))
	})
}

// describe must be called with sess.mu held.
func (s *ServerContext) describe(sess *session) controlResponse {
	c := sess.control
	resp := controlResponse{
		ID:          sess.id,
		Field:       c.Field(),
		Value:       c.Value(),
		View:        c.View(),
		Shell:       c.Shell(),
		Changes:     sess.changes,
		TileURL:     s.Config.TileURL,
		Attribution: s.Config.Attribution,
	}
	if fault := c.Fault(); fault != nil {
		resp.Fault = fault.Error()
	}
	if f := c.Feature(); f != nil {
		resp.Feature = geojson.NewGeometry(f.Geometry)
	}
	return resp
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Ignoring error as we cannot handle client disconnects
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
