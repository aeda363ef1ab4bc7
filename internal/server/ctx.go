package server

import (
	"errors"
	"sync"
	"time"

	"github.com/woozymasta/geofield/assets"
	"github.com/woozymasta/geofield/internal/config"
	"github.com/woozymasta/geofield/internal/control"
	"github.com/woozymasta/geofield/internal/engine"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	errTooManySessions = errors.New("too many mounted controls")
	errUnknownField    = errors.New("unknown field")
	errUnknownSession  = errors.New("unknown control")
)

// ServerContext holds dependencies for request handlers.
type ServerContext struct {
	Config    *config.Config
	Engine    engine.Factory
	sessions  map[string]*session
	IndexHTML []byte
	mu        sync.RWMutex
}

// session is one mounted control. Its mutex keeps the control single threaded.
type session struct {
	created time.Time
	control *control.Control
	id      string
	changes int
	mu      sync.Mutex
}

// NewServerContext initializes the context from a validated configuration.
func NewServerContext(cfg *config.Config) *ServerContext {
	log.Info().Int("config_fields_count", len(cfg.Fields)).Msg("Initializing server context")

	for _, f := range cfg.Fields {
		log.Debug().
			Str("field", f.Name).
			Str("type", string(f.Type)).
			Str("format", f.Format).
			Int("decimals", f.Decimals).
			Bool("commit_on_modify", f.CommitOnModify).
			Msg("Field preset loaded")
	}

	log.Info().
		Str("tiles", cfg.TileURL).
		Int("max_sessions", cfg.MaxSessions).
		Msg("Server context initialized successfully")

	return &ServerContext{
		Config:    cfg,
		Engine:    engine.Default,
		IndexHTML: assets.Index,
		sessions:  make(map[string]*session),
	}
}

// resolveField picks the inline configuration, else the named preset, else defaults.
func (s *ServerContext) resolveField(name string, inline *config.Field) (config.Field, error) {
	if inline != nil {
		f := *inline
		if f.Name == "" {
			f.Name = name
		}
		return f, nil
	}
	if name == "" {
		return config.NewField(""), nil
	}
	if f, ok := s.Config.Field(name); ok {
		return f, nil
	}
	return config.Field{}, errUnknownField
}

func (s *ServerContext) mount(field config.Field, value string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.sessions) >= s.Config.MaxSessions {
		return nil, errTooManySessions
	}

	sess := &session{id: uuid.NewString(), created: time.Now()}
	c, err := control.Mount(control.Options{
		Field:  field,
		Value:  value,
		Engine: s.Engine,
		EngineOptions: engine.Options{
			Width:       s.Config.Width,
			TileURL:     s.Config.TileURL,
			Attribution: s.Config.Attribution,
		},
		// runs under sess.mu, taken by the handler delivering the input
		OnChange: func(string) { sess.changes++ },
	})
	if err != nil {
		return nil, err
	}
	sess.control = c
	s.sessions[sess.id] = sess

	if fault := c.Fault(); fault != nil {
		log.Warn().Err(fault).Str("id", sess.id).Msg("Control mounted with malformed value")
	}
	log.Debug().Str("id", sess.id).Str("field", field.Name).Msg("Control mounted")

	return sess, nil
}

func (s *ServerContext) session(id string) (*session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, errUnknownSession
	}
	return sess, nil
}

func (s *ServerContext) unmount(id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return errUnknownSession
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	log.Debug().
		Str("id", id).
		Int("changes", sess.changes).
		Dur("age", time.Since(sess.created)).
		Msg("Control unmounted")

	return sess.control.Close()
}

// Sessions returns the number of mounted controls.
func (s *ServerContext) Sessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Shutdown unmounts every control.
func (s *ServerContext) Shutdown() {
	s.mu.Lock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	for _, id := range ids {
		if err := s.unmount(id); err != nil {
			log.Error().Err(err).Str("id", id).Msg("Failed to unmount control")
		}
	}
}
