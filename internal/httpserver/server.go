// Package httpserver exposes the simulation engine over HTTP: single games
// whose reports are kept in a store, and aggregate batches.
package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/mancala/internal/game/core"
	"github.com/mitchelldurbincs/mancala/internal/monitoring"
	"github.com/mitchelldurbincs/mancala/internal/store"
	"github.com/mitchelldurbincs/mancala/internal/strategy"
)

const (
	defaultRequestTimeout = 10 * time.Second
	defaultMaxBatchGames  = 10000
)

// Options configures the handlers of a Server.
type Options struct {
	Rules          core.Rules
	MaxTurns       int
	RequestTimeout time.Duration
	// MaxBatchGames bounds POST /batches; <= 0 uses the default.
	MaxBatchGames int
	// BatchWorkers is passed to the batch runner; <= 0 uses NumCPU.
	BatchWorkers int
	// Monitor receives outcome counts; nil creates an unstarted one.
	Monitor *monitoring.Monitor
	Logger  zerolog.Logger
}

// Server bundles the router, the report store and the game rules.
type Server struct {
	r       *chi.Mux
	store   store.Store
	opts    Options
	monitor *monitoring.Monitor
	logger  zerolog.Logger
}

// New constructs a Server, installs middleware, and registers routes.
func New(st store.Store, opts Options) *Server {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = defaultRequestTimeout
	}
	if opts.MaxBatchGames <= 0 {
		opts.MaxBatchGames = defaultMaxBatchGames
	}

	if opts.Monitor == nil {
		opts.Monitor = monitoring.NewMonitor(opts.Logger, 0)
	}

	s := &Server{
		r:       chi.NewRouter(),
		store:   st,
		opts:    opts,
		monitor: opts.Monitor,
		logger:  opts.Logger.With().Str("component", "HTTPServer").Logger(),
	}

	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(requestLogger(s.logger))
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(opts.RequestTimeout))
	s.r.Use(jsonContentType)

	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service": "mancala",
			"endpoints": []string{
				"/health",
				"/metrics",
				"/strategies",
				"POST /simulations",
				"/simulations",
				"/simulations/{id}",
				"POST /batches",
			},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	s.r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.monitor.Snapshot())
	})
	s.r.Get("/strategies", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string][]string{"strategies": strategy.Names()})
	})

	s.mountSimulations()

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", r.URL.Path)
	})
	s.r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", r.Method+" "+r.URL.Path)
	})

	return s
}

// Router exposes the internal router (useful for tests and http.Server).
func (s *Server) Router() chi.Router { return s.r }

type errorRes struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorRes{Error: code, Message: message})
}
