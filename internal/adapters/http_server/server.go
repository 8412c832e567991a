package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
)

type Server struct{ mux *chi.Mux }

type Options struct {
	// CORSOrigins enables CORS for browsers calling the API directly.
	CORSOrigins []string
	Timeout     time.Duration
}

func New(opt Options) *Server {
	if opt.Timeout <= 0 {
		opt.Timeout = 15 * time.Second
	}
	m := chi.NewRouter()

	// All middlewares go here (before any routes are added)
	m.Use(chimw.RealIP)
	m.Use(chimw.RequestID)
	m.Use(chimw.Recoverer)
	if len(opt.CORSOrigins) > 0 {
		// CORS sits ahead of routing so preflight OPTIONS never hits a 405
		m.Use(cors.Handler(cors.Options{
			AllowedOrigins: opt.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type", "X-Requested-With"},
			MaxAge:         300,
		}))
	}
	m.Use(Timeout(opt.Timeout))
	m.Use(Metrics)
	m.Use(Logger(log.Logger))

	return &Server{mux: m}
}

func (s *Server) Mux() http.Handler { return s.mux }

// Mount attaches any extra handler (e.g., /metrics) to the router.
func (s *Server) Mount(path string, h http.Handler) {
	s.mux.Handle(path, h)
}
