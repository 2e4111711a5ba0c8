// Package api exposes the timer over a local JSON control API, so editors
// and status bars can drive the same engine as the CLI.
package api

import (
	"net/http"
	"time"

	"github.com/alexanderramin/efficiency/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
)

// Options tunes the router.
type Options struct {
	// RateLimit is the per-IP request budget per minute. Zero disables it.
	RateLimit int
}

type server struct {
	timer   service.TimerService
	sources service.SourceService
}

// NewRouter returns the control API handler.
func NewRouter(timer service.TimerService, sources service.SourceService, opts Options) http.Handler {
	s := &server{timer: timer, sources: sources}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	if opts.RateLimit > 0 {
		r.Use(rateLimit(opts.RateLimit, time.Minute))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "no such endpoint")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", r.Method+" is not supported here")
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/timer", s.handleStatus)
		r.Get("/timer/stop-preview", s.handleStopPreview)
		r.Post("/timer/start", s.handleStart)
		r.Post("/timer/pause", s.handlePause)
		r.Post("/timer/resume", s.handleResume)
		r.Post("/timer/interrupt", s.handleInterrupt)
		r.Post("/timer/stop", s.handleStop)

		r.Get("/stack", s.handleStack)
		r.Post("/stack/{id}/resume", s.handleStackResume)

		r.Get("/sources", s.handleSources)
	})

	return r
}

// rateLimit limits requests per client IP and answers 429 in the API's
// error shape.
func rateLimit(limit int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(
		limit,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate_limit_exceeded", "too many requests, try again later")
		}),
	)
}
