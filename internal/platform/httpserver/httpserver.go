// Package httpserver builds the *http.Server the ledger binary listens with.
package httpserver

import (
	"log/slog"
	"net/http"
	"time"
)

// writeSlack is added on top of the request timeout so a handler that hits
// its deadline can still write the 504 body.
const writeSlack = 15 * time.Second

// Option adjusts the server after defaults are applied.
type Option func(*http.Server)

// WithRequestTimeout sizes the write timeout from the per-request deadline
// enforced by the router.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *http.Server) {
		if d > 0 {
			s.WriteTimeout = d + writeSlack
		}
	}
}

// WithLogger routes net/http's internal error log through logger at warn
// level.
func WithLogger(logger *slog.Logger) Option {
	return func(s *http.Server) {
		if logger != nil {
			s.ErrorLog = slog.NewLogLogger(logger.Handler(), slog.LevelWarn)
		}
	}
}

func New(addr string, handler http.Handler, opts ...Option) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      45 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	for _, opt := range opts {
		opt(srv)
	}
	return srv
}
