package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/sigtoken/pkg/httpserver"
	"github.com/dmitrymomot/sigtoken/pkg/logger"
	"github.com/dmitrymomot/sigtoken/pkg/requestid"
	"github.com/dmitrymomot/sigtoken/pkg/token"
)

// DefaultBodyLimit caps request bodies.
const DefaultBodyLimit int64 = 1 << 20

type options struct {
	logger    *slog.Logger
	bodyLimit int64
	checks    []httpserver.Check
}

// Option configures the router.
type Option func(*options)

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithBodyLimit overrides DefaultBodyLimit.
func WithBodyLimit(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.bodyLimit = n
		}
	}
}

// WithReadinessChecks adds checks served on /ready.
func WithReadinessChecks(checks ...httpserver.Check) Option {
	return func(o *options) { o.checks = append(o.checks, checks...) }
}

// NewRouter builds the HTTP API around svc.
func NewRouter(svc *token.Service, opts ...Option) http.Handler {
	o := options{
		logger:    logger.Nop(),
		bodyLimit: DefaultBodyLimit,
	}
	for _, opt := range opts {
		opt(&o)
	}

	h := &handler{
		svc:       svc,
		log:       o.logger.With(logger.Component("api")),
		bodyLimit: o.bodyLimit,
	}

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(accessLog(h.log))
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, ErrNotFound, "")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, ErrMethodNotAllowed, "")
	})

	r.Get("/health", httpserver.HealthCheckHandler(h.log))
	r.Get("/ready", httpserver.HealthCheckHandler(h.log, o.checks...))

	r.Route("/tokens", func(r chi.Router) {
		r.Post("/", h.issue)
		r.Post("/verify", h.verify)
	})

	r.With(token.Middleware[json.RawMessage](svc, token.WithErrorHandler(h.unauthorized))).
		Get("/whoami", h.whoami)

	return r
}
