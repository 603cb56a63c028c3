package requestid

import (
	"net/http"
	"regexp"

	"github.com/google/uuid"
)

const (
	Header      = "X-Request-ID"
	maxIDLength = 128
	idPattern   = "^[a-zA-Z0-9_-]+$"
)

var validIDRegex = regexp.MustCompile(idPattern)

// Option configures the middleware returned by New.
type Option func(*settings)

type settings struct {
	header   string
	generate func() string
}

// WithHeader reads and writes the ID under a different header name.
func WithHeader(name string) Option {
	return func(s *settings) {
		if name != "" {
			s.header = name
		}
	}
}

// WithGenerator replaces the UUIDv4 generator.
func WithGenerator(fn func() string) Option {
	return func(s *settings) {
		if fn != nil {
			s.generate = fn
		}
	}
}

// New returns middleware that reuses a valid incoming request ID or
// generates a new one, stores it in the context and echoes it back.
func New(opts ...Option) func(http.Handler) http.Handler {
	s := settings{
		header:   Header,
		generate: uuid.NewString,
	}
	for _, opt := range opts {
		opt(&s)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(s.header)
			if !isValidRequestID(requestID) {
				requestID = s.generate()
			}
			w.Header().Set(s.header, requestID)
			next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), requestID)))
		})
	}
}

// Middleware is New with default settings.
func Middleware(next http.Handler) http.Handler {
	return New()(next)
}

func isValidRequestID(id string) bool {
	if len(id) == 0 || len(id) > maxIDLength {
		return false
	}
	return validIDRegex.MatchString(id)
}
