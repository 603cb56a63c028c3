package token

import (
	"net/http"
	"strings"
)

// ExtractorFunc pulls a raw token out of an HTTP request.
type ExtractorFunc func(r *http.Request) (string, error)

// SkipFunc reports whether verification should be bypassed for a request.
type SkipFunc func(r *http.Request) bool

// ErrorHandlerFunc writes the response for a request whose token was rejected.
type ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)

// MiddlewareConfig configures Middleware.
type MiddlewareConfig struct {
	Extractor    ExtractorFunc    // defaults to BearerTokenExtractor
	Skip         SkipFunc         // optional
	ErrorHandler ErrorHandlerFunc // defaults to a plain 401
}

// MiddlewareOption configures the middleware.
type MiddlewareOption func(*MiddlewareConfig)

func WithExtractor(fn ExtractorFunc) MiddlewareOption {
	return func(c *MiddlewareConfig) {
		if fn != nil {
			c.Extractor = fn
		}
	}
}

func WithSkip(fn SkipFunc) MiddlewareOption {
	return func(c *MiddlewareConfig) { c.Skip = fn }
}

func WithErrorHandler(fn ErrorHandlerFunc) MiddlewareOption {
	return func(c *MiddlewareConfig) {
		if fn != nil {
			c.ErrorHandler = fn
		}
	}
}

// Middleware verifies the request token and injects the raw token and the
// decoded payload of type T into the request context.
func Middleware[T any](svc *Service, opts ...MiddlewareOption) func(next http.Handler) http.Handler {
	cfg := MiddlewareConfig{
		Extractor:    BearerTokenExtractor,
		ErrorHandler: defaultErrorHandler,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Skip != nil && cfg.Skip(r) {
				next.ServeHTTP(w, r)
				return
			}

			raw, err := cfg.Extractor(r)
			if err != nil {
				cfg.ErrorHandler(w, r, err)
				return
			}

			payload, err := Verify[T](svc, raw)
			if err != nil {
				cfg.ErrorHandler(w, r, err)
				return
			}

			ctx := WithToken(r.Context(), raw)
			ctx = WithPayload(ctx, payload)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func defaultErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	http.Error(w, err.Error(), http.StatusUnauthorized)
}

// BearerTokenExtractor reads the token from an "Authorization: Bearer <token>" header.
func BearerTokenExtractor(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", ErrMissingToken
	}

	scheme, token, found := strings.Cut(authHeader, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", ErrMissingToken
	}

	return token, nil
}

// CookieTokenExtractor reads the token from the named cookie.
func CookieTokenExtractor(cookieName string) ExtractorFunc {
	return func(r *http.Request) (string, error) {
		cookie, err := r.Cookie(cookieName)
		if err != nil || cookie.Value == "" {
			return "", ErrMissingToken
		}
		return cookie.Value, nil
	}
}

// QueryTokenExtractor reads the token from a URL query parameter.
// Query strings end up in access logs, so prefer headers where possible.
func QueryTokenExtractor(paramName string) ExtractorFunc {
	return func(r *http.Request) (string, error) {
		token := r.URL.Query().Get(paramName)
		if token == "" {
			return "", ErrMissingToken
		}
		return token, nil
	}
}

// HeaderTokenExtractor reads the token from a custom header.
func HeaderTokenExtractor(headerName string) ExtractorFunc {
	return func(r *http.Request) (string, error) {
		token := r.Header.Get(headerName)
		if token == "" {
			return "", ErrMissingToken
		}
		return token, nil
	}
}
