// Package requestid attaches a correlation ID to every HTTP request.
//
// Middleware reuses a client supplied X-Request-ID header when it is a short
// string of letters, digits, dashes and underscores; anything else is replaced
// with a fresh UUIDv4. The ID is stored in the request context and echoed in
// the response header. New accepts options for a custom header name or
// generator.
//
// LoggerExtractor plugs the ID into loggers built with the logger package:
//
//	log := logger.New(logger.WithContextExtractors(requestid.LoggerExtractor()))
//
//	r := chi.NewRouter()
//	r.Use(requestid.Middleware)
package requestid
