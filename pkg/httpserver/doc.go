// Package httpserver wraps net/http with graceful shutdown, timeouts from
// the environment and slog logging.
//
// Run binds the listener first, so address errors are returned immediately
// wrapped in ErrStart, then serves until the context is cancelled, SIGINT or
// SIGTERM arrives (unless WithoutSignals is used) or Shutdown is called.
// Start hooks receive the bound address, which makes ":0" usable in tests.
//
//	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//		return err
//	}
//
// HealthCheckHandler serves liveness ("ALIVE") and readiness ("READY" /
// "NOT_READY") probes from a list of named checks.
package httpserver
