package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dmitrymomot/sigtoken/internal/api"
	"github.com/dmitrymomot/sigtoken/pkg/httpserver"
)

// Serve runs the HTTP API until ctx is done or the server stops.
func Serve(ctx context.Context, cfg Config, log *slog.Logger, opts ...httpserver.Option) error {
	src, err := OpenSource(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer src.Close()

	svc, err := NewTokenService(cfg, src.Provider)
	if err != nil {
		return err
	}

	router := api.NewRouter(svc,
		api.WithLogger(log),
		api.WithReadinessChecks(src.Checks...),
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	bgDone := make(chan error, 1)
	go func() { bgDone <- src.Run(ctx) }()

	srv := httpserver.NewFromConfig(cfg.HTTP, append([]httpserver.Option{httpserver.WithLogger(log)}, opts...)...)
	runErr := srv.Run(ctx, router)

	cancel()
	return errors.Join(runErr, <-bgDone)
}
