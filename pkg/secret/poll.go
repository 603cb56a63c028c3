package secret

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/sigtoken/pkg/logger"
)

// Refresher is implemented by providers that can reload from their source.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Poll calls r.Refresh every interval until ctx is done. Failed refreshes
// are logged and the provider keeps its previous secret.
func Poll(ctx context.Context, r Refresher, interval time.Duration, log *slog.Logger) error {
	if r == nil || interval <= 0 {
		return ErrInvalidConfig
	}
	if log == nil {
		log = logger.Nop()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			start := time.Now()
			if err := r.Refresh(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				log.WarnContext(ctx, "secret refresh failed, keeping previous value",
					logger.Error(err),
					logger.Duration(time.Since(start)),
				)
				continue
			}
			log.DebugContext(ctx, "secret refreshed", logger.Duration(time.Since(start)))
		}
	}
}
