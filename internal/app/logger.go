package app

import (
	"io"
	"log/slog"

	"github.com/dmitrymomot/sigtoken/pkg/logger"
	"github.com/dmitrymomot/sigtoken/pkg/requestid"
)

const serviceName = "sigtoken"

// NewLogger builds the process logger from the environment preset. An
// explicit SIGTOKEN_LOG_LEVEL overrides the preset level.
func NewLogger(cfg Config, w io.Writer) *slog.Logger {
	return logger.New(
		logger.WithOutput(w),
		logger.WithEnvironment(cfg.Env, serviceName),
		logger.WithLevelString(cfg.LogLevel),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	)
}
