// Package logger builds slog loggers from functional options and injects
// context values (such as request IDs) into every record.
//
// New picks slog.NewTextHandler or slog.NewJSONHandler according to the
// configured Format, applies static attributes and wraps the result in
// LogHandlerDecorator, which runs the registered ContextExtractor callbacks on
// each Handle call.
//
// # Usage
//
//	import "github.com/dmitrymomot/sigtoken/pkg/logger"
//
//	log := logger.New(
//	    logger.WithEnvironment(cfg.Env, "sigtoken"),
//	    logger.WithLevelString(cfg.LogLevel),
//	    logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	logger.SetAsDefault(log)
//
//	log.InfoContext(ctx, "secret reloaded",
//	    logger.Provider("file"),
//	    logger.Path(path),
//	)
//
// # Configuration
//
//   - WithDevelopment / WithStaging / WithProduction / WithEnvironment: presets.
//   - WithFormat / WithTextFormatter / WithJSONFormatter: output format.
//   - WithLevel / WithLevelString: minimum level.
//   - WithAttr: static attributes.
//   - WithContextExtractors / WithContextValue: attributes pulled from context.
//
// Error and Errors return an empty attribute for nil errors, so
// log.Info("done", logger.Error(err)) needs no nil check.
package logger
