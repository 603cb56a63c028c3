// Package config loads application configuration from environment variables.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11:
//
//   - LoadEnv loads one or more .env files; without arguments it loads the
//     default .env in the working directory and tolerates its absence.
//   - Load parses the environment into a tagged struct and caches the result
//     per type, so repeated calls are cheap and consistent.
//   - MustLoad and MustLoadEnv panic instead of returning errors.
//   - Reset clears the cache, which is mostly useful in tests.
//
// A failed parse is not cached; the next Load for that type tries again.
//
// # Usage
//
//	type Config struct {
//		Secret string `env:"SIGTOKEN_SECRET,required"`
//		Port   int    `env:"HTTP_PORT" envDefault:"8080"`
//	}
//
//	var cfg Config
//	config.MustLoad(&cfg)
//
// # Errors
//
// ErrParsingConfig, ErrLoadingEnvFile, ErrNilPointer and ErrConfigNotLoaded
// can be matched with errors.Is.
package config
