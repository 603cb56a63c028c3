package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrymomot/sigtoken/pkg/httpserver"
	"github.com/dmitrymomot/sigtoken/pkg/pg"
	"github.com/dmitrymomot/sigtoken/pkg/redis"
)

// Secret sources accepted in SIGTOKEN_SECRET_SOURCE.
const (
	SourceStatic   = "static"
	SourceEnv      = "env"
	SourceFile     = "file"
	SourceWatch    = "watch"
	SourceRedis    = "redis"
	SourceS3       = "s3"
	SourcePostgres = "postgres"
)

// EnvPrefix is the prefix of every sigtoken-specific variable.
const EnvPrefix = "SIGTOKEN_"

// Config is loaded from the environment by config.Load.
type Config struct {
	Env      string `env:"SIGTOKEN_ENV" envDefault:"development"`
	LogLevel string `env:"SIGTOKEN_LOG_LEVEL"`

	SecretSource string `env:"SIGTOKEN_SECRET_SOURCE" envDefault:"env"`
	Secret       string `env:"SIGTOKEN_SECRET"`
	SecretFile   string `env:"SIGTOKEN_SECRET_FILE"`
	SecretTrim   bool   `env:"SIGTOKEN_SECRET_TRIM" envDefault:"false"`

	SecretRedisKey string `env:"SIGTOKEN_SECRET_REDIS_KEY" envDefault:"sigtoken:secret"`

	SecretS3Bucket    string `env:"SIGTOKEN_SECRET_S3_BUCKET"`
	SecretS3Key       string `env:"SIGTOKEN_SECRET_S3_KEY"`
	SecretS3Region    string `env:"SIGTOKEN_SECRET_S3_REGION"`
	SecretS3Endpoint  string `env:"SIGTOKEN_SECRET_S3_ENDPOINT"`
	SecretS3PathStyle bool   `env:"SIGTOKEN_SECRET_S3_PATH_STYLE"`
	SecretS3AccessKey string `env:"SIGTOKEN_SECRET_S3_ACCESS_KEY_ID"`
	SecretS3SecretKey string `env:"SIGTOKEN_SECRET_S3_SECRET_ACCESS_KEY"`

	SecretPGName string `env:"SIGTOKEN_SECRET_PG_NAME" envDefault:"default"`
	PGMigrate    bool   `env:"SIGTOKEN_PG_MIGRATE" envDefault:"true"`

	SealKey   string `env:"SIGTOKEN_SEAL_KEY"`
	SealLabel string `env:"SIGTOKEN_SEAL_LABEL" envDefault:"token-secret"`

	RefreshInterval time.Duration `env:"SIGTOKEN_REFRESH_INTERVAL" envDefault:"0s"`
	FetchTimeout    time.Duration `env:"SIGTOKEN_FETCH_TIMEOUT" envDefault:"5s"`
	WatchDebounce   time.Duration `env:"SIGTOKEN_WATCH_DEBOUNCE" envDefault:"500ms"`

	StrictDecoding bool `env:"SIGTOKEN_STRICT_DECODING" envDefault:"false"`
	ConstantTime   bool `env:"SIGTOKEN_CONSTANT_TIME" envDefault:"false"`

	HTTP  httpserver.Config
	Redis redis.Config
	PG    pg.Config
}

// Validate checks that the selected source has what it needs.
func (c Config) Validate() error {
	var errs []error
	require := func(ok bool, name string) {
		if !ok {
			errs = append(errs, fmt.Errorf("%s%s is required for source %q", EnvPrefix, name, c.SecretSource))
		}
	}

	switch c.SecretSource {
	case SourceStatic:
		require(c.Secret != "", "SECRET")
	case SourceEnv:
	case SourceFile, SourceWatch:
		require(c.SecretFile != "", "SECRET_FILE")
	case SourceRedis:
		require(c.SecretRedisKey != "", "SECRET_REDIS_KEY")
		require(c.Redis.ConnectionURL != "", "REDIS_URL (unprefixed)")
	case SourceS3:
		require(c.SecretS3Bucket != "", "SECRET_S3_BUCKET")
		require(c.SecretS3Key != "", "SECRET_S3_KEY")
		require(c.SecretS3Region != "", "SECRET_S3_REGION")
	case SourcePostgres:
		require(c.SecretPGName != "", "SECRET_PG_NAME")
		require(c.PG.ConnectionString != "", "PG_CONN_URL (unprefixed)")
	default:
		return errors.Join(ErrInvalidConfig, ErrUnsupportedSource, fmt.Errorf("source %q", c.SecretSource))
	}

	if c.RefreshInterval < 0 {
		errs = append(errs, fmt.Errorf("%sREFRESH_INTERVAL must not be negative", EnvPrefix))
	}

	if len(errs) > 0 {
		return errors.Join(append([]error{ErrInvalidConfig}, errs...)...)
	}
	return nil
}
