package app

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dmitrymomot/sigtoken/pkg/logger"
	"github.com/dmitrymomot/sigtoken/pkg/pg"
	"github.com/dmitrymomot/sigtoken/pkg/redis"
	"github.com/dmitrymomot/sigtoken/pkg/seal"
)

// GenerateSecret returns n random bytes encoded as unpadded base64.
func GenerateSecret(n int) (string, error) {
	if n <= 0 {
		return "", errors.Join(ErrRotate, errors.New("secret length must be positive"))
	}
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Join(ErrRotate, err)
	}
	return base64.RawStdEncoding.EncodeToString(buf), nil
}

// Rotate writes value to the configured writable source. Sealing is applied
// when SIGTOKEN_SEAL_KEY is set, so readers see the same format they load.
func Rotate(ctx context.Context, cfg Config, value string, log *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if value == "" {
		return errors.Join(ErrRotate, errors.New("empty secret"))
	}
	if log == nil {
		log = logger.Nop()
	}

	stored := value
	if cfg.SealKey != "" {
		key, err := seal.ParseKey(cfg.SealKey)
		if err != nil {
			return errors.Join(ErrRotate, err)
		}
		if stored, err = seal.Seal(key, cfg.SealLabel, value); err != nil {
			return errors.Join(ErrRotate, err)
		}
	}

	switch cfg.SecretSource {
	case SourceFile, SourceWatch:
		if err := writeFileAtomic(cfg.SecretFile, []byte(stored)); err != nil {
			return errors.Join(ErrRotate, err)
		}

	case SourceRedis:
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return errors.Join(ErrRotate, err)
		}
		defer client.Close()
		if err := client.Set(ctx, cfg.SecretRedisKey, stored, 0).Err(); err != nil {
			return errors.Join(ErrRotate, err)
		}

	case SourcePostgres:
		pool, err := pg.Connect(ctx, cfg.PG)
		if err != nil {
			return errors.Join(ErrRotate, err)
		}
		defer pool.Close()
		if cfg.PGMigrate {
			if err := pg.Migrate(ctx, pool, cfg.PG, log); err != nil {
				return errors.Join(ErrRotate, err)
			}
		}
		if err := pg.StoreSecret(ctx, pool, cfg.SecretPGName, stored); err != nil {
			if pg.IsCheckViolationError(err) {
				return errors.Join(ErrRotate, errors.New("secret rejected by table constraint"), err)
			}
			return errors.Join(ErrRotate, err)
		}

	default:
		return errors.Join(ErrRotate, ErrUnsupportedSource, fmt.Errorf("source %q is read-only", cfg.SecretSource))
	}

	log.InfoContext(ctx, "secret rotated",
		logger.Provider(cfg.SecretSource),
		slog.Bool("sealed", cfg.SealKey != ""),
	)
	return nil
}

// writeFileAtomic replaces path via rename so watchers never see a partial write.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
