package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/sigtoken/pkg/httpserver"
	"github.com/dmitrymomot/sigtoken/pkg/logger"
	"github.com/dmitrymomot/sigtoken/pkg/pg"
	"github.com/dmitrymomot/sigtoken/pkg/redis"
	"github.com/dmitrymomot/sigtoken/pkg/seal"
	"github.com/dmitrymomot/sigtoken/pkg/secret"
)

// Source is a configured secret provider together with the background work
// and connections it owns.
type Source struct {
	Provider secret.Provider
	Checks   []httpserver.Check

	runners []func(context.Context) error
	closers []func()
	log     *slog.Logger
}

// OpenSource builds the provider selected by cfg.SecretSource. When
// SIGTOKEN_SEAL_KEY is set the source value is treated as sealed and
// decrypted before use.
func OpenSource(ctx context.Context, cfg Config, log *slog.Logger) (*Source, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}

	s := &Source{log: log.With(logger.Component("secret"), logger.Provider(cfg.SecretSource))}
	opts := s.providerOptions(cfg)

	provider, err := s.open(ctx, cfg, opts)
	if err != nil {
		s.Close()
		return nil, errors.Join(ErrSecretSetup, err)
	}

	if cfg.SealKey != "" {
		key, err := seal.ParseKey(cfg.SealKey)
		if err != nil {
			s.Close()
			return nil, errors.Join(ErrSecretSetup, err)
		}
		provider, err = secret.NewSealed(provider, key, cfg.SealLabel, opts...)
		if err != nil {
			s.Close()
			return nil, errors.Join(ErrSecretSetup, err)
		}
	}

	s.Provider = provider
	s.log.InfoContext(ctx, "secret provider ready", slog.Bool("sealed", cfg.SealKey != ""))
	return s, nil
}

func (s *Source) providerOptions(cfg Config) []secret.Option {
	opts := []secret.Option{
		secret.WithLogger(s.log),
		secret.WithTimeout(cfg.FetchTimeout),
		secret.WithDebounce(cfg.WatchDebounce),
	}
	if cfg.SecretTrim {
		opts = append(opts, secret.WithTrimSpace())
	}
	return opts
}

func (s *Source) open(ctx context.Context, cfg Config, opts []secret.Option) (secret.Provider, error) {
	switch cfg.SecretSource {
	case SourceStatic:
		return secret.Static(cfg.Secret)

	case SourceEnv:
		return secret.FromEnv(EnvPrefix, opts...)

	case SourceFile, SourceWatch:
		f, err := secret.NewFile(cfg.SecretFile, opts...)
		if err != nil {
			return nil, err
		}
		if cfg.SecretSource == SourceWatch {
			s.runners = append(s.runners, f.Watch)
		} else {
			s.poll(cfg, reloader{f})
		}
		return f, nil

	case SourceRedis:
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, func() { _ = client.Close() })
		s.Checks = append(s.Checks, httpserver.Check{Name: "redis", Fn: redis.Healthcheck(client)})

		p, err := secret.NewRedis(ctx, client, cfg.SecretRedisKey, opts...)
		if err != nil {
			return nil, err
		}
		s.poll(cfg, p)
		return p, nil

	case SourceS3:
		p, err := secret.NewS3(ctx, secret.S3Config{
			Bucket:         cfg.SecretS3Bucket,
			Key:            cfg.SecretS3Key,
			Region:         cfg.SecretS3Region,
			AccessKeyID:    cfg.SecretS3AccessKey,
			SecretKey:      cfg.SecretS3SecretKey,
			Endpoint:       cfg.SecretS3Endpoint,
			ForcePathStyle: cfg.SecretS3PathStyle,
		}, opts...)
		if err != nil {
			return nil, err
		}
		s.poll(cfg, p)
		return p, nil

	case SourcePostgres:
		pool, err := pg.Connect(ctx, cfg.PG)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, pool.Close)
		s.Checks = append(s.Checks, httpserver.Check{Name: "postgres", Fn: pg.Healthcheck(pool)})

		if cfg.PGMigrate {
			if err := pg.Migrate(ctx, pool, cfg.PG, s.log); err != nil {
				return nil, err
			}
		}

		p, err := secret.NewPostgres(ctx, pool, cfg.SecretPGName, opts...)
		if err != nil {
			return nil, err
		}
		s.poll(cfg, p)
		return p, nil
	}

	return nil, ErrUnsupportedSource
}

func (s *Source) poll(cfg Config, r secret.Refresher) {
	if cfg.RefreshInterval <= 0 {
		return
	}
	s.runners = append(s.runners, func(ctx context.Context) error {
		return secret.Poll(ctx, r, cfg.RefreshInterval, s.log)
	})
}

// Run starts watchers and pollers and blocks until ctx is done.
func (s *Source) Run(ctx context.Context) error {
	if len(s.runners) == 0 {
		<-ctx.Done()
		return nil
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, run := range s.runners {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := run(ctx); err != nil {
				s.log.ErrorContext(ctx, "secret background task stopped", logger.Error(err))
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	return errors.Join(errs...)
}

// Close releases connections opened for the source.
func (s *Source) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

// reloader adapts File.Reload to secret.Refresher.
type reloader struct{ f *secret.File }

func (r reloader) Refresh(context.Context) error { return r.f.Reload() }
