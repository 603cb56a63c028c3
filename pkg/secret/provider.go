package secret

import (
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dmitrymomot/sigtoken/pkg/logger"
)

// maxSecretSize bounds how much is read from remote sources and files.
const maxSecretSize = 64 << 10

// Provider supplies the current secret.
type Provider interface {
	ProvideSecret() string
}

// Func adapts a plain function to Provider.
type Func func() string

func (f Func) ProvideSecret() string { return f() }

type staticProvider string

func (s staticProvider) ProvideSecret() string { return string(s) }

// Static returns a provider for a fixed secret.
func Static(secret string) (Provider, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return staticProvider(secret), nil
}

// Option configures providers. Options that do not apply to a provider are ignored.
type Option func(*options)

type options struct {
	trimSpace bool
	logger    *slog.Logger
	debounce  time.Duration
	timeout   time.Duration
	s3        s3Options
}

func defaultOptions() options {
	return options{
		logger:   logger.Nop(),
		debounce: 500 * time.Millisecond,
		timeout:  5 * time.Second,
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithTrimSpace strips leading and trailing whitespace from loaded values.
// Without it values are used verbatim, trailing newline included.
func WithTrimSpace() Option {
	return func(o *options) { o.trimSpace = true }
}

// WithLogger sets the logger used by background reloads. Nil is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithDebounce sets how long File.Watch waits for filesystem events to settle.
func WithDebounce(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.debounce = d
		}
	}
}

// WithTimeout bounds each remote fetch made by Redis, S3 and Postgres providers.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// normalize applies trimming and rejects empty values.
func (o options) normalize(raw string) (string, error) {
	if o.trimSpace {
		raw = strings.TrimSpace(raw)
	}
	if raw == "" {
		return "", ErrEmptySecret
	}
	return raw, nil
}

// snapshot holds the current secret for providers that reload.
type snapshot struct {
	v atomic.Pointer[string]
}

func (s *snapshot) load() string {
	if p := s.v.Load(); p != nil {
		return *p
	}
	return ""
}

func (s *snapshot) store(secret string) {
	s.v.Store(&secret)
}
