package secret

import (
	"errors"

	"github.com/caarlos0/env/v11"
)

type envSecret struct {
	Secret string `env:"SECRET,required,notEmpty"`
}

// FromEnv reads <prefix>SECRET once. A missing or empty variable fails with
// ErrSecretUnavailable.
func FromEnv(prefix string, opts ...Option) (Provider, error) {
	o := applyOptions(opts)

	cfg, err := env.ParseAsWithOptions[envSecret](env.Options{Prefix: prefix})
	if err != nil {
		return nil, errors.Join(ErrSecretUnavailable, err)
	}

	value, err := o.normalize(cfg.Secret)
	if err != nil {
		return nil, errors.Join(ErrSecretUnavailable, err)
	}

	return staticProvider(value), nil
}
