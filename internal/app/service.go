package app

import (
	"github.com/dmitrymomot/sigtoken/pkg/secret"
	"github.com/dmitrymomot/sigtoken/pkg/token"
)

// NewTokenService builds the codec with the options selected in cfg.
func NewTokenService(cfg Config, provider secret.Provider) (*token.Service, error) {
	var opts []token.Option
	if cfg.StrictDecoding {
		opts = append(opts, token.WithStrictDecoding())
	}
	if cfg.ConstantTime {
		opts = append(opts, token.WithConstantTimeCompare())
	}
	return token.New(provider, opts...)
}
