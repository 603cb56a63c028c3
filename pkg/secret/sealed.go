package secret

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"

	"github.com/dmitrymomot/sigtoken/pkg/logger"
	"github.com/dmitrymomot/sigtoken/pkg/seal"
)

type sealedState struct {
	ciphertext string
	plaintext  string
	// rejected is the last inner value that failed to open. The empty
	// string never opens, so it is a valid zero value.
	rejected string
}

// Sealed decrypts a seal.Seal ciphertext supplied by another provider.
// The inner provider is read on every call; decryption only happens when
// the ciphertext changes.
type Sealed struct {
	inner Provider
	key   []byte
	label string
	opts  options
	state atomic.Pointer[sealedState]
}

// NewSealed opens the inner provider's current value. A value that cannot
// be opened fails with ErrSecretUnavailable.
func NewSealed(inner Provider, masterKey []byte, label string, opts ...Option) (*Sealed, error) {
	if inner == nil {
		return nil, ErrInvalidConfig
	}
	if err := seal.ValidateKey(masterKey); err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}

	s := &Sealed{
		inner: inner,
		key:   masterKey,
		label: label,
		opts:  applyOptions(opts),
	}

	ciphertext := strings.TrimSpace(inner.ProvideSecret())
	plaintext, err := s.open(ciphertext)
	if err != nil {
		return nil, err
	}
	s.state.Store(&sealedState{ciphertext: ciphertext, plaintext: plaintext})

	return s, nil
}

// ProvideSecret returns the decrypted secret. If the inner value changed to
// something that does not open, the last good secret is returned and the bad
// value is not retried until the inner value changes again.
func (s *Sealed) ProvideSecret() string {
	current := s.state.Load()
	ciphertext := strings.TrimSpace(s.inner.ProvideSecret())
	if ciphertext == current.ciphertext || ciphertext == current.rejected {
		return current.plaintext
	}

	plaintext, err := s.open(ciphertext)
	if err != nil {
		next := *current
		next.rejected = ciphertext
		if s.state.CompareAndSwap(current, &next) {
			s.opts.logger.WarnContext(context.Background(), "sealed secret changed but cannot be opened, keeping previous value",
				logger.Component("secret.sealed"),
				logger.Error(err),
			)
		}
		return current.plaintext
	}

	s.state.Store(&sealedState{ciphertext: ciphertext, plaintext: plaintext})
	return plaintext
}

func (s *Sealed) open(ciphertext string) (string, error) {
	plaintext, err := seal.Open(s.key, s.label, ciphertext)
	if err != nil {
		return "", errors.Join(ErrSecretUnavailable, err)
	}

	plaintext, err = s.opts.normalize(plaintext)
	if err != nil {
		return "", errors.Join(ErrSecretUnavailable, err)
	}

	return plaintext, nil
}
