package seal

import "errors"

var (
	ErrInvalidKey          = errors.New("invalid master key: must be 32 bytes")
	ErrSealFailed          = errors.New("seal failed")
	ErrOpenFailed          = errors.New("open failed")
	ErrInvalidCiphertext   = errors.New("invalid sealed value")
	ErrKeyDerivationFailed = errors.New("key derivation failed")
)
