package secret

import "errors"

var (
	ErrSecretUnavailable = errors.New("secret: source unavailable")
	ErrEmptySecret       = errors.New("secret: empty secret")
	ErrEmptyPath         = errors.New("secret: empty file path")
	ErrEmptyKey          = errors.New("secret: empty key")
	ErrInvalidConfig     = errors.New("secret: invalid configuration")
	ErrSecretTooLarge    = errors.New("secret: value exceeds size limit")
)
