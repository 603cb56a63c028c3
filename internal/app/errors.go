package app

import "errors"

var (
	ErrInvalidConfig     = errors.New("app: invalid configuration")
	ErrUnsupportedSource = errors.New("app: unsupported secret source")
	ErrSecretSetup       = errors.New("app: failed to set up secret provider")
	ErrRotate            = errors.New("app: failed to rotate secret")
)
