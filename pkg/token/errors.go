package token

import "errors"

var (
	ErrMalformedToken   = errors.New("token: malformed token")
	ErrInvalidSignature = errors.New("token: invalid signature")
	ErrSerialization    = errors.New("token: failed to serialize payload")
	ErrDeserialization  = errors.New("token: failed to deserialize payload")
	ErrNilProvider      = errors.New("token: nil secret provider")
	ErrMissingToken     = errors.New("token: missing token")
)
