package token

import (
	"bytes"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"strings"
)

// Header is the fixed JSON header of every issued token.
const Header = `{"alg":"HS256","typ":"JWT"}`

// headerSegment is computed once; the header never changes for the process lifetime.
var headerSegment = encodeSegment([]byte(Header))

// SecretProvider supplies the shared secret used to sign and verify tokens.
// It is called on every operation and must be safe for concurrent reads.
type SecretProvider interface {
	ProvideSecret() string
}

// Serializer converts payloads to and from their JSON representation.
type Serializer interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

type jsonSerializer struct {
	strict bool
}

func (s jsonSerializer) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (s jsonSerializer) Unmarshal(data []byte, v any) error {
	if !s.strict {
		return json.Unmarshal(data, v)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errTrailingData
	}
	return nil
}

var errTrailingData = errors.New("unexpected data after top-level value")

// Option configures a Service.
type Option func(*Service)

// WithSerializer replaces the default encoding/json serializer.
// Nil serializers are ignored.
func WithSerializer(s Serializer) Option {
	return func(svc *Service) {
		if s != nil {
			svc.serializer = s
		}
	}
}

// WithStrictDecoding rejects payloads containing fields unknown to the target type.
// Only applies to the default serializer.
func WithStrictDecoding() Option {
	return func(svc *Service) {
		if js, ok := svc.serializer.(jsonSerializer); ok {
			js.strict = true
			svc.serializer = js
		}
	}
}

// WithConstantTimeCompare compares signatures with crypto/subtle instead of
// plain string equality.
func WithConstantTimeCompare() Option {
	return func(svc *Service) {
		svc.equal = constantTimeEqual
	}
}

// Service issues and verifies tokens with a secret taken from its provider.
// It holds no mutable state and is safe for concurrent use.
type Service struct {
	provider   SecretProvider
	serializer Serializer
	equal      func(a, b string) bool
}

// New creates a Service bound to the given secret provider.
func New(provider SecretProvider, opts ...Option) (*Service, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}

	svc := &Service{
		provider:   provider,
		serializer: jsonSerializer{},
		equal:      plainEqual,
	}
	for _, opt := range opts {
		opt(svc)
	}

	return svc, nil
}

// Issue serializes the payload and returns a signed token.
// Calling it twice with the same payload and secret yields the same token.
func (s *Service) Issue(payload any) (string, error) {
	data, err := s.serializer.Marshal(payload)
	if err != nil {
		return "", errors.Join(ErrSerialization, err)
	}

	payloadSegment := encodeSegment(data)
	signature := s.sign(headerSegment, payloadSegment)

	return headerSegment + "." + payloadSegment + "." + signature, nil
}

// Verify checks the token signature and decodes its payload into dst.
// The header segment is not decoded; its bytes only take part in the signature.
func (s *Service) Verify(token string, dst any) error {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return ErrMalformedToken
	}

	header, payload, signature := parts[0], parts[1], parts[2]

	expected := s.sign(header, payload)
	if !s.equal(signature, expected) {
		return ErrInvalidSignature
	}

	data, err := decodeSegment(payload)
	if err != nil {
		return errors.Join(ErrDeserialization, err)
	}

	if err := s.serializer.Unmarshal(data, dst); err != nil {
		return errors.Join(ErrDeserialization, err)
	}

	return nil
}

// sign hashes the two encoded segments followed by the current secret.
// This is a plain SHA-256 over secret-suffixed data, not HMAC.
func (s *Service) sign(header, payload string) string {
	secret := s.provider.ProvideSecret()
	sum := sha256.Sum256([]byte(header + payload + secret))
	return encodeSegment(sum[:])
}

func plainEqual(a, b string) bool {
	return a == b
}

func constantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
