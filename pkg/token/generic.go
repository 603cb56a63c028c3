package token

// ValidationResult pairs a decoded payload with its validity.
// Err holds the reason when IsValid is false.
type ValidationResult[T any] struct {
	Result  T
	IsValid bool
	Err     error
}

// Issue creates a token for a typed payload.
func Issue[T any](s *Service, payload T) (string, error) {
	return s.Issue(payload)
}

// Verify checks the token and decodes its payload into T.
// The zero value of T is returned on failure.
func Verify[T any](s *Service, token string) (T, error) {
	var payload T
	if err := s.Verify(token, &payload); err != nil {
		var zero T
		return zero, err
	}
	return payload, nil
}

// Validate is the non-failing form of Verify.
func Validate[T any](s *Service, token string) ValidationResult[T] {
	payload, err := Verify[T](s, token)
	if err != nil {
		return ValidationResult[T]{Err: err}
	}
	return ValidationResult[T]{Result: payload, IsValid: true}
}
