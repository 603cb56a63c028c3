package token

import "context"

// contextKey is a private type for context keys to avoid collisions.
type contextKey struct{ name string }

func (c contextKey) String() string { return c.name }

var (
	tokenContextKey   = &contextKey{name: "token"}
	payloadContextKey = &contextKey{name: "token_payload"}
)

// WithToken stores the raw token string in the context.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenContextKey, token)
}

// TokenFromContext returns the raw token string stored by WithToken.
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenContextKey).(string)
	return token, ok
}

// WithPayload stores a verified payload in the context.
func WithPayload(ctx context.Context, payload any) context.Context {
	return context.WithValue(ctx, payloadContextKey, payload)
}

// PayloadFromContext returns the verified payload as T.
// The second value is false when no payload is stored or it has a different type.
func PayloadFromContext[T any](ctx context.Context) (T, bool) {
	payload, ok := ctx.Value(payloadContextKey).(T)
	if !ok {
		var zero T
		return zero, false
	}
	return payload, true
}
