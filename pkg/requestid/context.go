package requestid

import "context"

type ctxKey struct{}

// WithContext returns ctx carrying id. An empty id leaves ctx unchanged so a
// parent request ID is never masked.
func WithContext(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the request ID stored by WithContext or the middleware,
// or "" when there is none.
func FromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
