package auth

import "context"

type contextKey struct{}

// Identity is the resolved tenant for the current request. UserID is
// the internal numeric id every store query is scoped by.
type Identity struct {
	UserID     int64
	ExternalID string
	Email      string
	Name       string
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}

// UserID returns the tenant id from the context, or 0 when absent.
// Callers must treat 0 as "cannot proceed", never as a wildcard.
func UserID(ctx context.Context) int64 {
	id, ok := FromContext(ctx)
	if !ok {
		return 0
	}
	return id.UserID
}
