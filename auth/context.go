package auth

import "context"

type contextKey int

const claimsContextKey contextKey = iota

// NewContextWithClaims attaches verified session claims to a context.
func NewContextWithClaims(ctx context.Context, claims *SessionClaims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// ClaimsFromContext returns the session claims placed by the middleware,
// or false when the request never passed through it.
func ClaimsFromContext(ctx context.Context) (*SessionClaims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*SessionClaims)
	return claims, ok
}
