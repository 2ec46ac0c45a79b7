// Package auth carries the caller's opaque credential through request
// contexts. Token issuance and validation belong to the surrounding
// service; this core only passes credentials through to tool calls.
package auth

import "context"

type contextKey string

// tokenContextKey is the context key for the caller's credential.
const tokenContextKey contextKey = "auth_token"

// WithToken returns a context carrying the caller's opaque credential.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenContextKey, token)
}

// TokenFrom extracts the caller's credential from the context.
// Returns ("", false) when the context carries none.
func TokenFrom(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenContextKey).(string)
	if !ok || token == "" {
		return "", false
	}
	return token, true
}
