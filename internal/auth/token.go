// Package auth supplies the session token attached to createURL calls.
package auth

import (
	"context"
	"strings"

	"github.com/IgorGrieder/shortlink/internal/processing/links"
)

var (
	_ links.AuthTokenProvider = Static("")
	_ links.AuthTokenProvider = FromContext{}
	_ links.AuthTokenProvider = Func(nil)
)

// Static always returns the same token, typically AUTH_TOKEN from the config.
type Static string

func (s Static) AuthToken(context.Context) (string, error) {
	token := strings.TrimSpace(string(s))
	if token == "" {
		return "", links.ErrNoAuthToken
	}
	return token, nil
}

type tokenKey struct{}

// WithToken stores a per-request token in ctx.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFrom returns the token stored by WithToken.
func TokenFrom(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey{}).(string)
	if !ok || strings.TrimSpace(token) == "" {
		return "", false
	}
	return token, true
}

// FromContext reads the token placed in the request context by the gateway.
type FromContext struct{}

func (FromContext) AuthToken(ctx context.Context) (string, error) {
	token, ok := TokenFrom(ctx)
	if !ok {
		return "", links.ErrNoAuthToken
	}
	return token, nil
}

// Func adapts a plain function.
type Func func(ctx context.Context) (string, error)

func (f Func) AuthToken(ctx context.Context) (string, error) {
	if f == nil {
		return "", links.ErrNoAuthToken
	}
	return f(ctx)
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	const prefix = "bearer "
	header = strings.TrimSpace(header)
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
