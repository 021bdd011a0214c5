// Package credentials carries the bearer credential used for backend calls.
//
// The console stores the operator's token client-side and sends it with each
// request; the gateway forwards that same token to the platform backend. When
// a call has no forwarded token (background jobs, CLI use) a configured
// oauth2.TokenSource is used instead.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/oauth2"
)

type contextKey string

const bearerKey = contextKey("bearer")

// ErrNoCredential is returned when neither a forwarded token nor a fallback is available.
var ErrNoCredential = errors.New("no bearer credential available")

// WithBearer stores a raw bearer token in ctx.
func WithBearer(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, bearerKey, token)
}

// BearerFromCtx returns the forwarded bearer token, if any.
func BearerFromCtx(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(bearerKey).(string)
	return token, ok && token != ""
}

// Resolver picks the token for an outgoing backend request.
type Resolver struct {
	fallback oauth2.TokenSource
}

// NewResolver creates a Resolver. fallback may be nil.
func NewResolver(fallback oauth2.TokenSource) *Resolver {
	return &Resolver{fallback: fallback}
}

// Token returns the forwarded token from ctx or, failing that, the fallback's.
func (r *Resolver) Token(ctx context.Context) (*oauth2.Token, error) {
	if bearer, ok := BearerFromCtx(ctx); ok {
		return &oauth2.Token{AccessToken: bearer, TokenType: "Bearer"}, nil
	}
	if r == nil || r.fallback == nil {
		return nil, ErrNoCredential
	}
	return r.fallback.Token()
}

// FileTokenSource reads a bearer token from a file on every call, so a token
// refreshed by an external process is picked up without a restart.
type FileTokenSource struct {
	Path string
}

// Token implements oauth2.TokenSource.
func (s FileTokenSource) Token() (*oauth2.Token, error) {
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read token file %s: %w", s.Path, err)
	}
	token := strings.TrimSpace(string(raw))
	if token == "" {
		return nil, fmt.Errorf("token file %s is empty: %w", s.Path, ErrNoCredential)
	}
	return &oauth2.Token{AccessToken: token, TokenType: "Bearer"}, nil
}

var _ oauth2.TokenSource = FileTokenSource{}
