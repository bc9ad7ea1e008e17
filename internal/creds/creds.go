// Package creds abstracts how API credentials are obtained. The document
// strategy consumes a Provider; how tokens are minted or refreshed is not the
// pipeline's concern.
package creds

import (
	"context"
	"errors"
)

// ErrNoCredentials is returned by providers that have nothing to offer.
var ErrNoCredentials = errors.New("no credentials configured")

// Provider yields a bearer token for authenticated API calls.
type Provider interface {
	Token(ctx context.Context) (string, error)
}

// Static is a fixed token, typically loaded from configuration or the
// environment at startup.
type Static string

// Token returns the fixed token, or ErrNoCredentials when empty.
func (s Static) Token(context.Context) (string, error) {
	if s == "" {
		return "", ErrNoCredentials
	}
	return string(s), nil
}
