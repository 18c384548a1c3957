// Package session owns the console's credential lifecycle: acquiring,
// storing, verifying, silently renewing, and invalidating the access/refresh
// token pair, and exposing the current authenticated identity.
package session

import (
	"context"

	"golang.org/x/oauth2"

	"github.com/onionrsv/console-session/identity"
	"github.com/onionrsv/console-session/tokenstore"
)

// Backend is the subset of the auth backend client the manager depends on.
// *backend.Client satisfies it; tests substitute a fake.
type Backend interface {
	ExchangeCredentials(ctx context.Context, email, password string) (tokenstore.TokenPair, error)
	Verify(ctx context.Context, accessToken string) bool
	Refresh(ctx context.Context, refreshToken string) (tokenstore.TokenPair, error)
	FetchProfile(ctx context.Context, accessToken string) (*identity.Identity, error)
	UpdateProfile(ctx context.Context, accessToken string, partial identity.Partial) (*identity.Identity, error)
	ChangePassword(ctx context.Context, accessToken, currentPassword, newPassword string) error
	Register(ctx context.Context, email, displayName, password string) error
}

// Session is the read-only contract exposed to console code. Consumers must
// not mutate the returned identity; all mutation flows through the
// operations so store/state invariants hold.
type Session interface {
	User() *identity.Identity
	IsAuthenticated() bool
	IsLoading() bool

	Login(ctx context.Context, email, password string) error
	Logout()
	Register(ctx context.Context, email, displayName, password string) error
	UpdateProfile(ctx context.Context, partial identity.Partial) error
	ChangePassword(ctx context.Context, currentPassword, newPassword string) error
	RefreshNow(ctx context.Context) error

	TokenSource() oauth2.TokenSource
}

// credentials is the tagged variant behind an authenticated session: either
// a backed pair the renewal scheduler keeps fresh, or a fixed bypass pair
// for which no backend call is ever made. Each operation matches on the
// variant once instead of re-checking reserved token strings.
type credentials interface {
	pair() tokenstore.TokenPair
}

type backedCredentials struct {
	tokens tokenstore.TokenPair
}

func (c backedCredentials) pair() tokenstore.TokenPair { return c.tokens }

type bypassCredentials struct {
	tokens tokenstore.TokenPair
}

func (c bypassCredentials) pair() tokenstore.TokenPair { return c.tokens }
