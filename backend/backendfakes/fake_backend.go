package backendfakes

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/onionrsv/console-session/backend"
	"github.com/onionrsv/console-session/identity"
	"github.com/onionrsv/console-session/session"
	"github.com/onionrsv/console-session/tokenstore"
)

var _ session.Backend = (*FakeBackend)(nil)

// FakeBackend is an in-memory stand-in for the auth backend. Behavior is
// driven by the exported knobs; every call is counted so tests can assert
// that bypass sessions make zero backend calls.
type FakeBackend struct {
	lock sync.Mutex

	// Accounts maps email -> password for ExchangeCredentials.
	Accounts map[string]string
	// Profile is returned by FetchProfile and UpdateProfile.
	Profile *identity.Identity
	// ValidTokens is the set of access tokens Verify accepts.
	ValidTokens map[string]bool

	// NextPair, when set, is returned by the next ExchangeCredentials or
	// Refresh call instead of a minted pair.
	NextPair *tokenstore.TokenPair

	ExchangeErr       error
	RefreshErr        error
	FetchProfileErr   error
	UpdateProfileErr  error
	ChangePasswordErr error
	RegisterErr       error

	ExchangeCalls       int
	VerifyCalls         int
	RefreshCalls        int
	FetchProfileCalls   int
	UpdateProfileCalls  int
	ChangePasswordCalls int
	RegisterCalls       int
}

func NewFakeBackend() *FakeBackend {
	return &FakeBackend{
		Accounts:    map[string]string{},
		ValidTokens: map[string]bool{},
	}
}

// Calls returns the total number of backend calls made.
func (b *FakeBackend) Calls() int {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.ExchangeCalls + b.VerifyCalls + b.RefreshCalls +
		b.FetchProfileCalls + b.UpdateProfileCalls + b.ChangePasswordCalls + b.RegisterCalls
}

func (b *FakeBackend) mintPair() tokenstore.TokenPair {
	if b.NextPair != nil {
		pair := *b.NextPair
		b.NextPair = nil
		return pair
	}
	return tokenstore.TokenPair{
		AccessToken:  uuid.NewString(),
		RefreshToken: uuid.NewString(),
	}
}

func (b *FakeBackend) ExchangeCredentials(_ context.Context, email, password string) (tokenstore.TokenPair, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.ExchangeCalls++
	if b.ExchangeErr != nil {
		return tokenstore.TokenPair{}, b.ExchangeErr
	}
	if stored, ok := b.Accounts[email]; !ok || stored != password {
		return tokenstore.TokenPair{}, backend.InvalidCredentialsErr
	}
	pair := b.mintPair()
	b.ValidTokens[pair.AccessToken] = true
	return pair, nil
}

func (b *FakeBackend) Verify(_ context.Context, accessToken string) bool {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.VerifyCalls++
	return b.ValidTokens[accessToken]
}

func (b *FakeBackend) Refresh(_ context.Context, refreshToken string) (tokenstore.TokenPair, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.RefreshCalls++
	if b.RefreshErr != nil {
		return tokenstore.TokenPair{}, b.RefreshErr
	}
	pair := b.mintPair()
	b.ValidTokens[pair.AccessToken] = true
	return pair, nil
}

func (b *FakeBackend) FetchProfile(_ context.Context, accessToken string) (*identity.Identity, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.FetchProfileCalls++
	if b.FetchProfileErr != nil {
		return nil, b.FetchProfileErr
	}
	if b.Profile == nil {
		return nil, backend.ProfileFetchFailedErr
	}
	profile := *b.Profile
	return &profile, nil
}

func (b *FakeBackend) UpdateProfile(_ context.Context, accessToken string, partial identity.Partial) (*identity.Identity, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.UpdateProfileCalls++
	if b.UpdateProfileErr != nil {
		return nil, b.UpdateProfileErr
	}
	if b.Profile == nil {
		return nil, backend.ProfileUpdateFailedErr
	}
	updated := b.Profile.Merge(partial)
	b.Profile = &updated
	profile := updated
	return &profile, nil
}

func (b *FakeBackend) ChangePassword(_ context.Context, accessToken, currentPassword, newPassword string) error {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.ChangePasswordCalls++
	return b.ChangePasswordErr
}

func (b *FakeBackend) Register(_ context.Context, email, displayName, password string) error {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.RegisterCalls++
	if b.RegisterErr != nil {
		return b.RegisterErr
	}
	b.Accounts[email] = password
	return nil
}
