package session

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/onionrsv/console-session/identity"
	"github.com/onionrsv/console-session/tokenstore"
)

// Manager is the session state machine. One Manager owns one logical session
// per process: Uninitialized -> Hydrating -> {Authenticated, Anonymous},
// with Authenticated -> Anonymous on logout or fatal renewal failure.
//
// Background renewal failures are swallowed into a forced logout; failures of
// explicit operations (Login, Register, UpdateProfile, ChangePassword) are
// surfaced to the caller with the prior state intact.
type Manager struct {
	backend         Backend
	store           tokenstore.Repo
	logger          zerolog.Logger
	nowTime         func() time.Time // nowTime function (injectable for testing)
	renewalInterval time.Duration

	scheduler renewalScheduler

	lock        sync.Mutex
	user        *identity.Identity
	creds       credentials // nil while anonymous
	loading     bool
	initialized bool
	generation  uint64 // bumped on every login/logout; stale renewals check it
}

var _ Session = (*Manager)(nil)

// ManagerOption defines a function type to modify the Manager instance.
type ManagerOption func(*Manager)

// WithLogger sets the logger used for background failures.
func WithLogger(logger zerolog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithNowTime sets the now time function (primarily for testing).
func WithNowTime(nowFunc func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowTime = nowFunc
	}
}

// WithRenewalInterval overrides the fixed renewal interval for opaque
// access tokens.
func WithRenewalInterval(d time.Duration) ManagerOption {
	return func(m *Manager) {
		m.renewalInterval = d
	}
}

// NewManager initializes a Manager with required dependencies. The session
// starts loading; call Initialize to hydrate from the token store.
func NewManager(backend Backend, store tokenstore.Repo, options ...ManagerOption) (*Manager, error) {
	if backend == nil {
		return nil, errors.New("[NewManager] backend is required")
	}
	if store == nil {
		return nil, errors.New("[NewManager] token store is required")
	}

	manager := &Manager{
		backend:         backend,
		store:           store,
		logger:          log.Logger,
		nowTime:         time.Now,
		renewalInterval: defaultRenewalInterval,
		loading:         true,
	}

	for _, opt := range options {
		opt(manager)
	}

	return manager, nil
}

// Initialize hydrates the session from the persistent token store. It runs
// at most once per Manager; later calls are no-ops. Verification and profile
// failures are swallowed into a clean anonymous state so the console shows a
// login screen rather than an error.
func (m *Manager) Initialize(ctx context.Context) {
	m.lock.Lock()
	if m.initialized {
		m.lock.Unlock()
		return
	}
	m.initialized = true
	m.lock.Unlock()

	defer m.finishLoading()

	pair, err := m.store.Load()
	if err != nil {
		m.logger.Warn().Err(err).Msg("token store unreadable, starting anonymous")
		return
	}
	if pair.Empty() {
		return
	}

	// A stored bypass token short-circuits hydration: fixed identity, zero
	// backend calls, no renewal.
	if id, ok := identity.BypassForToken(pair.AccessToken); ok {
		m.lock.Lock()
		m.user = &id
		m.creds = bypassCredentials{tokens: pair}
		m.lock.Unlock()
		return
	}

	if !m.backend.Verify(ctx, pair.AccessToken) {
		m.discardStored()
		return
	}
	user, err := m.backend.FetchProfile(ctx, pair.AccessToken)
	if err != nil {
		m.logger.Warn().Err(err).Msg("profile hydration failed, starting anonymous")
		m.discardStored()
		return
	}

	m.lock.Lock()
	m.user = user
	m.creds = backedCredentials{tokens: pair}
	gen := m.generation
	m.lock.Unlock()

	m.armScheduler(pair.AccessToken, gen)
}

// Login authenticates with the given credentials. A reserved demo or admin
// pair activates the matching bypass identity and never touches the backend;
// anything else is exchanged for a real token pair. On failure the error is
// propagated and neither memory nor store is written.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	if id, access, refresh, ok := identity.BypassForCredentials(email, password); ok {
		pair := tokenstore.TokenPair{AccessToken: access, RefreshToken: refresh}
		// Persist and commit in one critical section: a renewal tick of the
		// superseded session writes under the same lock, so it can never
		// land its pair in the store after ours.
		m.lock.Lock()
		if err := m.store.Save(pair); err != nil {
			m.lock.Unlock()
			return errors.Wrap(err, "[Login] store.Save")
		}
		m.scheduler.disarm() // bypass sessions never renew
		m.generation++
		m.user = &id
		m.creds = bypassCredentials{tokens: pair}
		m.lock.Unlock()
		return nil
	}

	pair, err := m.backend.ExchangeCredentials(ctx, email, password)
	if err != nil {
		return errors.Wrap(err, "[Login] backend.ExchangeCredentials")
	}
	user, err := m.backend.FetchProfile(ctx, pair.AccessToken)
	if err != nil {
		return errors.Wrap(err, "[Login] backend.FetchProfile")
	}
	m.lock.Lock()
	if err := m.store.Save(pair); err != nil {
		m.lock.Unlock()
		return errors.Wrap(err, "[Login] store.Save")
	}
	m.scheduler.disarm()
	m.generation++
	gen := m.generation
	m.user = user
	m.creds = backedCredentials{tokens: pair}
	m.lock.Unlock()

	m.armScheduler(pair.AccessToken, gen)
	return nil
}

// Logout ends the session: renewal disarmed, in-memory fields cleared, store
// wiped. It always succeeds.
func (m *Manager) Logout() {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.logoutLocked()
}

// Register creates a new account via the backend. Session state is never
// mutated; a separate Login is required afterwards.
func (m *Manager) Register(ctx context.Context, email, displayName, password string) error {
	if err := m.backend.Register(ctx, email, displayName, password); err != nil {
		return errors.Wrap(err, "[Register] backend.Register")
	}
	return nil
}

// UpdateProfile applies a partial identity update. Bypass and anonymous
// sessions merge locally and report success without a backend call; backed
// sessions round-trip through the backend and adopt its returned identity.
func (m *Manager) UpdateProfile(ctx context.Context, partial identity.Partial) error {
	m.lock.Lock()
	backed, isBacked := m.creds.(backedCredentials)
	if !isBacked {
		if m.user != nil {
			merged := m.user.Merge(partial)
			m.user = &merged
		}
		m.lock.Unlock()
		return nil
	}
	accessToken := backed.tokens.AccessToken
	gen := m.generation
	m.lock.Unlock()

	user, err := m.backend.UpdateProfile(ctx, accessToken, partial)
	if err != nil {
		return errors.Wrap(err, "[UpdateProfile] backend.UpdateProfile")
	}

	m.lock.Lock()
	if m.generation == gen {
		m.user = user
	}
	m.lock.Unlock()
	return nil
}

// ChangePassword rotates the password. Bypass and anonymous sessions report
// success without a backend call.
func (m *Manager) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	m.lock.Lock()
	backed, isBacked := m.creds.(backedCredentials)
	m.lock.Unlock()
	if !isBacked {
		return nil
	}
	if err := m.backend.ChangePassword(ctx, backed.tokens.AccessToken, currentPassword, newPassword); err != nil {
		return errors.Wrap(err, "[ChangePassword] backend.ChangePassword")
	}
	return nil
}

// RefreshNow triggers one renewal tick synchronously. Without a refresh
// token (or on a bypass session) it resolves immediately.
func (m *Manager) RefreshNow(ctx context.Context) error {
	m.lock.Lock()
	_, isBacked := m.creds.(backedCredentials)
	gen := m.generation
	m.lock.Unlock()
	if !isBacked {
		return nil
	}
	_, _, err := m.renewOnce(ctx, gen)
	return err
}

// User returns a copy of the current identity, or nil when anonymous.
func (m *Manager) User() *identity.Identity {
	m.lock.Lock()
	defer m.lock.Unlock()
	if m.user == nil {
		return nil
	}
	user := *m.user
	return &user
}

// IsAuthenticated reports whether an identity is present.
func (m *Manager) IsAuthenticated() bool {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.user != nil
}

// IsLoading is true from construction until Initialize completes.
func (m *Manager) IsLoading() bool {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.loading
}

// RenewalArmed reports whether the background renewal timer is live.
func (m *Manager) RenewalArmed() bool {
	return m.scheduler.armed()
}

// TokenSource exposes the session's credentials through the standard
// oauth2.TokenSource contract, for consumers authorizing outbound API calls.
func (m *Manager) TokenSource() oauth2.TokenSource {
	return tokenSource{manager: m}
}

type tokenSource struct {
	manager *Manager
}

func (ts tokenSource) Token() (*oauth2.Token, error) {
	ts.manager.lock.Lock()
	defer ts.manager.lock.Unlock()
	if ts.manager.creds == nil {
		return nil, errors.New("[TokenSource] no authenticated session")
	}
	pair := ts.manager.creds.pair()
	return &oauth2.Token{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
	}, nil
}

// renewOnce performs a single renewal attempt for the session generation it
// was armed against. A generation mismatch at any point makes the attempt a
// silent no-op, so a renewal racing a logout can never resurrect cleared
// state. A refresh failure is fatal: the session is logged out rather than
// retried.
func (m *Manager) renewOnce(ctx context.Context, gen uint64) (time.Duration, bool, error) {
	m.lock.Lock()
	if m.generation != gen {
		m.lock.Unlock()
		return 0, false, nil
	}
	backed, ok := m.creds.(backedCredentials)
	if !ok || backed.tokens.RefreshToken == "" {
		m.lock.Unlock()
		return 0, false, nil
	}
	refreshToken := backed.tokens.RefreshToken
	m.lock.Unlock()

	pair, err := m.backend.Refresh(ctx, refreshToken)
	if err != nil {
		m.logger.Warn().Err(err).Msg("token renewal failed, ending session")
		m.lock.Lock()
		if m.generation == gen {
			m.logoutLocked()
		}
		m.lock.Unlock()
		return 0, false, err
	}

	m.lock.Lock()
	if m.generation != gen {
		m.lock.Unlock()
		return 0, false, nil
	}
	m.creds = backedCredentials{tokens: pair}
	if err := m.store.Save(pair); err != nil {
		m.logger.Warn().Err(err).Msg("persisting renewed tokens")
	}
	m.lock.Unlock()

	return renewalDelay(pair.AccessToken, m.renewalInterval, m.nowTime()), true, nil
}

func (m *Manager) armScheduler(accessToken string, gen uint64) {
	delay := renewalDelay(accessToken, m.renewalInterval, m.nowTime())
	m.scheduler.arm(delay, func() (time.Duration, bool) {
		next, ok, _ := m.renewOnce(context.Background(), gen)
		return next, ok
	})
}

// logoutLocked clears the session under m.lock. Disarming before clearing
// keeps a scheduled tick from firing against the dying session.
func (m *Manager) logoutLocked() {
	m.scheduler.disarm()
	m.generation++
	m.user = nil
	m.creds = nil
	if err := m.store.Clear(); err != nil {
		m.logger.Warn().Err(err).Msg("clearing token store on logout")
	}
}

func (m *Manager) finishLoading() {
	m.lock.Lock()
	m.loading = false
	m.lock.Unlock()
}

// discardStored clears the store after a failed hydration so the next start
// goes straight to anonymous.
func (m *Manager) discardStored() {
	if err := m.store.Clear(); err != nil {
		m.logger.Warn().Err(err).Msg("clearing token store after failed hydration")
	}
}
