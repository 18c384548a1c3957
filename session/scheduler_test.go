package session

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/onionrsv/console-session/identity"
	"github.com/onionrsv/console-session/tokenstore"
)

func TestRenewalDelayForOpaqueToken(t *testing.T) {
	delay := renewalDelay("opaque-access-token", 25*time.Minute, time.Now())
	require.Equal(t, 25*time.Minute, delay)
}

func TestRenewalDelayTracksJWTExpiry(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"exp": now.Add(30 * time.Minute).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	delay := renewalDelay(token, time.Hour, now)
	require.Equal(t, 25*time.Minute, delay)
}

func TestRenewalDelayFloorsNearExpiredJWT(t *testing.T) {
	now := time.Now()
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"exp": now.Add(5 * time.Second).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	delay := renewalDelay(token, time.Hour, now)
	require.Equal(t, minRenewalDelay, delay)
}

func TestRenewalDelayIgnoresJWTWithoutExpiry(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "user-42",
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	delay := renewalDelay(token, 25*time.Minute, time.Now())
	require.Equal(t, 25*time.Minute, delay)
}

func TestSchedulerTicksUntilDisarmed(t *testing.T) {
	var scheduler renewalScheduler
	var ticks atomic.Int64

	scheduler.arm(time.Millisecond, func() (time.Duration, bool) {
		ticks.Add(1)
		return time.Millisecond, true
	})
	require.True(t, scheduler.armed())

	require.Eventually(t, func() bool { return ticks.Load() >= 3 }, time.Second, time.Millisecond)

	scheduler.disarm()
	require.False(t, scheduler.armed())

	settled := ticks.Load()
	time.Sleep(20 * time.Millisecond)
	require.LessOrEqual(t, ticks.Load(), settled+1, "disarm must stop further ticks")
}

func TestSchedulerRearmReplacesLiveTimer(t *testing.T) {
	var scheduler renewalScheduler
	var first, second atomic.Int64

	scheduler.arm(time.Millisecond, func() (time.Duration, bool) {
		first.Add(1)
		return time.Millisecond, true
	})
	scheduler.arm(time.Millisecond, func() (time.Duration, bool) {
		second.Add(1)
		return time.Millisecond, true
	})

	require.Eventually(t, func() bool { return second.Load() >= 2 }, time.Second, time.Millisecond)

	settled := first.Load()
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, settled, first.Load(), "the replaced timer must not keep ticking")

	scheduler.disarm()
}

func TestSchedulerStopsWhenTickReportsFatal(t *testing.T) {
	var scheduler renewalScheduler
	var ticks atomic.Int64

	scheduler.arm(time.Millisecond, func() (time.Duration, bool) {
		ticks.Add(1)
		return 0, false
	})

	require.Eventually(t, func() bool { return ticks.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, int64(1), ticks.Load())
	require.False(t, scheduler.armed(), "a loop that ended on its own must read as disarmed")
}

// stubBackend is a minimal Backend for internal race tests; the exported
// fake lives in backendfakes, which this package cannot import.
type stubBackend struct {
	refreshPair tokenstore.TokenPair
	refreshErr  error
	refreshGate chan struct{} // when set, Refresh blocks until it is closed
}

func (s *stubBackend) ExchangeCredentials(context.Context, string, string) (tokenstore.TokenPair, error) {
	return tokenstore.TokenPair{}, nil
}
func (s *stubBackend) Verify(context.Context, string) bool { return false }
func (s *stubBackend) Refresh(context.Context, string) (tokenstore.TokenPair, error) {
	if s.refreshGate != nil {
		<-s.refreshGate
	}
	return s.refreshPair, s.refreshErr
}
func (s *stubBackend) FetchProfile(context.Context, string) (*identity.Identity, error) {
	return nil, nil
}
func (s *stubBackend) UpdateProfile(context.Context, string, identity.Partial) (*identity.Identity, error) {
	return nil, nil
}
func (s *stubBackend) ChangePassword(context.Context, string, string, string) error { return nil }
func (s *stubBackend) Register(context.Context, string, string, string) error { return nil }

type mapStore struct {
	pair tokenstore.TokenPair
}

func (s *mapStore) Save(pair tokenstore.TokenPair) error { s.pair = pair; return nil }
func (s *mapStore) Load() (tokenstore.TokenPair, error)  { return s.pair, nil }
func (s *mapStore) Clear() error                         { s.pair = tokenstore.TokenPair{}; return nil }

// A renewal that lost the race against a logout must be a silent no-op, not
// a resurrection of cleared state.
func TestStaleRenewalTickIsInert(t *testing.T) {
	store := &mapStore{}
	manager, err := NewManager(&stubBackend{refreshPair: tokenstore.TokenPair{AccessToken: "t2", RefreshToken: "r2"}}, store)
	require.NoError(t, err)

	manager.lock.Lock()
	manager.generation++
	gen := manager.generation
	manager.user = &identity.Identity{ID: "user-42"}
	manager.creds = backedCredentials{tokens: tokenstore.TokenPair{AccessToken: "t1", RefreshToken: "r1"}}
	manager.lock.Unlock()

	manager.Logout()

	next, ok, tickErr := manager.renewOnce(context.Background(), gen)
	require.Zero(t, next)
	require.False(t, ok)
	require.NoError(t, tickErr)
	require.Nil(t, manager.User())
	require.True(t, store.pair.Empty(), "a stale tick must not rewrite the store")
}

// hookedStore runs a callback on every Save, to interleave a renewal with a
// login's persistence window.
type hookedStore struct {
	mapStore
	onSave func()
}

func (s *hookedStore) Save(pair tokenstore.TokenPair) error {
	if s.onSave != nil {
		s.onSave()
	}
	return s.mapStore.Save(pair)
}

// A renewal of the previous backed session completing while Login persists
// must not leave the store holding that session's pair: store and memory
// must always describe the same logical session.
func TestLoginCommitExcludesStaleRenewal(t *testing.T) {
	gate := make(chan struct{})
	stub := &stubBackend{
		refreshPair: tokenstore.TokenPair{AccessToken: "t2", RefreshToken: "r2"},
		refreshGate: gate,
	}

	var once sync.Once
	store := &hookedStore{}
	store.onSave = func() {
		// Release the in-flight renewal mid-save and give it time to try to
		// commit; it must not get the store between this write and the
		// session swap.
		once.Do(func() { close(gate) })
		time.Sleep(20 * time.Millisecond)
	}

	manager, err := NewManager(stub, store)
	require.NoError(t, err)

	manager.lock.Lock()
	manager.generation++
	oldGen := manager.generation
	manager.user = &identity.Identity{ID: "user-42"}
	manager.creds = backedCredentials{tokens: tokenstore.TokenPair{AccessToken: "t1", RefreshToken: "r1"}}
	manager.lock.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _, _ = manager.renewOnce(context.Background(), oldGen)
	}()

	require.NoError(t, manager.Login(context.Background(), identity.DemoEmail, identity.DemoPassword))
	<-done

	require.Equal(t, identity.DemoEmail, manager.User().Email)
	pair, err := store.Load()
	require.NoError(t, err)
	require.Equal(t,
		tokenstore.TokenPair{AccessToken: identity.DemoToken, RefreshToken: identity.DemoRefresh},
		pair,
		"the store must hold the pair of the session memory holds")
}
