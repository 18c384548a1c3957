package storefakes

import (
	"sync"

	"github.com/onionrsv/console-session/tokenstore"
)

var _ tokenstore.Repo = (*FakeTokenStore)(nil)

// FakeTokenStore is an in-memory tokenstore.Repo for tests. Optional error
// hooks simulate storage failures.
type FakeTokenStore struct {
	lock sync.RWMutex
	pair tokenstore.TokenPair

	SaveErr  error
	LoadErr  error
	ClearErr error

	SaveCalls  int
	ClearCalls int
}

func NewFakeTokenStore() *FakeTokenStore {
	return &FakeTokenStore{}
}

// Seed sets the stored pair directly, bypassing call counting.
func (s *FakeTokenStore) Seed(pair tokenstore.TokenPair) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.pair = pair
}

func (s *FakeTokenStore) Save(pair tokenstore.TokenPair) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.SaveCalls++
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.pair = pair
	return nil
}

func (s *FakeTokenStore) Load() (tokenstore.TokenPair, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if s.LoadErr != nil {
		return tokenstore.TokenPair{}, s.LoadErr
	}
	return s.pair, nil
}

func (s *FakeTokenStore) Clear() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.ClearCalls++
	if s.ClearErr != nil {
		return s.ClearErr
	}
	s.pair = tokenstore.TokenPair{}
	return nil
}

// Stored returns the current pair for assertions.
func (s *FakeTokenStore) Stored() tokenstore.TokenPair {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.pair
}
