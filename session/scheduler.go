package session

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// Renew at the 25 minute mark of a 30 minute token lifetime, leaving a
	// 5 minute margin against clock drift and request latency.
	defaultRenewalInterval = 25 * time.Minute

	// expiryFraction places expiry-aware renewals at ~83% of the token's
	// remaining validity, matching the fixed interval's margin.
	expiryFractionNum = 5
	expiryFractionDen = 6

	minRenewalDelay = 30 * time.Second
)

// renewalScheduler drives the background renewal loop for a backed session.
// At most one timer is live per session; arming while one is live disarms
// the existing timer first, so ticks never overlap.
type renewalScheduler struct {
	lock sync.Mutex
	stop chan struct{}
}

// tickFunc runs one renewal attempt and returns the delay until the next
// tick. ok=false ends the loop (fatal renewal failure or a stale session).
type tickFunc func() (next time.Duration, ok bool)

func (s *renewalScheduler) arm(initial time.Duration, tick tickFunc) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.stopLocked()

	stop := make(chan struct{})
	s.stop = stop

	go func() {
		timer := time.NewTimer(initial)
		defer timer.Stop()
		for {
			select {
			case <-stop:
				return
			case <-timer.C:
			}
			next, ok := tick()
			if !ok {
				s.release(stop)
				return
			}
			timer.Reset(next)
		}
	}()
}

// release clears the stop handle when the loop ends on its own, so armed()
// goes false without an explicit disarm. A handle already replaced by a
// re-arm is left alone.
func (s *renewalScheduler) release(stop chan struct{}) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.stop == stop {
		s.stop = nil
	}
}

func (s *renewalScheduler) disarm() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.stopLocked()
}

func (s *renewalScheduler) armed() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.stop != nil
}

func (s *renewalScheduler) stopLocked() {
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
}

// renewalDelay picks the delay before the next renewal of accessToken.
// Opaque tokens use the fixed interval. If the token parses as a JWT with an
// exp claim, the delay tracks the token's actual remaining validity instead.
// The signature is never checked; the claim only schedules a renewal.
func renewalDelay(accessToken string, interval time.Duration, now time.Time) time.Duration {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return interval
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return interval
	}
	remaining := exp.Time.Sub(now)
	delay := remaining * expiryFractionNum / expiryFractionDen
	if delay < minRenewalDelay {
		return minRenewalDelay
	}
	return delay
}
