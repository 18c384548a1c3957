package config

import "time"

const (
	requestTimeoutVar  = "AUTH_REQUEST_TIMEOUT"
	renewalIntervalVar = "TOKEN_RENEWAL_INTERVAL"
)

type Session struct{}

var _ SessionConfig = Session{}

// GetRequestTimeout bounds every auth backend request; a timed-out request
// is treated as a backend failure.
func (Session) GetRequestTimeout() time.Duration {
	return getDuration(requestTimeoutVar, 10*time.Second)
}

// GetRenewalInterval is the fixed renewal cadence for opaque access tokens:
// the 25 minute mark of a 30 minute token lifetime.
func (Session) GetRenewalInterval() time.Duration {
	return getDuration(renewalIntervalVar, 25*time.Minute)
}

func getDuration(envVar string, defaultValue time.Duration) time.Duration {
	value := GetEnv(envVar, "")
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
