package config

import "time"

type Config interface {
	EnvConfig
	SessionConfig
}

type EnvConfig interface {
	GetAppName() string
	GetAuthBaseURL() string
	GetTokenStorePath() string
	GetEnv() string
}

type SessionConfig interface {
	GetRequestTimeout() time.Duration
	GetRenewalInterval() time.Duration
}

type mainConfig struct {
	EnvVars
	Session
}

func New() Config {
	return mainConfig{}
}
