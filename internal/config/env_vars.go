package config

import (
	"os"
	"path/filepath"
)

const (
	appNameVar        = "APP_NAME"
	authBaseURLVar    = "AUTH_BASE_URL"
	tokenStorePathVar = "TOKEN_STORE_PATH"
	envVar            = "ENV"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "OnionRSV Console")
}

func (EnvVars) GetAuthBaseURL() string {
	return GetEnv(authBaseURLVar, "http://localhost:8000")
}

func (EnvVars) GetTokenStorePath() string {
	if path := GetEnv(tokenStorePathVar, ""); path != "" {
		return path
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "session.db"
	}
	return filepath.Join(configDir, "onionrsv", "session.db")
}

func (EnvVars) GetEnv() string {
	return GetEnv(envVar, "development")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
