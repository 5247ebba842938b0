package config

import (
	"os"
	"path/filepath"
	"time"
)

const (
	baseURLVar       = "PORTAL_BASE_URL"
	sessionFileVar   = "PORTAL_SESSION_FILE"
	httpTimeoutVar   = "PORTAL_HTTP_TIMEOUT"
	refreshBufferVar = "PORTAL_REFRESH_BUFFER"
	appNameVar       = "APP_NAME"
	logLevelVar      = "LOG_LEVEL"
)

const (
	defaultBaseURL     = "http://localhost:8000"
	defaultHTTPTimeout = 30 * time.Second
)

// EnvConfig exposes the environment-driven settings.
type EnvConfig interface {
	GetBaseURL() string
	GetSessionFile() string
	GetHTTPTimeout() time.Duration
	GetRefreshBuffer() time.Duration
	GetAppName() string
	GetLogLevel() string
}

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

// GetBaseURL returns the backend base URL the client talks to.
func (EnvVars) GetBaseURL() string {
	return GetEnv(baseURLVar, defaultBaseURL)
}

// GetSessionFile returns the path of the persisted session blob. The default
// keeps it under the user's home directory, named after the storage key the
// web client used.
func (EnvVars) GetSessionFile() string {
	if path := os.Getenv(sessionFileVar); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".mis-portal", "auth-storage.json")
	}
	return filepath.Join(home, ".mis-portal", "auth-storage.json")
}

// GetHTTPTimeout returns the transport timeout. An unparsable value falls
// back to the default.
func (EnvVars) GetHTTPTimeout() time.Duration {
	return getDuration(httpTimeoutVar, defaultHTTPTimeout)
}

// GetRefreshBuffer returns the proactive-refresh buffer. Zero (the default)
// disables proactive refresh; the 401 path still recovers.
func (EnvVars) GetRefreshBuffer() time.Duration {
	return getDuration(refreshBufferVar, 0)
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "MIS Portal")
}

func (EnvVars) GetLogLevel() string {
	return GetEnv(logLevelVar, "warn")
}

func getDuration(envVar string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(envVar)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return defaultValue
	}
	return d
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
