// Package config provides configuration helpers for go-guide commands.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

// Default backend configuration.
const (
	DefaultBackendURL = "ws://localhost:8000/ws/guide"
	DefaultServerAddr = ":8000"
)

// BackendURL returns the guidance backend URL from GUIDE_BACKEND_URL.
// Falls back to the provided default if not set.
func BackendURL(defaultURL string) string {
	if u := os.Getenv("GUIDE_BACKEND_URL"); u != "" {
		return u
	}
	if defaultURL != "" {
		return defaultURL
	}
	return DefaultBackendURL
}

// ServerAddr returns the listen address for the guidance server from
// GUIDE_SERVER_ADDR, falling back to the default.
func ServerAddr() string {
	if addr := os.Getenv("GUIDE_SERVER_ADDR"); addr != "" {
		return addr
	}
	return DefaultServerAddr
}

// OpenAIKey returns the OpenAI API key from OPENAI_API_KEY.
// Returns an empty string if not set; callers decide whether it is required.
func OpenAIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}

// HealthURL derives the HTTP health endpoint from a websocket backend URL.
// ws://host:port/ws/guide becomes http://host:port/health.
func HealthURL(backendURL string) (string, error) {
	u, err := url.Parse(backendURL)
	if err != nil {
		return "", fmt.Errorf("parse backend url: %w", err)
	}
	switch u.Scheme {
	case "ws":
		u.Scheme = "http"
	case "wss":
		u.Scheme = "https"
	case "http", "https":
		// already HTTP
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = "/health"
	u.RawQuery = ""
	return u.String(), nil
}

// LogLevel returns the log level from GUIDE_LOG_LEVEL, defaulting to "info".
func LogLevel() string {
	if lvl := strings.ToLower(os.Getenv("GUIDE_LOG_LEVEL")); lvl != "" {
		return lvl
	}
	return "info"
}
