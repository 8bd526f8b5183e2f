// ABOUTME: Server configuration loaded from SCRATCHPEN_* environment variables.
// ABOUTME: Enforces the security constraint that non-loopback binds require explicit opt-in.
package editor

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"
)

// Configuration validation errors.
var (
	ErrNonLoopbackBind = errors.New(
		"SCRATCHPEN_BIND is a non-loopback address but SCRATCHPEN_ALLOW_REMOTE is not true; the playground executes arbitrary user scripts and must not be exposed by accident",
	)
)

// Config holds server configuration loaded from environment variables.
type Config struct {
	Bind        string        // Socket address (SCRATCHPEN_BIND, default: 127.0.0.1:3475)
	DataDir     string        // Snapshot database directory (SCRATCHPEN_DATA_DIR)
	AllowRemote bool          // Allow non-loopback binds (SCRATCHPEN_ALLOW_REMOTE, default: false)
	RenderDelay time.Duration // Debounce delay (SCRATCHPEN_RENDER_DELAY_MS, default: 400ms)
	SessionTTL  time.Duration // Idle session lifetime (SCRATCHPEN_SESSION_TTL_MIN, default: 240m)
	MaxSessions int           // Session capacity (SCRATCHPEN_MAX_SESSIONS, default: 100)
}

// ConfigFromEnv loads configuration from SCRATCHPEN_* environment variables
// with sensible defaults.
func ConfigFromEnv() (*Config, error) {
	cfg := &Config{
		Bind:        envOrDefault("SCRATCHPEN_BIND", "127.0.0.1:3475"),
		DataDir:     os.Getenv("SCRATCHPEN_DATA_DIR"),
		RenderDelay: 400 * time.Millisecond,
		SessionTTL:  4 * time.Hour,
		MaxSessions: 100,
	}

	if v := os.Getenv("SCRATCHPEN_ALLOW_REMOTE"); v == "true" || v == "1" || v == "yes" {
		cfg.AllowRemote = true
	}

	if v := os.Getenv("SCRATCHPEN_RENDER_DELAY_MS"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil || ms <= 0 {
			return nil, fmt.Errorf("invalid SCRATCHPEN_RENDER_DELAY_MS %q", v)
		}
		cfg.RenderDelay = time.Duration(ms) * time.Millisecond
	}

	if v := os.Getenv("SCRATCHPEN_SESSION_TTL_MIN"); v != "" {
		mins, err := strconv.Atoi(v)
		if err != nil || mins <= 0 {
			return nil, fmt.Errorf("invalid SCRATCHPEN_SESSION_TTL_MIN %q", v)
		}
		cfg.SessionTTL = time.Duration(mins) * time.Minute
	}

	if v := os.Getenv("SCRATCHPEN_MAX_SESSIONS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid SCRATCHPEN_MAX_SESSIONS %q", v)
		}
		cfg.MaxSessions = n
	}

	if !cfg.AllowRemote && !isLoopbackBind(cfg.Bind) {
		return nil, ErrNonLoopbackBind
	}

	return cfg, nil
}

// isLoopbackBind reports whether the bind address resolves to a loopback or
// unspecified-but-local address.
func isLoopbackBind(bind string) bool {
	host, _, err := net.SplitHostPort(bind)
	if err != nil {
		return false
	}
	if host == "localhost" || host == "" {
		return host == "localhost"
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// envOrDefault returns the environment value or a fallback when unset.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
