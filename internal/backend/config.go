package backend

import "time"

// Config holds connection settings for the WBS REST API.
type Config struct {
	BaseURL    string
	Token      string
	TimeoutMs  int
	MaxRetries int
	// RetryDelay is the pause between attempts.
	RetryDelay time.Duration
	// CacheTTL bounds how long CachedClient serves a fetched snapshot.
	CacheTTL time.Duration
}

// DefaultConfig returns a Config with no base URL; Enabled reports false
// until one is set.
func DefaultConfig() Config {
	return Config{
		TimeoutMs:  10000,
		MaxRetries: 2,
		RetryDelay: 250 * time.Millisecond,
		CacheTTL:   30 * time.Second,
	}
}

// Enabled reports whether a backend has been configured.
func (c Config) Enabled() bool {
	return c.BaseURL != ""
}

func (c Config) timeout() time.Duration {
	if c.TimeoutMs <= 0 {
		return time.Duration(DefaultConfig().TimeoutMs) * time.Millisecond
	}
	return time.Duration(c.TimeoutMs) * time.Millisecond
}
