package redis

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// PendingLinkTTL bounds how long an unclaimed login frame stays valid.
	PendingLinkTTL time.Duration
	// ActiveLinkTTL bounds a connected player's link; 0 keeps it forever.
	ActiveLinkTTL time.Duration
}

// DefaultConfig returns the default Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:            "redis://localhost:6379",
		PoolSize:       10,
		MinIdleConns:   2,
		PendingLinkTTL: time.Hour,
		ActiveLinkTTL:  24 * time.Hour,
	}
}
