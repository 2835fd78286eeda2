// Package config holds the rate limiter's fixed parameters.
package config

import "time"

// Config parameterizes one token bucket family.
type Config struct {
	// MaxAttempts caps the bucket. Refill never exceeds it.
	MaxAttempts int
	// Window is the idle time needed for a full refill from empty.
	Window time.Duration
}

// DefaultConfig returns the verification-code issuance limits:
// 3 attempts refilling continuously over 15 minutes.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		Window:      15 * time.Minute,
	}
}

// RefillPerSecond is the continuous refill rate in attempts per second.
func (c Config) RefillPerSecond() float64 {
	if c.Window <= 0 {
		return 0
	}
	return float64(c.MaxAttempts) / c.Window.Seconds()
}
