package constants

import "time"

// RFC 3339 date-time format string.
// Use this format for all date-time serialization and communication with external systems.
const RFC3339DateTimeFormat = "2006-01-02T15:04:05Z07:00"

// Default rate limiting configuration: an admission window of
// DefaultRateLimitWindowSeconds, with at most DefaultRateLimitRequests
// admitted per client within it.
const (
	DefaultRateLimitRequests      = 12
	DefaultRateLimitWindowSeconds = 10
)

// DefaultRateLimitWindow returns the default admission window duration.
func DefaultRateLimitWindow() time.Duration {
	return time.Duration(DefaultRateLimitWindowSeconds) * time.Second
}
