package middleware

import "time"

// Throttle defaults
const (
	// DefaultThrottleSize bounds how many per-key limiters are kept at once
	DefaultThrottleSize = 10000

	// DefaultThrottleIdle drops a key's limiter after it has been idle this long
	DefaultThrottleIdle = 10 * time.Minute
)

// Log messages
const (
	LogMsgThrottled = "Request throttled"
)
