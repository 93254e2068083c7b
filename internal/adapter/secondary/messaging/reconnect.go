package messaging

import "time"

// DefaultReconnectDelay is the pause before each reconnect attempt.
const DefaultReconnectDelay = 5 * time.Second

// ReconnectPolicy returns the delay before reconnect attempt n (starting at 1).
type ReconnectPolicy func(attempt int) time.Duration

// FixedDelay waits the same delay before every attempt.
func FixedDelay(d time.Duration) ReconnectPolicy {
	return func(int) time.Duration {
		return d
	}
}
