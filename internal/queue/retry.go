package queue

import (
	"time"

	config "github.com/maheshrc27/postqueue/configs"
)

// Backoff returns the delay before the next attempt after retryCount
// failures: base * 2^retryCount, capped.
func Backoff(cfg config.Scheduler, retryCount int) time.Duration {
	base := cfg.BackoffBase
	if base <= 0 {
		base = 30 * time.Second
	}
	cap := cfg.BackoffCap
	if cap <= 0 {
		cap = time.Hour
	}

	delay := base
	for i := 0; i < retryCount; i++ {
		delay *= 2
		if delay >= cap {
			return cap
		}
	}
	if delay > cap {
		return cap
	}
	return delay
}
