package outbox

import (
	"math/rand"
	"time"
)

// backoff doubles from one second per attempt and saturates at maxBackoff.
func backoff(attempts int, maxBackoff time.Duration) time.Duration {
	if attempts <= 0 {
		return 0
	}
	if attempts > 32 {
		return maxBackoff
	}
	d := time.Second << (attempts - 1)
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

func jitter(r *rand.Rand, maxJitter time.Duration) time.Duration {
	if maxJitter <= 0 || r == nil {
		return 0
	}
	return time.Duration(r.Int63n(int64(maxJitter) + 1)) //nolint:gosec
}
