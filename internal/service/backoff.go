package service

import (
	"math/rand"
	"time"
)

// Dispatch retry schedule. After the last step the delay stays capped;
// the attempt bound finalizes the item FAILED.
var backoffSchedule = []time.Duration{
	30 * time.Second,
	2 * time.Minute,
	10 * time.Minute,
	30 * time.Minute,
	2 * time.Hour,
	6 * time.Hour,
}

const backoffJitterFraction = 0.2

// nextBackoff returns the delay before the given retry attempt (1-based)
// with ±20% jitter.
func nextBackoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	idx := attempt - 1
	if idx >= len(backoffSchedule) {
		idx = len(backoffSchedule) - 1
	}
	base := backoffSchedule[idx]

	jitter := 1 + backoffJitterFraction*(2*rand.Float64()-1)
	return time.Duration(float64(base) * jitter)
}
