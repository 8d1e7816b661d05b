package guesty

import (
	"math/rand/v2"
	"sync"
	"time"
)

// backoff produces jittered exponential delays for transport retries.
type backoff struct {
	minDelay   time.Duration
	maxDelay   time.Duration
	multiplier float64
	current    time.Duration
	mu         sync.Mutex
}

func newBackoff(min, max time.Duration, mult float64) *backoff {
	return &backoff{
		minDelay:   min,
		maxDelay:   max,
		multiplier: mult,
		current:    min,
	}
}

func (b *backoff) Next() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	// +/-20% jitter so concurrent retries do not align
	jitterFactor := rand.Float64()*0.4 - 0.2
	jitter := time.Duration(jitterFactor * float64(b.current))
	wait := max(b.current+jitter, b.minDelay)

	b.current = min(time.Duration(float64(b.current)*b.multiplier), b.maxDelay)

	return wait
}
