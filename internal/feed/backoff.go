package feed

import "time"

// Backoff computes reconnect delays: min(Base * 2^min(attempt, MaxExponent), Max)
type Backoff struct {
	Base        time.Duration
	Max         time.Duration
	MaxExponent int
}

// DefaultBackoff matches the dashboard's reconnect schedule
var DefaultBackoff = Backoff{
	Base:        time.Second,
	Max:         30 * time.Second,
	MaxExponent: 6,
}

// Delay returns the wait before reconnect attempt number attempt (zero-based)
func (b Backoff) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > b.MaxExponent {
		attempt = b.MaxExponent
	}

	delay := b.Base << uint(attempt)
	if delay > b.Max || delay < b.Base {
		return b.Max
	}
	return delay
}

func (b Backoff) withDefaults() Backoff {
	if b.Base <= 0 {
		b.Base = DefaultBackoff.Base
	}
	if b.Max < b.Base {
		b.Max = b.Base
	}
	if b.MaxExponent < 0 {
		b.MaxExponent = 0
	}
	return b
}
