package backoff

import (
	"math"
	"math/rand/v2"
	"time"
)

// MinInterval is the lower bound applied to every computed delay.
const MinInterval = 100 * time.Millisecond

// Strategy calculates the delay before a retry attempt.
// Implementations must be safe for concurrent use.
type Strategy interface {
	// NextInterval returns the delay before the given attempt. Attempt starts at 1.
	NextInterval(attempt int) time.Duration
}

// Exponential grows the delay geometrically with optional jitter.
// Formula: min(Initial * Multiplier^(attempt-1) * (1 ± Jitter), Max)
type Exponential struct {
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64
	Jitter     float64
}

func (e Exponential) NextInterval(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}

	initial := e.Initial
	if initial <= 0 {
		initial = time.Second
	}

	maxInterval := e.Max
	if maxInterval <= 0 {
		maxInterval = 5 * time.Minute
	}

	multiplier := e.Multiplier
	if multiplier < 1 {
		multiplier = 2
	}

	interval := float64(initial) * math.Pow(multiplier, float64(attempt-1))

	if e.Jitter > 0 {
		interval *= 1 + (rand.Float64()*2-1)*e.Jitter
	}

	if interval > float64(maxInterval) || math.IsInf(interval, 1) {
		interval = float64(maxInterval)
	}

	return time.Duration(interval)
}

// Constant returns the same delay for every attempt.
type Constant struct {
	Interval time.Duration
}

func (c Constant) NextInterval(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	return c.Interval
}

// Policy bounds a Strategy with a maximum number of attempts.
type Policy struct {
	Strategy    Strategy
	MaxAttempts int // zero or negative means unlimited
}

// Delay returns the wait before the given attempt, clamped to MinInterval.
func (p Policy) Delay(attempt int) time.Duration {
	s := p.Strategy
	if s == nil {
		s = Default().Strategy
	}
	return max(s.NextInterval(attempt), MinInterval)
}

// Allowed reports whether the given attempt may still be made.
func (p Policy) Allowed(attempt int) bool {
	if p.MaxAttempts <= 0 {
		return true
	}
	return attempt <= p.MaxAttempts
}

// Default returns exponential backoff from 5s (the historical fixed
// reconnect delay) up to 5m, with 10% jitter and 10 attempts.
func Default() Policy {
	return Policy{
		Strategy: Exponential{
			Initial:    5 * time.Second,
			Max:        5 * time.Minute,
			Multiplier: 2,
			Jitter:     0.1,
		},
		MaxAttempts: 10,
	}
}
