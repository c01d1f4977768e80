package backoff_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/sessiongate/pkg/backoff"
)

func TestExponential_NextInterval(t *testing.T) {
	t.Parallel()

	e := backoff.Exponential{
		Initial:    time.Second,
		Max:        10 * time.Second,
		Multiplier: 2,
	}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{attempt: 0, want: 0},
		{attempt: 1, want: time.Second},
		{attempt: 2, want: 2 * time.Second},
		{attempt: 3, want: 4 * time.Second},
		{attempt: 4, want: 8 * time.Second},
		{attempt: 5, want: 10 * time.Second},
		{attempt: 500, want: 10 * time.Second},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, e.NextInterval(tt.attempt), "attempt %d", tt.attempt)
	}
}

func TestExponential_JitterStaysInRange(t *testing.T) {
	t.Parallel()

	e := backoff.Exponential{
		Initial:    time.Second,
		Max:        time.Hour,
		Multiplier: 2,
		Jitter:     0.2,
	}

	for range 100 {
		d := e.NextInterval(3)
		assert.GreaterOrEqual(t, d, time.Duration(float64(4*time.Second)*0.8))
		assert.LessOrEqual(t, d, time.Duration(float64(4*time.Second)*1.2))
	}
}

func TestExponential_Defaults(t *testing.T) {
	t.Parallel()

	var e backoff.Exponential
	assert.Equal(t, time.Second, e.NextInterval(1))
	assert.Equal(t, 2*time.Second, e.NextInterval(2))
}

func TestPolicy_DelayHasLowerBound(t *testing.T) {
	t.Parallel()

	p := backoff.Policy{Strategy: backoff.Constant{Interval: 0}}
	assert.Equal(t, backoff.MinInterval, p.Delay(1))

	p = backoff.Policy{Strategy: backoff.Constant{Interval: time.Millisecond}}
	assert.Equal(t, backoff.MinInterval, p.Delay(3))
}

func TestPolicy_Allowed(t *testing.T) {
	t.Parallel()

	p := backoff.Policy{MaxAttempts: 3}
	assert.True(t, p.Allowed(1))
	assert.True(t, p.Allowed(3))
	assert.False(t, p.Allowed(4))

	unlimited := backoff.Policy{}
	assert.True(t, unlimited.Allowed(1_000_000))
}

func TestDefault(t *testing.T) {
	t.Parallel()

	p := backoff.Default()
	assert.Equal(t, 10, p.MaxAttempts)
	d := p.Delay(1)
	assert.GreaterOrEqual(t, d, 4500*time.Millisecond)
	assert.LessOrEqual(t, d, 5500*time.Millisecond)
}
