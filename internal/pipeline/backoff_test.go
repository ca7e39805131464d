package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextBackoff(t *testing.T) {
	tests := []struct {
		current time.Duration
		want    time.Duration
	}{
		{200 * time.Millisecond, 400 * time.Millisecond},
		{time.Second, 2 * time.Second},
		{3200 * time.Millisecond, maxBackoff},
		{maxBackoff, maxBackoff},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, nextBackoff(tt.current, maxBackoff), tt.current.String())
	}
}

func TestBackoff_ResetAndAdvance(t *testing.T) {
	var b backoff
	b.reset()
	assert.Equal(t, initialBackoff, b.current)

	for range 10 {
		b.advance()
	}
	assert.Equal(t, maxBackoff, b.current)

	b.reset()
	assert.Equal(t, initialBackoff, b.current)
}

func TestSleepWithContext(t *testing.T) {
	assert.True(t, sleepWithContext(context.Background(), 0))
	assert.True(t, sleepWithContext(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, sleepWithContext(ctx, time.Hour))
}
