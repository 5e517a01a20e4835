package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTelegramRetry(t *testing.T) {
	newChannel := func(sleeps *[]time.Duration) *TelegramChannel {
		return &TelegramChannel{
			chatID:     1,
			maxRetries: 3,
			retryDelay: time.Second,
			sleep: func(d time.Duration) {
				*sleeps = append(*sleeps, d)
			},
		}
	}

	t.Run("succeeds without sleeping", func(t *testing.T) {
		var sleeps []time.Duration
		c := newChannel(&sleeps)

		err := c.sendWithRetry(context.Background(), func() error { return nil })

		require.NoError(t, err)
		assert.Empty(t, sleeps)
	})

	t.Run("backs off between attempts but not after the last", func(t *testing.T) {
		var sleeps []time.Duration
		c := newChannel(&sleeps)

		attempts := 0
		err := c.sendWithRetry(context.Background(), func() error {
			attempts++
			return errors.New("telegram unavailable")
		})

		require.Error(t, err)
		assert.Equal(t, 3, attempts)
		assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, sleeps)
	})

	t.Run("recovers on a later attempt", func(t *testing.T) {
		var sleeps []time.Duration
		c := newChannel(&sleeps)

		attempts := 0
		err := c.sendWithRetry(context.Background(), func() error {
			attempts++
			if attempts < 2 {
				return errors.New("telegram unavailable")
			}
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, []time.Duration{time.Second}, sleeps)
	})

	t.Run("stops when the context is cancelled", func(t *testing.T) {
		var sleeps []time.Duration
		c := newChannel(&sleeps)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := c.sendWithRetry(ctx, func() error { return errors.New("telegram unavailable") })

		require.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, sleeps)
	})
}
