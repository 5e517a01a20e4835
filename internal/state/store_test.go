package state

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionKey(t *testing.T) {
	t.Run("pure function of previous close", func(t *testing.T) {
		assert.Equal(t, SessionKey(100.0), SessionKey(100.0))
		assert.Equal(t, "session_100.00", SessionKey(100.0))
		assert.Equal(t, "session_253.57", SessionKey(253.567))
	})

	t.Run("different previous close means different session", func(t *testing.T) {
		assert.NotEqual(t, SessionKey(100.0), SessionKey(100.02))
	})
}

func TestCompositeKey(t *testing.T) {
	t.Run("ticker casing never splits a session", func(t *testing.T) {
		assert.Equal(t, CompositeKey("aapl", 195.50), CompositeKey("AAPL", 195.50))
		assert.Equal(t, "AAPL#session_195.50", CompositeKey(" aapl ", 195.50))
	})
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("get before any alert returns nil without error", func(t *testing.T) {
		store := NewMemory()

		record, err := store.Get(ctx, "XYZ", 100.0)

		require.NoError(t, err)
		assert.Nil(t, record)
	})

	t.Run("put then get round-trips the record", func(t *testing.T) {
		store := NewMemory()
		now := time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC)
		store.SetClock(func() time.Time { return now })

		require.NoError(t, store.Put(ctx, "xyz", 8.0, 100.0, 1))

		record, err := store.Get(ctx, "XYZ", 100.0)
		require.NoError(t, err)
		require.NotNil(t, record)
		assert.Equal(t, "XYZ", record.Ticker)
		assert.Equal(t, 8.0, record.LastAlertedPercent)
		assert.Equal(t, 1, record.AlertCount)
		assert.Equal(t, "session_100.00", record.SessionKey)
		assert.Equal(t, now, record.LastAlertTime())
	})

	t.Run("new session does not see the old record", func(t *testing.T) {
		store := NewMemory()

		require.NoError(t, store.Put(ctx, "XYZ", 8.0, 100.0, 1))

		record, err := store.Get(ctx, "XYZ", 104.5)
		require.NoError(t, err)
		assert.Nil(t, record)
	})

	t.Run("updates overwrite in place", func(t *testing.T) {
		store := NewMemory()

		require.NoError(t, store.Put(ctx, "XYZ", 8.0, 100.0, 1))
		require.NoError(t, store.Put(ctx, "XYZ", 15.5, 100.0, 2))

		record, err := store.Get(ctx, "XYZ", 100.0)
		require.NoError(t, err)
		require.NotNil(t, record)
		assert.Equal(t, 15.5, record.LastAlertedPercent)
		assert.Equal(t, 2, record.AlertCount)
	})

	t.Run("returned record is a copy", func(t *testing.T) {
		store := NewMemory()
		require.NoError(t, store.Put(ctx, "XYZ", 8.0, 100.0, 1))

		record, err := store.Get(ctx, "XYZ", 100.0)
		require.NoError(t, err)
		record.AlertCount = 99

		again, err := store.Get(ctx, "XYZ", 100.0)
		require.NoError(t, err)
		assert.Equal(t, 1, again.AlertCount)
	})
}
