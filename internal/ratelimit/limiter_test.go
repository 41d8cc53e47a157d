package ratelimit

import (
	"testing"
	"time"

	"backend/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsume_LimitWithinWindow(t *testing.T) {
	limiter := NewDefault()

	for i := 0; i < DefaultLimit; i++ {
		require.NoError(t, limiter.Consume("actor-1", "LOC-A", "VENDOR_INVOICE:APPROVE_INVOICE"))
	}

	err := limiter.Consume("actor-1", "LOC-A", "VENDOR_INVOICE:APPROVE_INVOICE")
	require.Error(t, err)
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", apperror.Code(err))
}

func TestConsume_WindowExpiry(t *testing.T) {
	limiter := New(2, 60*time.Second)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	limiter.SetClock(func() time.Time { return now })

	require.NoError(t, limiter.Consume("actor-1", "LOC-A", "class"))
	require.NoError(t, limiter.Consume("actor-1", "LOC-A", "class"))
	require.Error(t, limiter.Consume("actor-1", "LOC-A", "class"))

	// Still inside the window, still throttled.
	now = now.Add(59 * time.Second)
	require.Error(t, limiter.Consume("actor-1", "LOC-A", "class"))

	// Window expired, a fresh one starts.
	now = now.Add(2 * time.Second)
	assert.NoError(t, limiter.Consume("actor-1", "LOC-A", "class"))
}

func TestConsume_IndependentActors(t *testing.T) {
	limiter := New(1, time.Minute)

	require.NoError(t, limiter.Consume("actor-1", "LOC-A", "class"))
	require.Error(t, limiter.Consume("actor-1", "LOC-A", "class"))

	assert.NoError(t, limiter.Consume("actor-2", "LOC-A", "class"))
}

func TestConsume_IndependentClasses(t *testing.T) {
	limiter := New(1, time.Minute)

	require.NoError(t, limiter.Consume("actor-1", "LOC-A", "VENDOR_INVOICE:APPROVE_INVOICE"))
	require.Error(t, limiter.Consume("actor-1", "LOC-A", "VENDOR_INVOICE:APPROVE_INVOICE"))

	assert.NoError(t, limiter.Consume("actor-1", "LOC-A", "REQUISITION:APPROVE_REQUISITION"))
}

func TestReset(t *testing.T) {
	limiter := New(1, time.Minute)

	require.NoError(t, limiter.Consume("actor-1", "LOC-A", "class"))
	require.Error(t, limiter.Consume("actor-1", "LOC-A", "class"))

	limiter.Reset()
	assert.NoError(t, limiter.Consume("actor-1", "LOC-A", "class"))
}
