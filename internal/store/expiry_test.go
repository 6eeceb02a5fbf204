package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIsExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ttl := 5 * 24 * time.Hour

	require.False(t, IsExpired(now, now, ttl), "fresh write must not be expired")
	require.False(t, IsExpired(now.Add(-ttl), now, ttl), "exactly at TTL is still fresh")
	require.True(t, IsExpired(now.Add(-ttl-time.Nanosecond), now, ttl), "any positive margin past TTL expires")
	require.True(t, IsExpired(time.Time{}, now, ttl), "missing timestamp is always expired")
}
