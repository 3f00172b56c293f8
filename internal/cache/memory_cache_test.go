package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedReport struct {
	Label string `json:"label"`
	Rate  int    `json:"rate"`
}

func TestMemoryCache_SetGet(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	require.NoError(t, c.Set(ctx, "report:ic:abc", cachedReport{Label: "Jan", Rate: 92}, time.Minute))

	var got cachedReport
	require.NoError(t, c.Get(ctx, "report:ic:abc", &got))
	assert.Equal(t, cachedReport{Label: "Jan", Rate: 92}, got)

	err := c.Get(ctx, "report:ic:missing", &got)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", 1, time.Minute))
	var v int
	require.NoError(t, c.Get(ctx, "k", &v))
	assert.Equal(t, 1, v)

	now = now.Add(time.Minute)
	assert.ErrorIs(t, c.Get(ctx, "k", &v), ErrCacheMiss)
	assert.Equal(t, 0, c.Len())
}

func TestMemoryCache_DeletePattern(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	require.NoError(t, c.Set(ctx, "report:ic:1", 1, 0))
	require.NoError(t, c.Set(ctx, "report:ic:2", 2, 0))
	require.NoError(t, c.Set(ctx, "analytics:trend:1", 3, 0))

	require.NoError(t, c.DeletePattern(ctx, "report:ic:*"))
	assert.Equal(t, 1, c.Len())

	require.NoError(t, c.Delete(ctx, "analytics:trend:1"))
	assert.Equal(t, 0, c.Len())
}
