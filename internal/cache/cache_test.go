package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/monitor-platform/pkg/models"
)

func TestMemoryCache_GetSet(t *testing.T) {
	c := NewMemoryCache(4, time.Minute)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, &models.ThreadHotspotAnalysis{ProcessID: 1, HealthScore: 88}))

	got, ok, err := c.Get(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 88, got.HealthScore)
}

func TestMemoryCache_OverwritesPerProcess(t *testing.T) {
	c := NewMemoryCache(4, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, &models.ThreadHotspotAnalysis{ProcessID: 1, HealthScore: 50}))
	require.NoError(t, c.Set(ctx, &models.ThreadHotspotAnalysis{ProcessID: 1, HealthScore: 90}))

	got, ok, _ := c.Get(ctx, 1)
	require.True(t, ok)
	assert.Equal(t, 90, got.HealthScore)
	assert.Equal(t, 1, c.Len())
}

func TestMemoryCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewMemoryCache(2, time.Minute)
	ctx := context.Background()

	for id := int64(1); id <= 3; id++ {
		require.NoError(t, c.Set(ctx, &models.ThreadHotspotAnalysis{ProcessID: id}))
	}

	_, ok, _ := c.Get(ctx, 1)
	assert.False(t, ok)
	_, ok, _ = c.Get(ctx, 3)
	assert.True(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestMemoryCache_Defaults(t *testing.T) {
	c := NewMemoryCache(0, 0)
	require.NoError(t, c.Set(context.Background(), &models.ThreadHotspotAnalysis{ProcessID: 7}))

	assert.Equal(t, 1, c.Len())
	require.NoError(t, c.Close())
	assert.Equal(t, 0, c.Len())
}

func TestRedisCache_Key(t *testing.T) {
	c := NewRedisCache(RedisConfig{Addr: "localhost:6379"})
	defer c.Close()

	assert.Equal(t, "monitor:analysis:process:42", c.key(42))
	assert.Equal(t, DefaultTTL, c.ttl)
}
