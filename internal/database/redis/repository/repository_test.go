package repository

import (
	"context"
	"testing"
	"time"

	"agentmarket/internal/database/client"
	"agentmarket/internal/telemetry"
	"agentmarket/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterConsume(t *testing.T) {
	redisClient := client.NewRedisClientFrom(testutil.StartRedis(t))
	repo := NewRateLimiterRepository(telemetry.NewNoopTrace(), redisClient)
	ctx := context.Background()

	remaining, ttl, err := repo.Consume(ctx, "search", "10.0.0.1", 60, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, remaining)
	assert.Equal(t, int64(60), ttl)

	remaining, _, err = repo.Consume(ctx, "search", "10.0.0.1", 60, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)

	_, ttl, err = repo.Consume(ctx, "search", "10.0.0.1", 60, 2)
	assert.ErrorIs(t, err, ErrRateLimitExceeded)
	assert.Greater(t, ttl, int64(0))

	// 不同 client 各自計算
	remaining, _, err = repo.Consume(ctx, "search", "10.0.0.2", 60, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, remaining)

	require.NoError(t, repo.Reset(ctx, "search", "10.0.0.1"))
	remaining, _, err = repo.Consume(ctx, "search", "10.0.0.1", 60, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, remaining)
}

func TestEmbeddingCacheRoundTrip(t *testing.T) {
	redisClient := client.NewRedisClientFrom(testutil.StartRedis(t))
	repo := NewEmbeddingCacheRepository(telemetry.NewNoopTrace(), redisClient)
	ctx := context.Background()

	_, found, err := repo.Get(ctx, "m1", "weather api")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, repo.Set(ctx, "m1", "weather api", []float32{0.25, -1, 3.5}, time.Minute))

	vector, found, err := repo.Get(ctx, "m1", "weather api")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []float32{0.25, -1, 3.5}, vector)

	// 換模型不共用快取
	_, found, err = repo.Get(ctx, "m2", "weather api")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestEmbeddingCacheKeyIsStable(t *testing.T) {
	repo := &EmbeddingCacheRepository{}
	a := repo.buildKey("m", "hello")
	assert.Equal(t, a, repo.buildKey("m", "hello"))
	assert.NotEqual(t, a, repo.buildKey("m", "hello "))
	assert.Contains(t, a, "agentmarket:embedding:")
}
