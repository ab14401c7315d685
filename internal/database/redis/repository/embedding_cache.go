package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"agentmarket/internal/core"
	client "agentmarket/internal/database/client"
	"agentmarket/internal/telemetry"

	"github.com/redis/go-redis/v9"
)

// EmbeddingCacheRepository 快取搜尋查詢字串的向量
type EmbeddingCacheRepository struct {
	trace  *telemetry.Trace
	client *redis.Client
}

func NewEmbeddingCacheRepository(trace *telemetry.Trace, client *client.RedisClient) *EmbeddingCacheRepository {
	return &EmbeddingCacheRepository{trace: trace, client: client.Client()}
}

// Get 取得快取向量；未命中回傳 (nil, false, nil)
func (repository *EmbeddingCacheRepository) Get(
	contextValue context.Context,
	model string,
	text string,
) (vector []float32, found bool, returnedError error) {
	contextValue, _, endSpan := repository.trace.WithSpan(contextValue)
	defer func() { endSpan(returnedError) }()

	raw, err := repository.client.Get(contextValue, repository.buildKey(model, text)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		returnedError = err
		return nil, false, returnedError
	}
	if err := json.Unmarshal(raw, &vector); err != nil {
		returnedError = fmt.Errorf("decode cached embedding: %w", err)
		return nil, false, returnedError
	}
	return vector, true, nil
}

// Set 寫入快取；ttl <= 0 時不寫
func (repository *EmbeddingCacheRepository) Set(
	contextValue context.Context,
	model string,
	text string,
	vector []float32,
	ttl time.Duration,
) (returnedError error) {
	if ttl <= 0 || len(vector) == 0 {
		return nil
	}
	contextValue, _, endSpan := repository.trace.WithSpan(contextValue)
	defer func() { endSpan(returnedError) }()

	raw, err := json.Marshal(vector)
	if err != nil {
		returnedError = err
		return returnedError
	}
	returnedError = repository.client.Set(contextValue, repository.buildKey(model, text), raw, ttl).Err()
	return returnedError
}

// buildKey agentmarket:embedding:<sha256(model \x00 text)>
func (repository *EmbeddingCacheRepository) buildKey(model string, text string) string {
	sum := sha256.Sum256([]byte(model + "\x00" + text))
	return fmt.Sprintf("%s:%s:%s", core.RedisKeyServerName, core.RedisKeyEmbeddingCache, hex.EncodeToString(sum[:]))
}
