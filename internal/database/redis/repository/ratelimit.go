package repository

import (
	"context"
	"errors"
	"fmt"

	"agentmarket/internal/core"
	client "agentmarket/internal/database/client"
	"agentmarket/internal/telemetry"

	"github.com/redis/go-redis/v9"
)

type RateLimiterRepository struct {
	trace  *telemetry.Trace
	client *redis.Client
}

func NewRateLimiterRepository(trace *telemetry.Trace, client *client.RedisClient) *RateLimiterRepository {
	return &RateLimiterRepository{trace: trace, client: client.Client()}
}

var ErrRateLimitExceeded = errors.New("rate limit exceeded")

// fixedWindowScript 固定視窗計數：第一次 INCR 時設定 TTL，key 遺失 TTL 時補上
// 回傳 {count, ttl}
var fixedWindowScript = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
local ttl = redis.call('TTL', KEYS[1])
if count == 1 or ttl < 0 then
	redis.call('EXPIRE', KEYS[1], ARGV[1])
	ttl = tonumber(ARGV[1])
end
return {count, ttl}
`)

// Consume 在 scope 的視窗內為 client 消耗一次配額。
// 超限時回傳 ErrRateLimitExceeded，remaining 為 0，ttl 為視窗剩餘秒數。
func (repository *RateLimiterRepository) Consume(
	contextValue context.Context,
	scope string,
	clientIdentifier string,
	windowSeconds int64,
	limitCount int,
) (remaining int, ttl int64, returnedError error) {
	contextValue, span, endSpan := repository.trace.WithSpan(contextValue)
	defer func() {
		// 超限是正常結果，不標記 span 錯誤
		if errors.Is(returnedError, ErrRateLimitExceeded) {
			endSpan(nil)
			return
		}
		endSpan(returnedError)
	}()

	meta := core.TraceRateLimitMeta{
		Scope:     scope,
		Client:    clientIdentifier,
		Limit:     limitCount,
		WindowSec: windowSeconds,
		Op:        "consume",
	}
	defer func() {
		meta.Remaining, meta.TTL = remaining, ttl
		repository.trace.ApplyTraceAttributes(span, meta)
	}()

	result, err := fixedWindowScript.Run(contextValue, repository.client,
		[]string{repository.buildKey(scope, clientIdentifier)}, windowSeconds).Int64Slice()
	if err != nil {
		returnedError = fmt.Errorf("rate limit script: %w", err)
		return 0, 0, returnedError
	}
	if len(result) != 2 {
		returnedError = fmt.Errorf("rate limit script: unexpected reply %v", result)
		return 0, 0, returnedError
	}

	count, ttl := result[0], result[1]
	if count > int64(limitCount) {
		returnedError = ErrRateLimitExceeded
		return 0, ttl, returnedError
	}
	return limitCount - int(count), ttl, nil
}

// Reset 刪除配額 key
func (repository *RateLimiterRepository) Reset(
	contextValue context.Context,
	scope string,
	clientIdentifier string,
) (returnedError error) {
	contextValue, span, endSpan := repository.trace.WithSpan(contextValue)
	defer func() { endSpan(returnedError) }()

	repository.trace.ApplyTraceAttributes(span, core.TraceRateLimitMeta{
		Scope:  scope,
		Client: clientIdentifier,
		Op:     "reset",
	})

	returnedError = repository.client.Del(contextValue, repository.buildKey(scope, clientIdentifier)).Err()
	return returnedError
}

// buildKey agentmarket:ratelimit:<scope>:<client>
func (repository *RateLimiterRepository) buildKey(scope string, clientIdentifier string) string {
	return fmt.Sprintf("%s:%s:%s:%s", core.RedisKeyServerName, core.RedisKeyRateLimit, scope, clientIdentifier)
}
