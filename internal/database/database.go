package database

import (
	client "agentmarket/internal/database/client"
	fluentdRepo "agentmarket/internal/database/fluentd/repository"
	mongoRepo "agentmarket/internal/database/mongodb/repository"
	redisRepo "agentmarket/internal/database/redis/repository"

	"github.com/google/wire"
)

// ProviderSet 定義所有 DB Client 與 repository 的依賴
var ProviderSet = wire.NewSet(
	client.NewMongoClient,
	client.NewRedisClient,
	client.NewFluentdClient,
	mongoRepo.ProviderSet,
	redisRepo.ProviderSet,
	fluentdRepo.ProviderSet,
)
