package service

import (
	fluentdRepo "agentmarket/internal/database/fluentd/repository"
	mongoRepo "agentmarket/internal/database/mongodb/repository"
	redisRepo "agentmarket/internal/database/redis/repository"
	"agentmarket/internal/search"
	"agentmarket/internal/service/embedding"

	"github.com/google/wire"
)

var ProviderSet = wire.NewSet(
	embedding.NewEmbedder,
	search.NewIndex,
	NewProviderService,
	NewListingService,
	NewSearchService,
	NewUsageService,
	NewHealthService,
	wire.Bind(new(ProviderStore), new(*mongoRepo.ProviderRepository)),
	wire.Bind(new(ListingStore), new(*mongoRepo.ListingRepository)),
	wire.Bind(new(UsageEventStore), new(*mongoRepo.UsageEventRepository)),
	wire.Bind(new(EmbeddingCache), new(*redisRepo.EmbeddingCacheRepository)),
	wire.Bind(new(UsageLogger), new(*fluentdRepo.LogRepository)),
)
