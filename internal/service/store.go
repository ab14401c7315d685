package service

import (
	"context"
	"time"

	fluentdModel "agentmarket/internal/database/fluentd/model"
	"agentmarket/internal/database/mongodb/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// 以下介面由 mongodb / redis / fluentd repository 實作

type ProviderStore interface {
	Create(ctx context.Context, provider *model.Provider) (*model.Provider, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Provider, error)
	GetByEmail(ctx context.Context, email string) (*model.Provider, error)
}

type ListingStore interface {
	Create(ctx context.Context, listing *model.Listing) (*model.Listing, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Listing, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*model.Listing, error)
	UpdateByID(ctx context.Context, id primitive.ObjectID, setFields bson.M) (*model.Listing, error)
	SetEmbedding(ctx context.Context, id primitive.ObjectID, description string, embedding []float32, embeddingModel string) (int64, error)
	DeleteByID(ctx context.Context, id primitive.ObjectID) (int64, error)
	ListByProvider(ctx context.Context, providerID primitive.ObjectID, page, size int64) ([]*model.Listing, int64, error)
	ForEachIndexable(ctx context.Context, visit func(listing *model.Listing) error) error
	ListForReindex(ctx context.Context, embeddingModel string, all bool) ([]*model.Listing, error)
	IncrementUsage(ctx context.Context, id primitive.ObjectID, usedAt time.Time) (int64, error)
}

type UsageEventStore interface {
	Create(ctx context.Context, event *model.UsageEvent) (*model.UsageEvent, error)
	ListByListing(ctx context.Context, listingID primitive.ObjectID, page, size int64) ([]*model.UsageEvent, int64, error)
}

type EmbeddingCache interface {
	Get(ctx context.Context, model string, text string) ([]float32, bool, error)
	Set(ctx context.Context, model string, text string, vector []float32, ttl time.Duration) error
}

type UsageLogger interface {
	LogUsageEvent(ctx context.Context, event fluentdModel.UsageEventLog) error
}
