package core

import "go.mongodb.org/mongo-driver/bson"

type MongoCollection string
type RedisKey string
type FluentdSubTag string

// ─── MongoDB ───────────────────────────────────────────────────────────────────

// MongoDB collections
const (
	MongoCollectionProviders   MongoCollection = "providers"
	MongoCollectionListings    MongoCollection = "listings"
	MongoCollectionUsageEvents MongoCollection = "usage_events"
)

// ─── Redis Keys ────────────────────────────────────────────────────────────────

const (
	RedisKeyServerName     RedisKey = "agentmarket" // key 前綴
	RedisKeyRateLimit      RedisKey = "ratelimit"
	RedisKeyEmbeddingCache RedisKey = "embedding"
)

const (
	FluentdRequest    FluentdSubTag = "request_log"
	FluentdResponse   FluentdSubTag = "response_log"
	FluentdUsageEvent FluentdSubTag = "usage_event"
)

type ListOptions struct {
	Filter bson.M `json:"filter,omitempty" bson:"filter,omitempty"`
	Page   int64  `json:"page,omitempty" bson:"page,omitempty"`
	Size   int64  `json:"size,omitempty" bson:"size,omitempty"`
}
