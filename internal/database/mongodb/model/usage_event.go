package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UsageEvent 只新增不修改；listing 刪除後仍保留
type UsageEvent struct {
	ID           primitive.ObjectID `json:"id" bson:"_id"`
	ListingID    primitive.ObjectID `json:"listingID" bson:"listingID"`
	AgentID      string             `json:"agentID" bson:"agentID"`
	Metadata     map[string]any     `json:"metadata,omitempty" bson:"metadata,omitempty"`
	ClientIPHash string             `json:"-" bson:"clientIPHash,omitempty"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
}
