package model

import (
	"agentmarket/internal/core"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Listing struct {
	ID             primitive.ObjectID `json:"id" bson:"_id"`                                      // listing 唯一識別碼
	ProviderID     primitive.ObjectID `json:"providerID" bson:"providerID"`                       // 擁有者
	Name           string             `json:"name" bson:"name"`                                   // 標題
	Description    string             `json:"description" bson:"description"`                     // 用於 embedding 的描述
	Categories     []string           `json:"categories" bson:"categories"`                       // 分類
	Tags           []string           `json:"tags" bson:"tags"`                                   // 標籤
	API            ListingAPI         `json:"api" bson:"api"`                                     // 呼叫方式
	OpenAPISpec    string             `json:"openapiSpec,omitempty" bson:"openapiSpec,omitempty"` // OpenAPI 文件（JSON 字串）
	Embedding      []float32          `json:"-" bson:"embedding"`                                 // description 的向量
	EmbeddingModel string             `json:"embeddingModel,omitempty" bson:"embeddingModel"`     // 產生向量的模型
	UsageCount     int64              `json:"usageCount" bson:"usageCount"`                       // 使用回報次數
	LastUsedAt     *time.Time         `json:"lastUsedAt,omitempty" bson:"lastUsedAt,omitempty"`   // 最後使用時間
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`                         // 建立時間
	UpdatedAt      time.Time          `json:"updatedAt" bson:"updatedAt"`                         // 更新時間
}

type ListingAPI struct {
	Endpoint     string          `json:"endpoint" bson:"endpoint"`
	Method       core.HTTPMethod `json:"method" bson:"method"`
	InputSchema  map[string]any  `json:"inputSchema,omitempty" bson:"inputSchema,omitempty"`
	OutputSchema map[string]any  `json:"outputSchema,omitempty" bson:"outputSchema,omitempty"`
}

// HasEmbedding 是否可放入搜尋索引
func (l *Listing) HasEmbedding() bool {
	if len(l.Embedding) == 0 {
		return false
	}
	for _, v := range l.Embedding {
		if v != 0 {
			return true
		}
	}
	return false
}
