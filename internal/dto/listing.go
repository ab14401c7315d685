package dto

import (
	"agentmarket/internal/core"
	"agentmarket/internal/pkg/request"
	"time"
)

type ListingAPIDto struct {
	Endpoint     string          `json:"endpoint" binding:"required,url"`
	Method       core.HTTPMethod `json:"method" binding:"required,listingmethod"`
	InputSchema  map[string]any  `json:"inputSchema,omitempty"`
	OutputSchema map[string]any  `json:"outputSchema,omitempty"`
}

// 建立 listing；providerID 可省略，有帶時必須等於登入者
type CreateListingDto struct {
	ProviderID  string        `json:"providerID,omitempty"`
	Name        string        `json:"name" binding:"required,min=3,max=100"`
	Description string        `json:"description" binding:"required,min=10,max=1000"`
	Categories  []string      `json:"categories" binding:"required,min=1,dive,required,max=50"`
	Tags        []string      `json:"tags,omitempty" binding:"omitempty,dive,required,max=50"`
	API         ListingAPIDto `json:"api" binding:"required"`
	OpenAPISpec string        `json:"openapiSpec,omitempty"`
}

func (CreateListingDto) GetMessages() request.ValidatorMessages {
	return listingMessages
}

// 更新 listing：只更新有帶的欄位
type UpdateListingDto struct {
	Name        *string        `json:"name,omitempty" binding:"omitempty,min=3,max=100"`
	Description *string        `json:"description,omitempty" binding:"omitempty,min=10,max=1000"`
	Categories  *[]string      `json:"categories,omitempty" binding:"omitempty,min=1,dive,required,max=50"`
	Tags        *[]string      `json:"tags,omitempty" binding:"omitempty,dive,required,max=50"`
	API         *ListingAPIDto `json:"api,omitempty"`
	OpenAPISpec *string        `json:"openapiSpec,omitempty"`
}

func (UpdateListingDto) GetMessages() request.ValidatorMessages {
	return listingMessages
}

// IsEmpty 沒有任何可更新欄位
func (d UpdateListingDto) IsEmpty() bool {
	return d.Name == nil && d.Description == nil && d.Categories == nil &&
		d.Tags == nil && d.API == nil && d.OpenAPISpec == nil
}

var listingMessages = request.ValidatorMessages{
	"Name.required":        "name is required",
	"Name.min":             "name must be at least 3 characters",
	"Name.max":             "name must be at most 100 characters",
	"Description.required": "description is required",
	"Description.min":      "description must be at least 10 characters",
	"Description.max":      "description must be at most 1000 characters",
	"Categories.required":  "at least one category is required",
	"Categories.min":       "at least one category is required",
	"Endpoint.required":    "api.endpoint is required",
	"Endpoint.url":         "api.endpoint must be a valid URL",
	"Method.required":      "api.method is required",
	"Method.listingmethod": "api.method must be one of GET, POST, PUT, DELETE",
}

type ListingResponseDto struct {
	ID             string        `json:"id"`
	ProviderID     string        `json:"providerID"`
	Name           string        `json:"name"`
	Description    string        `json:"description"`
	Categories     []string      `json:"categories"`
	Tags           []string      `json:"tags"`
	API            ListingAPIDto `json:"api"`
	OpenAPISpec    string        `json:"openapiSpec,omitempty"`
	EmbeddingModel string        `json:"embeddingModel,omitempty"`
	UsageCount     int64         `json:"usageCount"`
	LastUsedAt     *time.Time    `json:"lastUsedAt,omitempty"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

type ListingPageDto struct {
	Items []*ListingResponseDto `json:"items"`
	Page  int64                 `json:"page"`
	Size  int64                 `json:"size"`
	Total int64                 `json:"total"`
}
