package dto

import "time"

// 回報使用；body 可省略
type RecordUsageDto struct {
	AgentID  string         `json:"agentID,omitempty" binding:"omitempty,max=200"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type UsageEventResponseDto struct {
	ID        string         `json:"id"`
	ListingID string         `json:"listingID"`
	AgentID   string         `json:"agentID"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

type UsageEventPageDto struct {
	Items []*UsageEventResponseDto `json:"items"`
	Page  int64                    `json:"page"`
	Size  int64                    `json:"size"`
	Total int64                    `json:"total"`
}
