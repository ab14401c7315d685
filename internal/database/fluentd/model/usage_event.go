package model

// UsageEventLog 使用回報的串流紀錄，與 MongoDB usage_events 同步送出
type UsageEventLog struct {
	RequestID   string         `bson:"request_id,omitempty" json:"request_id,omitempty"`
	EventID     string         `bson:"event_id" json:"event_id"`
	ListingID   string         `bson:"listing_id" json:"listing_id"`
	ProviderID  string         `bson:"provider_id,omitempty" json:"provider_id,omitempty"`
	AgentID     string         `bson:"agent_id" json:"agent_id"`
	Metadata    map[string]any `bson:"metadata,omitempty" json:"metadata,omitempty"`
	IPHash      string         `bson:"ip_hash,omitempty" json:"ip_hash,omitempty"`
	ProjectName string         `bson:"project_name,omitempty" json:"project_name,omitempty"`
	Version     string         `bson:"version" json:"version"`
	EventTS     string         `bson:"event_ts" json:"event_ts"`
	LoggedAt    string         `bson:"logged_at" json:"logged_at"`
}
