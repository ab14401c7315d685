package model

import "time"

// TimestampLayout fluentd 端 parser 使用的時間格式
const TimestampLayout = "2006-01-02 15:04:05.999999 UTC"

func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// RequestLog 進站請求；body 已經過遮罩
type RequestLog struct {
	RequestID   string `bson:"request_id" json:"request_id"`
	Method      string `bson:"method" json:"method"`
	Path        string `bson:"path" json:"path"`
	Route       string `bson:"route,omitempty" json:"route,omitempty"`
	ListingID   string `bson:"listing_id,omitempty" json:"listing_id,omitempty"`
	ProjectName string `bson:"project_name,omitempty" json:"project_name,omitempty"`
	Body        string `bson:"body,omitempty" json:"body,omitempty"`
	IPHash      string `bson:"ip_hash,omitempty" json:"ip_hash,omitempty"`
	UserAgent   string `bson:"user_agent,omitempty" json:"user_agent,omitempty"`
	Version     string `bson:"version,omitempty" json:"version,omitempty"`
	RequestTS   string `bson:"request_ts" json:"request_ts"`
	LoggedAt    string `bson:"logged_at" json:"logged_at"`
}
