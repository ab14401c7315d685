package model

// ResponseLog 以 request_id 與 RequestLog 對應
type ResponseLog struct {
	RequestID   string  `bson:"request_id" json:"request_id"`
	Route       string  `bson:"route,omitempty" json:"route,omitempty"`
	ProviderID  string  `bson:"provider_id,omitempty" json:"provider_id,omitempty"`
	ProjectName string  `bson:"project_name,omitempty" json:"project_name,omitempty"`
	Code        int     `bson:"code" json:"code"`
	StatusCode  int     `bson:"status_code" json:"status_code"`
	DurationMs  float64 `bson:"duration_ms" json:"duration_ms"`
	Body        string  `bson:"body,omitempty" json:"body,omitempty"`
	Error       string  `bson:"error,omitempty" json:"error,omitempty"`
	Version     string  `bson:"version,omitempty" json:"version,omitempty"`
	ResponseTS  string  `bson:"response_ts" json:"response_ts"`
	LoggedAt    string  `bson:"logged_at" json:"logged_at"`
}
