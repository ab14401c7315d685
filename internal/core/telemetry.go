package core

const ContextTraceKey = "telemetry_trace_ctx"

// ==== 型別安全 span name ====
type TraceSpanName string

const (
	SpanHttpRequest         TraceSpanName = "http_request"
	SpanLoggerMiddleware    TraceSpanName = "logger_middleware"
	SpanRecoveryMiddleware  TraceSpanName = "recovery_middleware"
	SpanCorsMiddleware      TraceSpanName = "cors_middleware"
	SpanResponseMiddleware  TraceSpanName = "response_middleware"
	SpanAuthMiddleware      TraceSpanName = "auth_middleware"
	SpanRateLimitMiddleware TraceSpanName = "ratelimit_middleware"
	SpanIndexRebuild        TraceSpanName = "search_index_rebuild"
)

// 指標名稱常數
type MetricName string

const (
	MetricHttpRequestsTotal     MetricName = "requests_total"
	MetricHttpRequestDuration   MetricName = "request_duration_seconds"
	MetricHttpSuccessTotal      MetricName = "success_total"
	MetricHttpFailTotal         MetricName = "fail_total"
	MetricRateLimitTotal        MetricName = "rate_limited_total"
	MetricEmbeddingRequests     MetricName = "embedding_requests_total"
	MetricEmbeddingDuration     MetricName = "embedding_duration_seconds"
	MetricSearchDuration        MetricName = "search_duration_seconds"
	MetricSearchIndexSize       MetricName = "search_index_size"
	MetricUsageEventsTotal      MetricName = "usage_events_total"
	MetricEmbeddingCacheLookups MetricName = "embedding_cache_lookups_total"
)

// label name 常數
type MetricLabelName string

const (
	MetricLabelEndpoint MetricLabelName = "endpoint"
	MetricLabelStatus   MetricLabelName = "status"
	MetricLabelReason   MetricLabelName = "reason"
	MetricLabelProvider MetricLabelName = "provider"
	MetricLabelOutcome  MetricLabelName = "outcome"
)

type LoggerRequestMeta struct {
	Method     string            `trace:"request.method"`
	Path       string            `trace:"request.path"`
	FullPath   string            `trace:"request.full_path"`
	Query      string            `trace:"request.query"`
	Body       string            `trace:"request.body"`
	Scheme     string            `trace:"http.scheme"`
	Host       string            `trace:"http.host"`
	UserAgent  string            `trace:"http.user_agent"`
	ContentLen int64             `trace:"http.request_content_length"`
	Proto      string            `trace:"http.flavor"`
	ClientIP   string            `trace:"net.peer.ip"`
	Headers    map[string]string `trace:"http.request.header"`
	Params     map[string]string `trace:"http.request.param"`
}

type TraceAuthMiddlewareMeta struct {
	ProviderID string `trace:"auth.provider_id,omitempty"`
	Where      string `trace:"auth.where"`
	Status     string `trace:"auth.status,omitempty"`
}

// 供 Redis 限流 Consume 使用
type TraceRateLimitMeta struct {
	Scope     string `trace:"rl.scope"`
	Client    string `trace:"rl.client"`
	Limit     int    `trace:"rl.limit_count"`
	WindowSec int64  `trace:"rl.window_sec"`
	Remaining int    `trace:"rl.remaining,omitempty"`
	TTL       int64  `trace:"rl.ttl_sec,omitempty"`
	Op        string `trace:"rl.op"`
}

type TraceRateLimitMiddlewareMeta struct {
	Scope       string `trace:"ratelimit.scope"`
	ConfigLimit int    `trace:"ratelimit.config.limit"`
	Remaining   int    `trace:"ratelimit.remaining"`
	TTLSeconds  int64  `trace:"ratelimit.ttl_sec"`
	Blocked     bool   `trace:"ratelimit.blocked"`
}

type TraceListingMeta struct {
	Op         string `trace:"op"`
	ListingID  string `trace:"listing.id,omitempty"`
	ProviderID string `trace:"provider.id,omitempty"`
	Reembedded bool   `trace:"listing.reembedded"`
	Dimensions int    `trace:"embedding.dimensions,omitempty"`
	Count      int    `trace:"result.count,omitempty"`
}

type TraceSearchMeta struct {
	Query       string `trace:"search.query"`
	Limit       int    `trace:"search.limit"`
	IndexSize   int    `trace:"search.index_size"`
	HitCount    int    `trace:"search.hit_count"`
	ResultCount int    `trace:"search.result_count"`
	CacheHit    bool   `trace:"search.cache_hit"`
}

type TraceEmbeddingMeta struct {
	Provider   string `trace:"ai.provider"`
	Model      string `trace:"ai.model"`
	URL        string `trace:"http.url"`
	InputChars int    `trace:"ai.input_chars"`
	Attempts   int    `trace:"ai.attempts,omitempty"`
	Dimensions int    `trace:"ai.dimensions,omitempty"`
}

type TraceUsageMeta struct {
	ListingID string `trace:"usage.listing_id"`
	AgentID   string `trace:"usage.agent_id"`
	EventID   string `trace:"usage.event_id,omitempty"`
}

type TraceIndexRebuildMeta struct {
	Trigger  string `trace:"index.trigger"`
	Scanned  int    `trace:"index.scanned"`
	Indexed  int    `trace:"index.indexed"`
	Skipped  int    `trace:"index.skipped"`
	Duration int64  `trace:"index.duration_ms"`
}

type TraceCorsMeta struct {
	Origin       string   `trace:"http.request.header.origin,omitempty"`
	AllowOrigins []string `trace:"http.cors.allow_origins"`
	Preflight    bool     `trace:"http.cors.preflight"`
}

type TracePanicMeta struct {
	Path       string  `trace:"http.path"`
	Method     string  `trace:"http.method"`
	ClientIP   string  `trace:"net.peer.ip"`
	UserAgent  string  `trace:"http.user_agent"`
	DurationMs float64 `trace:"response.latency_ms"`
	Status     int     `trace:"http.status_code"`
	Message    string  `trace:"error.message"`
	Stack      string  `trace:"error.stack"`
}

type TraceErrorMeta struct {
	Code       int     `trace:"error.code"`
	Message    string  `trace:"error.message"`
	Detail     string  `trace:"error.detail"`
	Status     int     `trace:"http.status_code"`
	DurationMs float64 `trace:"response.latency_ms"`
}

type TraceResponseMeta struct {
	Path       string  `trace:"http.path"`
	Method     string  `trace:"http.method"`
	Status     int     `trace:"http.status_code"`
	Message    string  `trace:"response.message"`
	Code       int     `trace:"response.code"`
	DurationMs float64 `trace:"response.latency_ms"`
	Data       string  `trace:"response.data_preview"`
}

type TraceHttpServerMeta struct {
	// request side
	ClientAddr        string `trace:"client.address"`
	HttpRequestMethod string `trace:"http.request.method"`
	HttpRoute         string `trace:"http.route"`
	UrlPath           string `trace:"http.request.path"`
	UrlScheme         string `trace:"http.request.url.scheme"`
	UserAgent         string `trace:"user_agent.original"`
	ServerAddress     string `trace:"server.address"`
	NetworkPeerAddr   string `trace:"network.peer.address"`
	NetworkPeerPort   int    `trace:"network.peer.port"`
	NetworkProtoVer   string `trace:"network.protocol.version"`
	SpanKind          string `trace:"span.kind"`
	SpanTraceID       string `trace:"span.trace_id"`
	HttpStatusCode    int    `trace:"http.response.status_code"`
}
