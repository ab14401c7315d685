package config

type Search struct {
	MinQueryLength int `mapstructure:"MIN_QUERY_LENGTH" json:"minQueryLength" yaml:"minQueryLength"`
	DefaultLimit   int `mapstructure:"DEFAULT_LIMIT" json:"defaultLimit" yaml:"defaultLimit"`
	MaxLimit       int `mapstructure:"MAX_LIMIT" json:"maxLimit" yaml:"maxLimit"`
	// robfig/cron 格式（含秒），空字串代表不排程
	ReindexSpec          string `mapstructure:"REINDEX_SPEC" json:"reindexSpec" yaml:"reindexSpec"`
	QueryCacheTTLSeconds int    `mapstructure:"QUERY_CACHE_TTL_SECONDS" json:"queryCacheTTLSeconds" yaml:"queryCacheTTLSeconds"`
	ReindexConcurrency   int    `mapstructure:"REINDEX_CONCURRENCY" json:"reindexConcurrency" yaml:"reindexConcurrency"`
}

func (s *Search) applyDefaults() {
	if s.MinQueryLength <= 0 {
		s.MinQueryLength = 3
	}
	if s.DefaultLimit <= 0 {
		s.DefaultLimit = 10
	}
	if s.MaxLimit <= 0 {
		s.MaxLimit = 50
	}
	if s.DefaultLimit > s.MaxLimit {
		s.DefaultLimit = s.MaxLimit
	}
	// 負值代表不快取
	if s.QueryCacheTTLSeconds == 0 {
		s.QueryCacheTTLSeconds = 3600
	}
	if s.ReindexConcurrency <= 0 {
		s.ReindexConcurrency = 4
	}
}

type RateLimit struct {
	// 每個 client 每分鐘可搜尋次數，0 代表不限制
	SearchPerMinute int `mapstructure:"SEARCH_PER_MINUTE" json:"searchPerMinute" yaml:"searchPerMinute"`
}
