package config

type Configuration struct {
	App       App             `mapstructure:"APP" json:"app" yaml:"app"`
	Auth      Auth            `mapstructure:"AUTH" json:"auth" yaml:"auth"`
	Redis     Redis           `mapstructure:"REDIS" json:"redis" yaml:"redis"`
	Log       Log             `mapstructure:"LOG" json:"log" yaml:"log"`
	MongoDB   MongoDB         `mapstructure:"MONGODB" json:"mongodb" yaml:"mongodb"`
	Embedding Embedding       `mapstructure:"EMBEDDING" json:"embedding" yaml:"embedding"`
	Search    Search          `mapstructure:"SEARCH" json:"search" yaml:"search"`
	RateLimit RateLimit       `mapstructure:"RATE_LIMIT" json:"rateLimit" yaml:"rateLimit"`
	Telemetry TelemetryConfig `mapstructure:"TELEMETRY" yaml:"telemetry"`
	Fluentd   Fluentd         `mapstructure:"FLUENTD" yaml:"fluentd"`
}

// ApplyDefaults 補上未設定的欄位
func (c *Configuration) ApplyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "agentmarket"
	}
	if c.App.Port == 0 {
		c.App.Port = 8000
	}
	if len(c.App.CorsAllowOrigins) == 0 {
		c.App.CorsAllowOrigins = []string{"*"}
	}
	if c.App.ShutdownTimeoutSeconds <= 0 {
		c.App.ShutdownTimeoutSeconds = 5
	}
	if c.Redis.Host == "" {
		c.Redis.Host = "localhost"
	}
	if c.Redis.Port == 0 {
		c.Redis.Port = 6379
	}
	if c.Redis.DialTimeoutSeconds <= 0 {
		c.Redis.DialTimeoutSeconds = 5
	}
	if c.Auth.TokenTTLMinutes <= 0 {
		c.Auth.TokenTTLMinutes = 30
	}
	if c.Auth.BcryptCost <= 0 {
		c.Auth.BcryptCost = 12
	}
	if c.MongoDB.Database == "" {
		c.MongoDB.Database = "agentmarket"
	}
	c.Embedding.applyDefaults()
	c.Search.applyDefaults()
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}
