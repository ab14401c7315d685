package config

type Embedding struct {
	// openai / ollama
	Provider       string `mapstructure:"PROVIDER" json:"provider" yaml:"provider"`
	APIKey         string `mapstructure:"API_KEY" json:"apiKey" yaml:"apiKey"`
	BaseURL        string `mapstructure:"BASE_URL" json:"baseURL" yaml:"baseURL"`
	Model          string `mapstructure:"MODEL" json:"model" yaml:"model"`
	TimeoutSeconds int    `mapstructure:"TIMEOUT_SECONDS" json:"timeoutSeconds" yaml:"timeoutSeconds"`
	MaxRetries     int    `mapstructure:"MAX_RETRIES" json:"maxRetries" yaml:"maxRetries"`
}

func (e *Embedding) applyDefaults() {
	if e.Provider == "" {
		e.Provider = "openai"
	}
	if e.TimeoutSeconds <= 0 {
		e.TimeoutSeconds = 30
	}
	if e.MaxRetries <= 0 {
		e.MaxRetries = 3
	}
}
