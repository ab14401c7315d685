package config

type Redis struct {
	Host     string `mapstructure:"HOST" json:"host" yaml:"host"`
	Port     int    `mapstructure:"PORT" json:"port" yaml:"port"`
	Password string `mapstructure:"PASSWORD" json:"password" yaml:"password"`
	DB       int    `mapstructure:"DB" json:"db" yaml:"db"`
	// Memorystore / ElastiCache 啟用傳輸加密時打開
	TLS                bool `mapstructure:"TLS" json:"tls" yaml:"tls"`
	PoolSize           int  `mapstructure:"POOL_SIZE" json:"poolSize" yaml:"poolSize"`
	DialTimeoutSeconds int  `mapstructure:"DIAL_TIMEOUT_SECONDS" json:"dialTimeoutSeconds" yaml:"dialTimeoutSeconds"`
}
