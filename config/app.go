package config

type App struct {
	// 當前開發環境：production 會關閉 pprof、swagger 改用 https
	Env string `mapstructure:"ENV" json:"env" yaml:"env"`
	// 服務端口
	Port uint32 `mapstructure:"PORT" json:"port" yaml:"port"`
	// 服務名稱，同時作為 metric 前綴
	Name string `mapstructure:"NAME" json:"name" yaml:"name"`
	// 服務版本
	Version        string `mapstructure:"VERSION" json:"version" yaml:"version"`
	SwaggerEnabled bool   `mapstructure:"SWAGGER_ENABLED" json:"swagger_enabled" yaml:"swagger_enabled"`
	// 允許的跨域來源，預設 *
	CorsAllowOrigins []string `mapstructure:"CORS_ALLOW_ORIGINS" json:"corsAllowOrigins" yaml:"corsAllowOrigins"`
	// 信任的反向代理，ClientIP（限流 key）只採信這些來源的 X-Forwarded-For
	TrustedProxies         []string `mapstructure:"TRUSTED_PROXIES" json:"trustedProxies" yaml:"trustedProxies"`
	ShutdownTimeoutSeconds int      `mapstructure:"SHUTDOWN_TIMEOUT_SECONDS" json:"shutdownTimeoutSeconds" yaml:"shutdownTimeoutSeconds"`
}
