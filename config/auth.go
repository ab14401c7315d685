package config

type Auth struct {
	// JWT 簽章金鑰 (HS256)
	JWTSecret       string `mapstructure:"JWT_SECRET" json:"jwtSecret" yaml:"jwtSecret"`
	TokenTTLMinutes int    `mapstructure:"TOKEN_TTL_MINUTES" json:"tokenTTLMinutes" yaml:"tokenTTLMinutes"`
	BcryptCost      int    `mapstructure:"BCRYPT_COST" json:"bcryptCost" yaml:"bcryptCost"`
}
