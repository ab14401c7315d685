package testutil

import "agentmarket/config"

// Config 測試用設定：低 bcrypt cost、固定 JWT 金鑰
func Config() *config.Configuration {
	conf := &config.Configuration{}
	conf.App.Env = "test"
	conf.Auth.JWTSecret = "test-secret"
	conf.Auth.BcryptCost = 4
	conf.ApplyDefaults()
	return conf
}
