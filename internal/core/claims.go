package core

import "github.com/golang-jwt/jwt/v4"

// Claims provider 登入後簽發的 JWT；Subject 為 provider ID
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}
