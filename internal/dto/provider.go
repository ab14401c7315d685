package dto

import (
	"agentmarket/internal/pkg/request"
	"time"
)

// 註冊 provider
type RegisterProviderDto struct {
	Name     string `json:"name" binding:"required,min=3,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"` // bcrypt 只取前 72 bytes
}

func (RegisterProviderDto) GetMessages() request.ValidatorMessages {
	return request.ValidatorMessages{
		"Name.required":     "name is required",
		"Name.min":          "name must be at least 3 characters",
		"Name.max":          "name must be at most 100 characters",
		"Email.required":    "email is required",
		"Email.email":       "email is not a valid address",
		"Password.required": "password is required",
		"Password.min":      "password must be at least 8 characters",
		"Password.max":      "password must be at most 72 characters",
	}
}

// 登入：JSON 用 email，OAuth2 password form 用 username
type LoginDto struct {
	Email    string `json:"email" form:"email"`
	Username string `json:"username,omitempty" form:"username"`
	Password string `json:"password" form:"password" binding:"required"`
}

func (LoginDto) GetMessages() request.ValidatorMessages {
	return request.ValidatorMessages{
		"Password.required": "password is required",
	}
}

// Identifier 優先使用 email，否則退回 OAuth2 的 username
func (d LoginDto) Identifier() string {
	if d.Email != "" {
		return d.Email
	}
	return d.Username
}

type ProviderResponseDto struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TokenResponseDto 與 OAuth2 token response 欄位一致
type TokenResponseDto struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}
