package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Provider struct {
	ID           primitive.ObjectID `json:"id" bson:"_id"`              // provider 唯一識別碼
	Name         string             `json:"name" bson:"name"`           // 組織或個人名稱
	Email        string             `json:"email" bson:"email"`         // 登入信箱（唯一，小寫）
	PasswordHash string             `json:"-" bson:"passwordHash"`      // bcrypt hash
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"` // 建立時間
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updatedAt"` // 更新時間
}
