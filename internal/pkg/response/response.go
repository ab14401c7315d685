package response

import (
	cErr "agentmarket/internal/pkg/error"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response 為所有 API 的統一外層格式；成功時 code 為 0
type Response struct {
	RequestID   string `json:"requestID"`
	Code        int    `json:"code"`
	Data        any    `json:"data"`
	Message     string `json:"message"`
	Description string `json:"description"`
}

// Create 設定 201，實際輸出由 Response middleware 負責
func Create(c *gin.Context, data any) {
	c.Status(http.StatusCreated)
	stash(c, data, "Create Success")
}

func Success(c *gin.Context, data any) {
	stash(c, data, "Request Success")
}

// stash 把 data 與 message 放進 gin context；gin.H 裡的 "message" 會被抽出當作描述
func stash(c *gin.Context, data any, message string) {
	if h, ok := data.(gin.H); ok {
		if s, ok := h["message"].(string); ok && s != "" {
			message = s
		}
		delete(h, "message")
	}
	c.Set("data", data)
	c.Set("message", message)
	c.Abort()
}

func AbortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// Fail 直接輸出錯誤外層；非 *cErr.Error 一律視為 500
func Fail(c *gin.Context, requestID string, err error) {
	appErr := cErr.From(err)
	c.JSON(appErr.HttpCode(), Response{
		RequestID:   requestID,
		Code:        appErr.ErrorCode(),
		Message:     appErr.Error(),
		Description: appErr.ErrorDesc(),
	})
	c.Abort()
}
