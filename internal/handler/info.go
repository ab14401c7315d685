package handler

import (
	"net/http"
	"runtime"
	"time"

	"agentmarket/config"
	"agentmarket/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type InfoHandler struct {
	config    *config.Configuration
	startedAt time.Time
}

func NewInfoHandler(config *config.Configuration) *InfoHandler {
	return &InfoHandler{config: config, startedAt: time.Now().UTC()}
}

// Root 歡迎訊息
// @Summary 服務首頁
// @Tags Info
// @Produce json
// @Success 200 {object} map[string]string
// @Router / [get]
func (h *InfoHandler) Root(c *gin.Context) {
	response.Success(c, gin.H{
		"message": "Welcome to AgentMarket API",
		"name":    h.config.App.Name,
		"docs":    "/swagger/index.html",
	})
}

// Version 執行環境資訊
// @Summary 版本與執行環境
// @Tags Info
// @Produce json
// @Success 200 {object} map[string]any
// @Router /version [get]
func (h *InfoHandler) Version(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":      h.config.App.Name,
		"version":   h.config.App.Version,
		"env":       h.config.App.Env,
		"goVersion": runtime.Version(),
		"startedAt": h.startedAt.Format(time.RFC3339),
		"uptime":    time.Since(h.startedAt).Round(time.Second).String(),
	})
}
