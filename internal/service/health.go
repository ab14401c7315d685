package service

import (
	"context"
	"sync/atomic"
	"time"

	client "agentmarket/internal/database/client"
)

// HealthCheck readiness 依賴檢查
type HealthCheck func(ctx context.Context) error

type HealthService struct {
	live   atomic.Bool
	ready  atomic.Bool
	checks map[string]HealthCheck
}

func NewHealthService(mongoClient *client.MongoClient, redisClient *client.RedisClient) *HealthService {
	return NewHealthServiceWithChecks(map[string]HealthCheck{
		"mongodb": mongoClient.Ping,
		"redis": func(ctx context.Context) error {
			return redisClient.Client().Ping(ctx).Err()
		},
	})
}

func NewHealthServiceWithChecks(checks map[string]HealthCheck) *HealthService {
	s := &HealthService{checks: checks}
	s.live.Store(true)
	s.ready.Store(false) // 啟動完成後再打開
	return s
}

func (s *HealthService) SetReady(v bool) {
	s.ready.Store(v)
}

func (s *HealthService) IsLive() bool {
	return s.live.Load()
}

func (s *HealthService) IsReady() bool {
	return s.ready.Load()
}

// Check 逐一執行依賴檢查，回傳每項狀態與整體結果
func (s *HealthService) Check(ctx context.Context) (map[string]string, bool) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	status := make(map[string]string, len(s.checks))
	healthy := s.IsReady()
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			status[name] = err.Error()
			healthy = false
			continue
		}
		status[name] = "ok"
	}
	return status, healthy
}
