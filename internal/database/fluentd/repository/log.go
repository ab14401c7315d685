package repository

import (
	"context"
	"encoding/json"
	"time"

	"agentmarket/config"
	"agentmarket/internal/core"
	"agentmarket/internal/database/client"
	"agentmarket/internal/database/fluentd/model"
)

// LogRepository 統一負責發送 Request/Response/UsageEvent Log 到 Fluentd
type LogRepository struct {
	fluentdClient client.FluentClient
	version       string
}

func NewLogRepository(config *config.Configuration, fluentdClient client.FluentClient) *LogRepository {
	version := "1.0.0"
	if config.App.Version != "" {
		version = config.App.Version
	}
	return &LogRepository{fluentdClient: fluentdClient, version: version}
}

func (repository *LogRepository) LogRequest(ctx context.Context, req model.RequestLog) error {
	if req.LoggedAt == "" {
		req.LoggedAt = model.Timestamp(time.Now())
	}
	if req.Version == "" {
		req.Version = repository.version
	}
	return repository.post(ctx, core.FluentdRequest, req)
}

func (repository *LogRepository) LogResponse(ctx context.Context, resp model.ResponseLog) error {
	if resp.LoggedAt == "" {
		resp.LoggedAt = model.Timestamp(time.Now())
	}
	if resp.Version == "" {
		resp.Version = repository.version
	}
	return repository.post(ctx, core.FluentdResponse, resp)
}

func (repository *LogRepository) LogUsageEvent(ctx context.Context, event model.UsageEventLog) error {
	if event.LoggedAt == "" {
		event.LoggedAt = model.Timestamp(time.Now())
	}
	if event.Version == "" {
		event.Version = repository.version
	}
	return repository.post(ctx, core.FluentdUsageEvent, event)
}

// fluent-logger 以 msgpack 編碼 map 最穩定，先轉成 map[string]any
func (repository *LogRepository) post(ctx context.Context, tag core.FluentdSubTag, record any) error {
	b, err := json.Marshal(record)
	if err != nil {
		return err
	}
	var fluentdMessage map[string]any
	if err := json.Unmarshal(b, &fluentdMessage); err != nil {
		return err
	}
	return repository.fluentdClient.Post(ctx, string(tag), fluentdMessage)
}
