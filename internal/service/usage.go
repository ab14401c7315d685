package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"agentmarket/config"
	"agentmarket/internal/core"
	fluentdModel "agentmarket/internal/database/fluentd/model"
	"agentmarket/internal/database/mongodb/model"
	"agentmarket/internal/dto"
	cErr "agentmarket/internal/pkg/error"
	"agentmarket/internal/telemetry"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type UsageService struct {
	logger      *zap.Logger
	trace       *telemetry.Trace
	metric      *telemetry.Metric
	config      *config.Configuration
	listingRepo ListingStore
	usageRepo   UsageEventStore
	usageLogger UsageLogger
	now         func() time.Time
}

func NewUsageService(
	logger *zap.Logger,
	trace *telemetry.Trace,
	metric *telemetry.Metric,
	config *config.Configuration,
	listingRepo ListingStore,
	usageRepo UsageEventStore,
	usageLogger UsageLogger,
) *UsageService {
	return &UsageService{
		logger:      logger,
		trace:       trace,
		metric:      metric,
		config:      config,
		listingRepo: listingRepo,
		usageRepo:   usageRepo,
		usageLogger: usageLogger,
		now:         time.Now,
	}
}

// UsageContext 請求端資訊（不做驗證）
type UsageContext struct {
	RequestID string
	ClientIP  string
}

// Record 只要 listing 存在就新增一筆；不去重、不限流
func (s *UsageService) Record(ctx context.Context, listingID primitive.ObjectID, input *dto.RecordUsageDto, meta UsageContext) (_ *dto.UsageEventResponseDto, returnedError error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	listing, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, mapListingLookupError(err)
	}

	agentID := core.AnonymousAgent
	if input != nil && strings.TrimSpace(input.AgentID) != "" {
		agentID = strings.TrimSpace(input.AgentID)
	}
	var metadata map[string]any
	if input != nil {
		metadata = input.Metadata
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	event, err := s.usageRepo.Create(ctx, &model.UsageEvent{
		ID:           primitive.NewObjectID(),
		ListingID:    listing.ID,
		AgentID:      agentID,
		Metadata:     metadata,
		ClientIPHash: hashIP(meta.ClientIP),
		CreatedAt:    now,
	})
	if err != nil {
		return nil, cErr.DatabaseError("database CreateUsageEvent error")
	}
	if _, err := s.listingRepo.IncrementUsage(ctx, listing.ID, now); err != nil {
		s.logger.Error("increment usage count failed", zap.String("listingID", listing.ID.Hex()), zap.Error(err))
	}
	s.metric.IncUsageEvent()
	s.trace.ApplyTraceAttributes(span, core.TraceUsageMeta{
		ListingID: listing.ID.Hex(),
		AgentID:   agentID,
		EventID:   event.ID.Hex(),
	})

	if err := s.usageLogger.LogUsageEvent(ctx, fluentdModel.UsageEventLog{
		RequestID:   meta.RequestID,
		EventID:     event.ID.Hex(),
		ListingID:   listing.ID.Hex(),
		ProviderID:  listing.ProviderID.Hex(),
		AgentID:     agentID,
		Metadata:    metadata,
		IPHash:      event.ClientIPHash,
		ProjectName: s.config.App.Name,
		EventTS:     now.Format(time.RFC3339Nano),
	}); err != nil {
		s.logger.Warn("forward usage event to fluentd failed", zap.String("eventID", event.ID.Hex()), zap.Error(err))
	}
	return modelToUsageEventResponseDto(event), nil
}

// ListForListing 只有擁有者可以查看
func (s *UsageService) ListForListing(ctx context.Context, ownerID, listingID primitive.ObjectID, page, size int64) (_ *dto.UsageEventPageDto, returnedError error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	listing, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, mapListingLookupError(err)
	}
	if listing.ProviderID != ownerID {
		return nil, cErr.Forbidden("listing belongs to another provider")
	}

	events, total, err := s.usageRepo.ListByListing(ctx, listingID, page, size)
	if err != nil {
		return nil, cErr.DatabaseError("database ListUsageEvents error")
	}
	items := make([]*dto.UsageEventResponseDto, len(events))
	for i, e := range events {
		items[i] = modelToUsageEventResponseDto(e)
	}
	return &dto.UsageEventPageDto{Items: items, Page: page, Size: size, Total: total}, nil
}

func hashIP(ip string) string {
	if ip == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(sum[:])
}

func modelToUsageEventResponseDto(event *model.UsageEvent) *dto.UsageEventResponseDto {
	return &dto.UsageEventResponseDto{
		ID:        event.ID.Hex(),
		ListingID: event.ListingID.Hex(),
		AgentID:   event.AgentID,
		Metadata:  event.Metadata,
		CreatedAt: event.CreatedAt,
	}
}
