package service

import (
	"context"
	"errors"
	"testing"

	"agentmarket/config"
	"agentmarket/internal/core"
	"agentmarket/internal/dto"
	cErr "agentmarket/internal/pkg/error"
	"agentmarket/internal/search"
	"agentmarket/internal/telemetry"
	"agentmarket/internal/testutil"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// harness 共用同一組 fake store 與索引
type harness struct {
	conf      *config.Configuration
	providers *testutil.ProviderStore
	listings  *testutil.ListingStore
	usage     *testutil.UsageStore
	embedder  *testutil.Embedder
	cache     *testutil.Cache
	logs      *testutil.UsageLogger
	index     *search.Index

	providerService *ProviderService
	listingService  *ListingService
	searchService   *SearchService
	usageService    *UsageService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := zap.NewNop()
	trace := telemetry.NewNoopTrace()
	metric := telemetry.NewMetric(nil)

	h := &harness{
		conf:      testutil.Config(),
		providers: testutil.NewProviderStore(),
		listings:  testutil.NewListingStore(),
		usage:     &testutil.UsageStore{},
		embedder:  testutil.NewEmbedder(),
		cache:     testutil.NewCache(),
		logs:      &testutil.UsageLogger{},
		index:     search.NewIndex(),
	}
	h.providerService = NewProviderService(logger, trace, h.conf, h.providers)
	h.listingService = NewListingService(logger, trace, metric, h.listings, h.embedder, h.index)
	h.searchService = NewSearchService(logger, trace, metric, h.conf, h.listings, h.cache, h.embedder, h.index)
	h.usageService = NewUsageService(logger, trace, metric, h.conf, h.listings, h.usage, h.logs)
	return h
}

func (h *harness) register(t *testing.T, name, email string) primitive.ObjectID {
	t.Helper()
	provider, err := h.providerService.Register(context.Background(), &dto.RegisterProviderDto{
		Name:     name,
		Email:    email,
		Password: "correct-horse",
	})
	require.NoError(t, err)
	id, err := primitive.ObjectIDFromHex(provider.ID)
	require.NoError(t, err)
	return id
}

func (h *harness) createListing(t *testing.T, owner primitive.ObjectID, name, description string) *dto.ListingResponseDto {
	t.Helper()
	listing, err := h.listingService.Create(context.Background(), owner, newListingInput(name, description))
	require.NoError(t, err)
	return listing
}

func newListingInput(name, description string) *dto.CreateListingDto {
	return &dto.CreateListingDto{
		Name:        name,
		Description: description,
		Categories:  []string{"utilities"},
		API: dto.ListingAPIDto{
			Endpoint: "https://api.example.com/v1/run",
			Method:   core.MethodGet,
		},
	}
}

func mustObjectID(t *testing.T, hex string) primitive.ObjectID {
	t.Helper()
	id, err := primitive.ObjectIDFromHex(hex)
	require.NoError(t, err)
	return id
}

// requireAppError 檢查錯誤為指定 http/錯誤碼的 *cErr.Error
func requireAppError(t *testing.T, err error, httpCode, errorCode int) {
	t.Helper()
	require.Error(t, err)
	var appErr *cErr.Error
	require.True(t, errors.As(err, &appErr), "expected *cErr.Error, got %T: %v", err, err)
	require.Equal(t, httpCode, appErr.HttpCode())
	require.Equal(t, errorCode, appErr.ErrorCode())
}
