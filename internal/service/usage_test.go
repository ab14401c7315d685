package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"agentmarket/internal/core"
	"agentmarket/internal/dto"
	cErr "agentmarket/internal/pkg/error"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUsageService_Record(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	h.usageService.now = func() time.Time { return fixed }

	owner := h.register(t, "Acme Labs", "a@x.com")
	listing := h.createListing(t, owner, "Weather API", "Get current weather and forecast by city name")
	id := mustObjectID(t, listing.ID)

	event, err := h.usageService.Record(ctx, id, &dto.RecordUsageDto{
		AgentID:  " agent-7 ",
		Metadata: map[string]any{"latencyMs": 120},
	}, UsageContext{RequestID: "req-1", ClientIP: "10.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, listing.ID, event.ListingID)
	assert.Equal(t, "agent-7", event.AgentID)
	assert.Equal(t, fixed, event.CreatedAt)

	stored, err := h.listings.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.UsageCount)
	require.NotNil(t, stored.LastUsedAt)
	assert.Equal(t, fixed, *stored.LastUsedAt)

	require.Len(t, h.usage.Events, 1)
	assert.Equal(t, hashIP("10.0.0.1"), h.usage.Events[0].ClientIPHash)
	assert.NotContains(t, h.usage.Events[0].ClientIPHash, "10.0.0.1")

	require.Len(t, h.logs.Events, 1)
	logged := h.logs.Events[0]
	assert.Equal(t, "req-1", logged.RequestID)
	assert.Equal(t, owner.Hex(), logged.ProviderID)
	assert.Equal(t, event.ID, logged.EventID)
	assert.Equal(t, h.conf.App.Name, logged.ProjectName)
}

func TestUsageService_RecordDefaultsAgent(t *testing.T) {
	h := newHarness(t)
	owner := h.register(t, "Acme Labs", "a@x.com")
	listing := h.createListing(t, owner, "Weather API", "Get current weather and forecast by city name")

	for _, input := range []*dto.RecordUsageDto{nil, {}, {AgentID: "   "}} {
		event, err := h.usageService.Record(context.Background(), mustObjectID(t, listing.ID), input, UsageContext{})
		require.NoError(t, err)
		assert.Equal(t, core.AnonymousAgent, event.AgentID)
	}
	assert.Equal(t, 3, h.usage.Count())
	assert.Empty(t, h.usage.Events[0].ClientIPHash)
}

func TestUsageService_RecordMissingListing(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.register(t, "Acme Labs", "a@x.com")
	listing := h.createListing(t, owner, "Weather API", "Get current weather and forecast by city name")
	id := mustObjectID(t, listing.ID)

	require.NoError(t, h.listingService.Delete(ctx, owner, id))

	_, err := h.usageService.Record(ctx, id, &dto.RecordUsageDto{}, UsageContext{})
	requireAppError(t, err, http.StatusNotFound, cErr.NOT_FOUND)

	_, err = h.usageService.Record(ctx, primitive.NewObjectID(), nil, UsageContext{})
	requireAppError(t, err, http.StatusNotFound, cErr.NOT_FOUND)
	assert.Zero(t, h.usage.Count())
	assert.Empty(t, h.logs.Events)
}

func TestUsageService_RecordIgnoresLogForwardingFailure(t *testing.T) {
	h := newHarness(t)
	owner := h.register(t, "Acme Labs", "a@x.com")
	listing := h.createListing(t, owner, "Weather API", "Get current weather and forecast by city name")
	h.logs.Err = errors.New("fluentd unreachable")

	_, err := h.usageService.Record(context.Background(), mustObjectID(t, listing.ID), nil, UsageContext{})
	require.NoError(t, err)
	assert.Equal(t, 1, h.usage.Count())
}

func TestUsageService_RecordStoreFailure(t *testing.T) {
	h := newHarness(t)
	owner := h.register(t, "Acme Labs", "a@x.com")
	listing := h.createListing(t, owner, "Weather API", "Get current weather and forecast by city name")
	h.usage.Err = errors.New("write concern")

	_, err := h.usageService.Record(context.Background(), mustObjectID(t, listing.ID), nil, UsageContext{})
	requireAppError(t, err, http.StatusInternalServerError, cErr.DATABASE_ERROR)

	stored, err := h.listings.GetByID(context.Background(), mustObjectID(t, listing.ID))
	require.NoError(t, err)
	assert.Zero(t, stored.UsageCount)
}

func TestUsageService_ListForListing(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.register(t, "Acme Labs", "a@x.com")
	other := h.register(t, "Other Co", "b@x.com")
	listing := h.createListing(t, owner, "Weather API", "Get current weather and forecast by city name")
	id := mustObjectID(t, listing.ID)

	for _, agent := range []string{"first", "second", "third"} {
		_, err := h.usageService.Record(ctx, id, &dto.RecordUsageDto{AgentID: agent}, UsageContext{})
		require.NoError(t, err)
	}

	page, err := h.usageService.ListForListing(ctx, owner, id, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "third", page.Items[0].AgentID)
	assert.Equal(t, "second", page.Items[1].AgentID)

	_, err = h.usageService.ListForListing(ctx, other, id, 0, 2)
	requireAppError(t, err, http.StatusForbidden, cErr.FORBIDDEN)

	_, err = h.usageService.ListForListing(ctx, owner, primitive.NewObjectID(), 0, 2)
	requireAppError(t, err, http.StatusNotFound, cErr.NOT_FOUND)
}
