package handler_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"agentmarket/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsageRecordAndList(t *testing.T) {
	s := newServer(t)
	token := s.signup(t, "Weather Co", "ops@weather.example")
	listing := s.publish(t, token, "Weather API", "Current weather and forecast for any city")

	w, env := s.do(t, http.MethodPost, "/api/services/"+listing.ID+"/usage", "", dto.RecordUsageDto{AgentID: "agent-7"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var event dto.UsageEventResponseDto
	require.NoError(t, json.Unmarshal(env.Data, &event))
	assert.Equal(t, "agent-7", event.AgentID)
	assert.Equal(t, listing.ID, event.ListingID)

	// body 可省略
	w, env = s.do(t, http.MethodPost, "/api/services/"+listing.ID+"/usage", "", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, &event))
	assert.Equal(t, "anonymous", event.AgentID)
	assert.Equal(t, 2, s.usage.Count())

	w, env = s.do(t, http.MethodGet, "/api/services/"+listing.ID+"/usage", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var page dto.UsageEventPageDto
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, int64(2), page.Total)
}

func TestUsageRecordMissingListing(t *testing.T) {
	s := newServer(t)
	w, _ := s.do(t, http.MethodPost, "/api/services/64b7f0000000000000000000/usage", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Zero(t, s.usage.Count())
}
