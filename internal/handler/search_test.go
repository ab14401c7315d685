package handler_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"agentmarket/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchRanksByRelevance(t *testing.T) {
	s := newServer(t)
	token := s.signup(t, "Weather Co", "ops@weather.example")
	weather := s.publish(t, token, "Weather API", "weather forecast temperature rain wind")
	s.publish(t, token, "Invoice API", "create invoices and send payment reminders")

	w, env := s.do(t, http.MethodGet, "/api/services/search?query=weather+forecast&limit=1", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result dto.SearchResponseDto
	require.NoError(t, json.Unmarshal(env.Data, &result))
	require.Len(t, result.Results, 1)
	assert.Equal(t, weather.ID, result.Results[0].Listing.ID)
	assert.Equal(t, "weather forecast", result.Query)
}

func TestSearchRejectsShortQuery(t *testing.T) {
	s := newServer(t)
	w, env := s.do(t, http.MethodGet, "/api/services/search?query=ab", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotZero(t, env.Code)

	w, _ = s.do(t, http.MethodGet, "/api/services/search", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchEmptyIndex(t *testing.T) {
	s := newServer(t)
	w, env := s.do(t, http.MethodGet, "/api/services/search?query=anything", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result dto.SearchResponseDto
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Empty(t, result.Results)
}

func TestSearchEmbeddingDown(t *testing.T) {
	s := newServer(t)
	s.embedder.SetFail(true)
	w, _ := s.do(t, http.MethodGet, "/api/services/search?query=weather", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
