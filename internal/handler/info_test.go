package handler_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionAndHeaders(t *testing.T) {
	s := newServer(t)
	w, _ := s.do(t, http.MethodGet, "/version", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1.2.3", w.Header().Get("X-App-Version"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "1.2.3", body["version"])
}

func TestRootEnvelope(t *testing.T) {
	s := newServer(t)
	w, env := s.do(t, http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "Welcome to AgentMarket API", env.Description)
	assert.JSONEq(t, `{"name":"agentmarket","docs":"/swagger/index.html"}`, string(env.Data))
}

func TestUnknownRouteAndMethod(t *testing.T) {
	s := newServer(t)
	w, _ := s.do(t, http.MethodGet, "/api/nothing-here", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = s.do(t, http.MethodPatch, "/api/services/search", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestHealthCheck(t *testing.T) {
	s := newServer(t)
	w, _ := s.do(t, http.MethodGet, "/health/readiness", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	s.health.SetReady(true)
	w, _ = s.do(t, http.MethodGet, "/health/readiness", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(t, http.MethodGet, "/health-check", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "mongodb")
}
