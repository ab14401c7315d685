package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	cErr "agentmarket/internal/pkg/error"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func TestSuccessExtractsMessage(t *testing.T) {
	c, _ := newContext()
	Success(c, gin.H{"message": "listing updated", "id": "abc"})

	data, _ := c.Get("data")
	msg, _ := c.Get("message")
	assert.Equal(t, gin.H{"id": "abc"}, data)
	assert.Equal(t, "listing updated", msg)
	assert.True(t, c.IsAborted())
}

func TestCreateSetsStatus(t *testing.T) {
	c, _ := newContext()
	Create(c, map[string]string{"id": "abc"})

	msg, _ := c.Get("message")
	assert.Equal(t, "Create Success", msg)
	assert.Equal(t, http.StatusCreated, c.Writer.Status())
}

func TestFail(t *testing.T) {
	c, w := newContext()
	Fail(c, "req-1", cErr.NotFound("listing abc"))

	require.Equal(t, http.StatusNotFound, w.Code)
	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "req-1", body.RequestID)
	assert.Equal(t, cErr.NOT_FOUND, body.Code)
	assert.Equal(t, "not-found", body.Message)
	assert.Equal(t, "listing abc", body.Description)
}

func TestFailUnknownError(t *testing.T) {
	c, w := newContext()
	Fail(c, "req-2", errors.New("boom"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
