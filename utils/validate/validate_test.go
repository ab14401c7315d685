package validate

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	cErr "agentmarket/internal/pkg/error"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingDto struct {
	Target string   `json:"target" binding:"required,url"`
	Tags   []string `json:"tags,omitempty" binding:"max=2"`
}

func newContext(method, target, body string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(method, target, strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c
}

func TestBindAndValidateDescribesFields(t *testing.T) {
	var req pingDto
	c := newContext(http.MethodPost, "/", `{"target":"not a url","tags":["a","b","c"]}`)

	cause, respErr := BindAndValidate(c, &req)
	require.Error(t, cause)
	var appErr *cErr.Error
	require.ErrorAs(t, respErr, &appErr)
	assert.Equal(t, cErr.BAD_REQUEST_BODY, appErr.ErrorCode())
	assert.Contains(t, appErr.ErrorDesc(), `Field "target" (type: string) failed the 'url' validation`)
	assert.Contains(t, appErr.ErrorDesc(), `Field "tags" (type: []string) failed the 'max' validation`)
}

func TestValidationErrorResponsePlainError(t *testing.T) {
	var req pingDto
	c := newContext(http.MethodPost, "/", `{`)
	cause, respErr := BindAndValidate(c, &req)
	require.Error(t, cause)
	assert.Contains(t, cErr.From(respErr).ErrorDesc(), "Validation error: ")
}

func TestParseObjectID(t *testing.T) {
	c := newContext(http.MethodGet, "/", "")
	c.Params = gin.Params{{Key: "serviceID", Value: "nope"}}
	_, cause, respErr := ParseObjectID(c, "serviceID")
	require.Error(t, cause)
	assert.Equal(t, cErr.BAD_REQUEST_PARAMS, cErr.From(respErr).ErrorCode())

	c.Params = gin.Params{{Key: "serviceID", Value: "65f1c0d2a1b2c3d4e5f60718"}}
	id, cause, respErr := ParseObjectID(c, "serviceID")
	require.NoError(t, cause)
	require.NoError(t, respErr)
	assert.Equal(t, "65f1c0d2a1b2c3d4e5f60718", id.Hex())
}

func TestPagination(t *testing.T) {
	c := newContext(http.MethodGet, "/?page=2&size=500", "")
	page, size, err := Pagination(c, 20, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page)
	assert.Equal(t, int64(100), size)

	c = newContext(http.MethodGet, "/?page=-1", "")
	_, _, err = Pagination(c, 20, 100)
	assert.Error(t, err)
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "dev@example.com", NormalizeEmail("  Dev@Example.COM "))
}
