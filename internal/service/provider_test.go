package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"agentmarket/internal/dto"
	cErr "agentmarket/internal/pkg/error"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestProviderService_Register(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	created, err := h.providerService.Register(ctx, &dto.RegisterProviderDto{
		Name:     "Acme Labs",
		Email:    "  A@X.com ",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", created.Email)
	assert.Equal(t, "Acme Labs", created.Name)
	assert.NotEmpty(t, created.ID)

	stored, err := h.providers.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.NotEqual(t, "correct-horse", stored.PasswordHash)

	_, err = h.providerService.Register(ctx, &dto.RegisterProviderDto{
		Name:     "Someone Else",
		Email:    "a@x.com",
		Password: "another-pass",
	})
	requireAppError(t, err, http.StatusConflict, cErr.DUPLICATE_EMAIL)
}

func TestProviderService_RegisterDatabaseError(t *testing.T) {
	h := newHarness(t)
	h.providers.Err = errors.New("connection reset")

	_, err := h.providerService.Register(context.Background(), &dto.RegisterProviderDto{
		Name: "Acme", Email: "a@x.com", Password: "correct-horse",
	})
	requireAppError(t, err, http.StatusInternalServerError, cErr.DATABASE_ERROR)
}

func TestProviderService_LoginAndAuthenticate(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id := h.register(t, "Acme Labs", "a@x.com")

	tokenResp, err := h.providerService.Login(ctx, "A@x.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "bearer", tokenResp.TokenType)
	assert.Equal(t, int64(30*60), tokenResp.ExpiresIn)
	require.NotEmpty(t, tokenResp.AccessToken)

	me, err := h.providerService.Authenticate(ctx, tokenResp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, id.Hex(), me.ID)
	assert.Equal(t, "a@x.com", me.Email)
}

func TestProviderService_LoginFailures(t *testing.T) {
	h := newHarness(t)
	h.register(t, "Acme Labs", "a@x.com")

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "wrong password", email: "a@x.com", password: "wrong-horse"},
		{name: "unknown email", email: "nobody@x.com", password: "correct-horse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.providerService.Login(context.Background(), tt.email, tt.password)
			requireAppError(t, err, http.StatusUnauthorized, cErr.INVALID_CREDENTIALS)
		})
	}
}

func TestProviderService_AuthenticateRejects(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.register(t, "Acme Labs", "a@x.com")

	_, err := h.providerService.Authenticate(ctx, "not-a-jwt")
	requireAppError(t, err, http.StatusUnauthorized, cErr.INVALID_SESSION)

	// 過期 token
	h.providerService.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := h.providerService.Login(ctx, "a@x.com", "correct-horse")
	require.NoError(t, err)
	h.providerService.now = time.Now
	_, err = h.providerService.Authenticate(ctx, expired.AccessToken)
	requireAppError(t, err, http.StatusUnauthorized, cErr.INVALID_SESSION)

	// 其他金鑰簽發
	valid, err := h.providerService.Login(ctx, "a@x.com", "correct-horse")
	require.NoError(t, err)
	h.conf.Auth.JWTSecret = "rotated-secret"
	_, err = h.providerService.Authenticate(ctx, valid.AccessToken)
	requireAppError(t, err, http.StatusUnauthorized, cErr.INVALID_SESSION)
}

func TestProviderService_AuthenticateUnknownProvider(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id := h.register(t, "Acme Labs", "a@x.com")

	tokenResp, err := h.providerService.Login(ctx, "a@x.com", "correct-horse")
	require.NoError(t, err)

	h.providers.Remove(id)

	_, err = h.providerService.Authenticate(ctx, tokenResp.AccessToken)
	requireAppError(t, err, http.StatusUnauthorized, cErr.INVALID_SESSION)
}

func TestProviderService_GetByID(t *testing.T) {
	h := newHarness(t)
	id := h.register(t, "Acme Labs", "a@x.com")

	got, err := h.providerService.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Acme Labs", got.Name)

	_, err = h.providerService.GetByID(context.Background(), primitive.NewObjectID())
	requireAppError(t, err, http.StatusNotFound, cErr.NOT_FOUND)
}
