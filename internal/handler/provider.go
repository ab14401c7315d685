package handler

import (
	"agentmarket/internal/dto"
	cErr "agentmarket/internal/pkg/error"
	"agentmarket/internal/pkg/response"
	"agentmarket/internal/service"
	"agentmarket/internal/telemetry"
	"agentmarket/utils/validate"

	"github.com/gin-gonic/gin"
)

type ProviderHandler struct {
	trace           *telemetry.Trace
	providerService *service.ProviderService
}

func NewProviderHandler(trace *telemetry.Trace, providerService *service.ProviderService) *ProviderHandler {
	return &ProviderHandler{trace: trace, providerService: providerService}
}

// Register 註冊 provider
// @Summary 註冊 provider 帳號
// @Tags Provider
// @Accept json
// @Produce json
// @Param body body dto.RegisterProviderDto true "provider 資訊"
// @Success 201 {object} dto.ProviderResponseDto
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/providers/register [post]
func (h *ProviderHandler) Register(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	var cause error
	defer func() { end(cause) }()

	var req dto.RegisterProviderDto
	if bindErr, respErr := validate.BindAndValidate(c, &req); bindErr != nil {
		cause = bindErr
		response.AbortWithError(c, respErr)
		return
	}

	created, err := h.providerService.Register(ctx, &req)
	if err != nil {
		cause = err
		response.AbortWithError(c, err)
		return
	}
	response.Create(c, created)
}

// Token 以 email/password 換取 access token
// @Summary 取得 access token
// @Description 支援 JSON {email,password} 或 OAuth2 password form（username/password）
// @Tags Provider
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param body body dto.LoginDto true "登入資訊"
// @Success 200 {object} dto.TokenResponseDto
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /api/providers/token [post]
func (h *ProviderHandler) Token(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	var cause error
	defer func() { end(cause) }()

	var req dto.LoginDto
	if bindErr, respErr := validate.Bind(c, &req); bindErr != nil {
		cause = bindErr
		response.AbortWithError(c, respErr)
		return
	}
	if req.Identifier() == "" {
		cause = cErr.ValidateErr("email is required")
		response.AbortWithError(c, cause)
		return
	}

	token, err := h.providerService.Login(ctx, req.Identifier(), req.Password)
	if err != nil {
		cause = err
		c.Header("WWW-Authenticate", "Bearer")
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, token)
}

// Me 目前登入的 provider
// @Summary 取得目前登入的 provider
// @Tags Provider
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.ProviderResponseDto
// @Failure 401 {object} response.Response
// @Router /api/providers/me [get]
func (h *ProviderHandler) Me(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	var cause error
	defer func() { end(cause) }()

	providerID, err := callerID(c)
	if err != nil {
		cause = err
		response.AbortWithError(c, err)
		return
	}
	provider, err := h.providerService.GetByID(ctx, providerID)
	if err != nil {
		cause = err
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, provider)
}
