package handler

import (
	"net/http"

	"agentmarket/internal/core"
	"agentmarket/internal/dto"
	"agentmarket/internal/pkg/response"
	"agentmarket/internal/service"
	"agentmarket/internal/telemetry"
	"agentmarket/utils/validate"

	"github.com/gin-gonic/gin"
)

type UsageHandler struct {
	trace        *telemetry.Trace
	usageService *service.UsageService
}

func NewUsageHandler(trace *telemetry.Trace, usageService *service.UsageService) *UsageHandler {
	return &UsageHandler{trace: trace, usageService: usageService}
}

// Record 回報一次使用
// @Summary 記錄 listing 被呼叫一次
// @Description body 可省略；未帶 agentID 時記為 anonymous
// @Tags Usage
// @Accept json
// @Produce json
// @Param serviceID path string true "Listing ID"
// @Param body body dto.RecordUsageDto false "呼叫端資訊"
// @Success 201 {object} dto.UsageEventResponseDto
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/services/{serviceID}/usage [post]
func (h *UsageHandler) Record(c *gin.Context) {
	ctx, span, end := h.trace.WithSpan(c)
	var cause error
	defer func() { end(cause) }()

	id, parseErr, respErr := validate.ParseObjectID(c, "serviceID")
	if parseErr != nil {
		cause = parseErr
		response.AbortWithError(c, respErr)
		return
	}
	var req dto.RecordUsageDto
	if c.Request.ContentLength != 0 && c.Request.Body != http.NoBody {
		if bindErr, respErr := validate.BindAndValidate(c, &req); bindErr != nil {
			cause = bindErr
			response.AbortWithError(c, respErr)
			return
		}
	}

	requestID := c.GetString(core.ContextRequestID)
	if requestID == "" {
		requestID = span.SpanContext().TraceID().String()
	}
	event, err := h.usageService.Record(ctx, id, &req, service.UsageContext{
		RequestID: requestID,
		ClientIP:  c.ClientIP(),
	})
	if err != nil {
		cause = err
		response.AbortWithError(c, err)
		return
	}
	response.Create(c, event)
}

// List 查看 listing 的使用紀錄
// @Summary 列出 listing 的使用紀錄（僅擁有者）
// @Tags Usage
// @Security BearerAuth
// @Produce json
// @Param serviceID path string true "Listing ID"
// @Param page query int false "頁碼（從 0 起算）"
// @Param size query int false "每頁筆數（最多 100）"
// @Success 200 {object} dto.UsageEventPageDto
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/services/{serviceID}/usage [get]
func (h *UsageHandler) List(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	var cause error
	defer func() { end(cause) }()

	ownerID, err := callerID(c)
	if err != nil {
		cause = err
		response.AbortWithError(c, err)
		return
	}
	id, parseErr, respErr := validate.ParseObjectID(c, "serviceID")
	if parseErr != nil {
		cause = parseErr
		response.AbortWithError(c, respErr)
		return
	}
	page, size, err := validate.Pagination(c, 20, 100)
	if err != nil {
		cause = err
		response.AbortWithError(c, err)
		return
	}

	result, err := h.usageService.ListForListing(ctx, ownerID, id, page, size)
	if err != nil {
		cause = err
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, result)
}
