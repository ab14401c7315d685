package handler

import (
	"agentmarket/internal/dto"
	"agentmarket/internal/pkg/response"
	"agentmarket/internal/service"
	"agentmarket/internal/telemetry"
	"agentmarket/utils/validate"

	"github.com/gin-gonic/gin"
)

type SearchHandler struct {
	trace         *telemetry.Trace
	searchService *service.SearchService
}

func NewSearchHandler(trace *telemetry.Trace, searchService *service.SearchService) *SearchHandler {
	return &SearchHandler{trace: trace, searchService: searchService}
}

// Search 語意搜尋
// @Summary 以自然語言搜尋 listing
// @Tags Search
// @Produce json
// @Param query query string true "搜尋字串（至少 3 個字元）"
// @Param limit query int false "最多回傳筆數"
// @Success 200 {object} dto.SearchResponseDto
// @Failure 400 {object} response.Response
// @Failure 429 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /api/services/search [get]
func (h *SearchHandler) Search(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	var cause error
	defer func() { end(cause) }()

	var req dto.SearchQueryDto
	if bindErr, respErr := validate.BindQuery(c, &req); bindErr != nil {
		cause = bindErr
		response.AbortWithError(c, respErr)
		return
	}

	result, err := h.searchService.Search(ctx, req.Query, req.Limit)
	if err != nil {
		cause = err
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, result)
}
