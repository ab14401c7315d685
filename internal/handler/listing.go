package handler

import (
	"agentmarket/internal/dto"
	"agentmarket/internal/pkg/response"
	"agentmarket/internal/service"
	"agentmarket/internal/telemetry"
	"agentmarket/utils/validate"

	"github.com/gin-gonic/gin"
)

type ListingHandler struct {
	trace          *telemetry.Trace
	listingService *service.ListingService
}

func NewListingHandler(trace *telemetry.Trace, listingService *service.ListingService) *ListingHandler {
	return &ListingHandler{trace: trace, listingService: listingService}
}

// Create 上架 API
// @Summary 建立 listing
// @Description 建立時會同步產生 description 的向量；embedding 服務失敗則不會寫入
// @Tags Listing
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body dto.CreateListingDto true "listing 資訊"
// @Success 201 {object} dto.ListingResponseDto
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 422 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /api/services [post]
func (h *ListingHandler) Create(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	var cause error
	defer func() { end(cause) }()

	ownerID, err := callerID(c)
	if err != nil {
		cause = err
		response.AbortWithError(c, err)
		return
	}
	var req dto.CreateListingDto
	if bindErr, respErr := validate.BindAndValidate(c, &req); bindErr != nil {
		cause = bindErr
		response.AbortWithError(c, respErr)
		return
	}

	created, err := h.listingService.Create(ctx, ownerID, &req)
	if err != nil {
		cause = err
		response.AbortWithError(c, err)
		return
	}
	response.Create(c, created)
}

// Mine 列出自己的 listing
// @Summary 列出目前 provider 的 listing
// @Tags Listing
// @Security BearerAuth
// @Produce json
// @Param page query int false "頁碼（從 0 起算）"
// @Param size query int false "每頁筆數（最多 100）"
// @Success 200 {object} dto.ListingPageDto
// @Failure 401 {object} response.Response
// @Router /api/services/mine [get]
func (h *ListingHandler) Mine(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	var cause error
	defer func() { end(cause) }()

	ownerID, err := callerID(c)
	if err != nil {
		cause = err
		response.AbortWithError(c, err)
		return
	}
	page, size, err := validate.Pagination(c, 20, 100)
	if err != nil {
		cause = err
		response.AbortWithError(c, err)
		return
	}

	result, err := h.listingService.ListMine(ctx, ownerID, page, size)
	if err != nil {
		cause = err
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, result)
}

// Get 讀取單一 listing
// @Summary 取得 listing
// @Tags Listing
// @Produce json
// @Param serviceID path string true "Listing ID"
// @Success 200 {object} dto.ListingResponseDto
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/services/{serviceID} [get]
func (h *ListingHandler) Get(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	var cause error
	defer func() { end(cause) }()

	id, parseErr, respErr := validate.ParseObjectID(c, "serviceID")
	if parseErr != nil {
		cause = parseErr
		response.AbortWithError(c, respErr)
		return
	}

	listing, err := h.listingService.Get(ctx, id)
	if err != nil {
		cause = err
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, listing)
}

// Update 部分更新 listing
// @Summary 更新 listing
// @Description 只更新有帶的欄位；description 變更時會重新產生向量
// @Tags Listing
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param serviceID path string true "Listing ID"
// @Param body body dto.UpdateListingDto true "要更新的欄位"
// @Success 200 {object} dto.ListingResponseDto
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /api/services/{serviceID} [put]
func (h *ListingHandler) Update(c *gin.Context) {
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
	var req dto.UpdateListingDto
	if bindErr, respErr := validate.BindAndValidate(c, &req); bindErr != nil {
		cause = bindErr
		response.AbortWithError(c, respErr)
		return
	}

	updated, err := h.listingService.Update(ctx, ownerID, id, &req)
	if err != nil {
		cause = err
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, updated)
}

// Delete 下架 listing
// @Summary 刪除 listing
// @Tags Listing
// @Security BearerAuth
// @Produce json
// @Param serviceID path string true "Listing ID"
// @Success 200 {object} map[string]string
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/services/{serviceID} [delete]
func (h *ListingHandler) Delete(c *gin.Context) {
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

	if err := h.listingService.Delete(ctx, ownerID, id); err != nil {
		cause = err
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, gin.H{"id": id.Hex(), "message": "Delete Success"})
}
