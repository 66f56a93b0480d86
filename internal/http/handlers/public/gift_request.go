package public

import (
	"strconv"
	"strings"

	"github.com/giftify-next/internal/http/response"
	"github.com/giftify-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateGiftRequestRequest 粉丝创建礼物请求
type CreateGiftRequestRequest struct {
	CreatorID   uint                         `json:"creator_id" binding:"required"`
	ItemDetails service.GiftItemDetailsInput `json:"item_details" binding:"required"`
}

// CreateGiftRequest 粉丝向创作者发起礼物请求
func (h *Handler) CreateGiftRequest(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	var req CreateGiftRequestRequest
	if !bindJSON(c, &req) {
		return
	}

	request, err := h.GiftRequestService.Create(c.Request.Context(), actor, service.CreateGiftRequestInput{
		CreatorID: req.CreatorID,
		Item:      req.ItemDetails,
	})
	if err != nil {
		respondGiftRequestCreateError(c, err)
		return
	}

	response.Success(c, service.ProjectGiftRequestForRole(request, actor.Role))
}

// ListGiftRequests 按角色列出礼物请求
func (h *Handler) ListGiftRequests(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	items, total, err := h.GiftRequestService.List(actor, service.ListGiftRequestInput{
		Status:       strings.TrimSpace(c.Query("status")),
		Search:       strings.TrimSpace(c.Query("search")),
		PendingFirst: c.DefaultQuery("pending_first", "false") == "true",
		Page:         page,
		PageSize:     pageSize,
	})
	if err != nil {
		respondGiftRequestError(c, err)
		return
	}

	response.SuccessWithPage(c, items, response.BuildPagination(page, pageSize, total))
}

// GetGiftRequest 按请求编号获取详情
func (h *Handler) GetGiftRequest(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	view, err := h.GiftRequestService.Get(actor, c.Param("request_no"))
	if err != nil {
		respondGiftRequestError(c, err)
		return
	}
	response.Success(c, view)
}

// RespondGiftRequestRequest 创作者裁决请求
type RespondGiftRequestRequest struct {
	Decision string `json:"decision" binding:"required"`
}

// RespondGiftRequest 创作者接受或拒绝礼物请求
func (h *Handler) RespondGiftRequest(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	var req RespondGiftRequestRequest
	if !bindJSON(c, &req) {
		return
	}

	request, err := h.GiftRequestService.Respond(c.Request.Context(), actor, c.Param("request_no"), req.Decision)
	if err != nil {
		respondGiftRequestError(c, err)
		return
	}
	response.Success(c, service.ProjectGiftRequestForRole(request, actor.Role))
}

// SubmitPickupAddressRequest 提交取件地址请求
// address 为空时回退粉丝默认取件地址
type SubmitPickupAddressRequest struct {
	Address      *service.PickupAddressInput `json:"address"`
	ContactPhone string                      `json:"contact_phone"`
	Instructions string                      `json:"instructions"`
}

// SubmitPickupAddress 粉丝提交取件地址
func (h *Handler) SubmitPickupAddress(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	var req SubmitPickupAddressRequest
	if !bindJSON(c, &req) {
		return
	}

	request, err := h.GiftRequestService.SubmitPickupAddress(c.Request.Context(), actor, c.Param("request_no"), service.SubmitPickupAddressInput{
		Address:      req.Address,
		ContactPhone: req.ContactPhone,
		Instructions: req.Instructions,
	})
	if err != nil {
		respondGiftRequestError(c, err)
		return
	}
	response.Success(c, service.ProjectGiftRequestForRole(request, actor.Role))
}

// UpdateGiftItemDetails 粉丝在待裁决阶段修改礼物信息
func (h *Handler) UpdateGiftItemDetails(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	var req service.GiftItemDetailsInput
	if !bindJSON(c, &req) {
		return
	}

	request, err := h.GiftRequestService.UpdateItemDetails(actor, c.Param("request_no"), req)
	if err != nil {
		respondGiftRequestError(c, err)
		return
	}
	response.Success(c, service.ProjectGiftRequestForRole(request, actor.Role))
}

// MarkGiftPickedUpRequest 取件标记请求
type MarkGiftPickedUpRequest struct {
	Weight         float64 `json:"weight"`
	TrackingNumber string  `json:"tracking_number"`
}

// MarkGiftPickedUp 物流标记已取件
func (h *Handler) MarkGiftPickedUp(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	var req MarkGiftPickedUpRequest
	if !bindJSON(c, &req) {
		return
	}

	request, err := h.GiftRequestService.MarkPickedUp(c.Request.Context(), actor, c.Param("request_no"), service.MarkPickedUpInput{
		Weight:         req.Weight,
		TrackingNumber: req.TrackingNumber,
	})
	if err != nil {
		respondGiftRequestError(c, err)
		return
	}
	response.Success(c, service.ProjectGiftRequestForRole(request, actor.Role))
}

// MarkGiftDelivered 物流标记已送达
func (h *Handler) MarkGiftDelivered(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	request, err := h.GiftRequestService.MarkDelivered(c.Request.Context(), actor, c.Param("request_no"))
	if err != nil {
		respondGiftRequestError(c, err)
		return
	}
	response.Success(c, service.ProjectGiftRequestForRole(request, actor.Role))
}
