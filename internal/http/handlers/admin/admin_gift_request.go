package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/giftify-next/internal/constants"
	"github.com/giftify-next/internal/http/response"
	"github.com/giftify-next/internal/service"

	"github.com/gin-gonic/gin"
)

func adminActor(c *gin.Context) (service.Actor, bool) {
	id, ok := getAdminID(c)
	if !ok {
		return service.Actor{}, false
	}
	return service.Actor{ID: id, Role: constants.RoleAdmin}, true
}

// GetAdminGiftRequests 获取礼物请求列表
func (h *Handler) GetAdminGiftRequests(c *gin.Context) {
	actor, ok := adminActor(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	items, total, err := h.GiftRequestService.List(actor, service.ListGiftRequestInput{
		Status:       strings.TrimSpace(c.Query("status")),
		Search:       strings.TrimSpace(c.Query("search")),
		PendingFirst: c.DefaultQuery("pending_first", "true") == "true",
		Page:         page,
		PageSize:     pageSize,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "gift request fetch failed", err)
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, items, pagination)
}

// GetAdminGiftRequest 获取礼物请求详情
func (h *Handler) GetAdminGiftRequest(c *gin.Context) {
	actor, ok := adminActor(c)
	if !ok {
		return
	}

	view, err := h.GiftRequestService.Get(actor, c.Param("request_no"))
	if err != nil {
		if errors.Is(err, service.ErrGiftRequestNotFound) {
			respondError(c, response.CodeRecordNotFound, "gift request not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "gift request fetch failed", err)
		return
	}
	response.Success(c, view)
}

// UpdateAdminGiftRequest 管理端覆盖更新礼物请求
func (h *Handler) UpdateAdminGiftRequest(c *gin.Context) {
	actor, ok := adminActor(c)
	if !ok {
		return
	}

	var req service.AdminUpdateGiftRequestInput
	if !bindJSON(c, &req) {
		return
	}

	request, err := h.GiftRequestService.AdminUpdate(actor, c.Param("request_no"), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGiftRequestNotFound):
			respondError(c, response.CodeRecordNotFound, "gift request not found", nil)
		case errors.Is(err, service.ErrValidation):
			respondError(c, response.CodeValidationFailed, err.Error(), nil)
		default:
			respondError(c, response.CodeInternal, "gift request update failed", err)
		}
		return
	}
	response.Success(c, request)
}

// DeleteAdminGiftRequest 删除礼物请求（软删除）
func (h *Handler) DeleteAdminGiftRequest(c *gin.Context) {
	actor, ok := adminActor(c)
	if !ok {
		return
	}

	if err := h.GiftRequestService.AdminDelete(actor, c.Param("request_no")); err != nil {
		if errors.Is(err, service.ErrGiftRequestNotFound) {
			respondError(c, response.CodeRecordNotFound, "gift request not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "gift request delete failed", err)
		return
	}
	response.Success(c, nil)
}
