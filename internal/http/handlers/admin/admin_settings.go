package admin

import (
	"errors"
	"strconv"

	"github.com/giftify-next/internal/cache"
	"github.com/giftify-next/internal/http/response"
	"github.com/giftify-next/internal/service"

	"github.com/gin-gonic/gin"
)

// GetGiftingSettings 获取礼物策略配置
func (h *Handler) GetGiftingSettings(c *gin.Context) {
	setting, err := h.SettingService.GetGiftingGlobalSetting()
	if err != nil {
		respondError(c, response.CodeInternal, "settings fetch failed", err)
		return
	}
	response.Success(c, setting)
}

// UpdateGiftingSettings 更新礼物策略配置
func (h *Handler) UpdateGiftingSettings(c *gin.Context) {
	var req service.GiftingGlobalSetting
	if !bindJSON(c, &req) {
		return
	}

	setting, err := h.SettingService.UpdateGiftingGlobalSetting(req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGiftingConfigInvalid):
			respondError(c, response.CodeBadRequest, err.Error(), nil)
		default:
			respondError(c, response.CodeInternal, "settings save failed", err)
		}
		return
	}

	_ = cache.Del(c.Request.Context(), publicConfigCacheKey)
	response.Success(c, setting)
}

// GetCreatorOverrides 获取创作者策略覆盖列表
func (h *Handler) GetCreatorOverrides(c *gin.Context) {
	overrides, err := h.SettingService.GetCreatorOverrides()
	if err != nil {
		respondError(c, response.CodeInternal, "settings fetch failed", err)
		return
	}

	items := make([]gin.H, 0, len(overrides))
	for creatorID, override := range overrides {
		items = append(items, gin.H{
			"creator_id":      creatorID,
			"force_approval":  override.ForceApproval,
			"disable_gifting": override.DisableGifting,
		})
	}
	response.Success(c, items)
}

// UpsertCreatorOverrideRequest 创作者策略覆盖请求
type UpsertCreatorOverrideRequest struct {
	ForceApproval  bool `json:"force_approval"`
	DisableGifting bool `json:"disable_gifting"`
}

// UpsertCreatorOverride 写入创作者策略覆盖
func (h *Handler) UpsertCreatorOverride(c *gin.Context) {
	creatorID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || creatorID == 0 {
		respondError(c, response.CodeBadRequest, "creator id invalid", nil)
		return
	}

	var req UpsertCreatorOverrideRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.SettingService.UpsertCreatorOverride(uint(creatorID), service.CreatorOverride{
		ForceApproval:  req.ForceApproval,
		DisableGifting: req.DisableGifting,
	}); err != nil {
		respondError(c, response.CodeInternal, "settings save failed", err)
		return
	}
	response.Success(c, gin.H{
		"creator_id":      uint(creatorID),
		"force_approval":  req.ForceApproval,
		"disable_gifting": req.DisableGifting,
	})
}

// DeleteCreatorOverride 删除创作者策略覆盖
func (h *Handler) DeleteCreatorOverride(c *gin.Context) {
	creatorID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || creatorID == 0 {
		respondError(c, response.CodeBadRequest, "creator id invalid", nil)
		return
	}

	if err := h.SettingService.DeleteCreatorOverride(uint(creatorID)); err != nil {
		respondError(c, response.CodeInternal, "settings save failed", err)
		return
	}
	response.Success(c, nil)
}

// GetLogisticsSettings 获取物流中心配置
func (h *Handler) GetLogisticsSettings(c *gin.Context) {
	setting, err := h.SettingService.GetLogisticsSetting()
	if err != nil {
		respondError(c, response.CodeInternal, "settings fetch failed", err)
		return
	}
	response.Success(c, setting)
}

// UpdateLogisticsSettings 更新物流中心配置
func (h *Handler) UpdateLogisticsSettings(c *gin.Context) {
	var req service.LogisticsSetting
	if !bindJSON(c, &req) {
		return
	}

	setting, err := h.SettingService.UpdateLogisticsSetting(req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLogisticsConfigInvalid):
			respondError(c, response.CodeBadRequest, err.Error(), nil)
		default:
			respondError(c, response.CodeInternal, "settings save failed", err)
		}
		return
	}

	_ = cache.Del(c.Request.Context(), publicConfigCacheKey)
	response.Success(c, setting)
}
