package public

import (
	"time"

	"github.com/giftify-next/internal/cache"
	"github.com/giftify-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

const (
	publicConfigCacheKey = "public:config"
	publicConfigCacheTTL = 60 * time.Second
)

// GetConfig 获取全局配置
func (h *Handler) GetConfig(c *gin.Context) {
	// 默认配置
	defaults := map[string]interface{}{
		"site_name": "Giftify",
		"languages": []string{"en-US"},
		"scripts":   make([]interface{}, 0),
	}

	var cached map[string]interface{}
	if hit, err := cache.GetJSON(c.Request.Context(), publicConfigCacheKey, &cached); err == nil && hit {
		response.Success(c, cached)
		return
	}

	data, err := h.SettingService.GetConfig(defaults)
	if err != nil {
		respondError(c, response.CodeInternal, "config fetch failed", err)
		return
	}

	gifting, err := h.SettingService.GetGiftingGlobalSetting()
	if err != nil {
		respondError(c, response.CodeInternal, "config fetch failed", err)
		return
	}
	data["gifting"] = map[string]interface{}{
		"pickups_paused":    gifting.PickupsPaused,
		"max_gifts_per_fan": gifting.MaxGiftsPerFan,
	}

	logistics, err := h.SettingService.GetLogisticsSetting()
	if err != nil {
		respondError(c, response.CodeInternal, "config fetch failed", err)
		return
	}
	data["logistics"] = map[string]interface{}{
		"pickup_window":    logistics.PickupWindow,
		"prohibited_items": logistics.ProhibitedItems,
	}

	if h.CaptchaService != nil {
		publicCaptcha, captchaErr := h.CaptchaService.GetPublicSetting()
		if captchaErr != nil {
			respondError(c, response.CodeInternal, "config fetch failed", captchaErr)
			return
		}
		data["captcha"] = publicCaptcha
	}

	_ = cache.SetJSON(c.Request.Context(), publicConfigCacheKey, data, publicConfigCacheTTL)
	response.Success(c, data)
}
