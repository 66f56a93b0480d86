package service

import (
	"github.com/giftify-next/internal/constants"
)

// PolicyContext 安全策略判定所需的上下文
// 由调用方提前装配，CanSend 本身不做任何 IO
type PolicyContext struct {
	Global         GiftingGlobalSetting
	Override       CreatorOverride
	DailySentCount int64
}

// PolicyDecision 安全策略判定结果
type PolicyDecision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// CanSend 判断粉丝当前能否向创作者发起礼物请求
// 拒绝原因按固定优先级返回：全局暂停 > 创作者关闭 > 每日上限
func CanSend(ctx PolicyContext) PolicyDecision {
	if ctx.Global.PickupsPaused {
		return PolicyDecision{Allowed: false, Reason: constants.DenyReasonPickupsPaused}
	}
	if ctx.Override.DisableGifting {
		return PolicyDecision{Allowed: false, Reason: constants.DenyReasonGiftingDisabled}
	}
	if ctx.DailySentCount >= int64(ctx.Global.MaxGiftsPerFan) {
		return PolicyDecision{Allowed: false, Reason: constants.DenyReasonDailyLimit}
	}
	return PolicyDecision{Allowed: true}
}
