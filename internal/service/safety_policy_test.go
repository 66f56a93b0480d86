package service

import (
	"testing"

	"github.com/giftify-next/internal/constants"
)

func TestCanSendAllowedByDefault(t *testing.T) {
	decision := CanSend(PolicyContext{Global: GiftingDefaultSetting()})
	if !decision.Allowed {
		t.Fatalf("expected allowed, got reason %q", decision.Reason)
	}
	if decision.Reason != "" {
		t.Fatalf("expected empty reason, got %q", decision.Reason)
	}
}

func TestCanSendDenyPrecedence(t *testing.T) {
	// 三个拒绝条件同时满足时，全局暂停优先
	ctx := PolicyContext{
		Global: GiftingGlobalSetting{
			PickupsPaused:  true,
			MaxGiftsPerFan: 1,
		},
		Override:       CreatorOverride{DisableGifting: true},
		DailySentCount: 5,
	}
	decision := CanSend(ctx)
	if decision.Allowed || decision.Reason != constants.DenyReasonPickupsPaused {
		t.Fatalf("expected pickups_paused, got allowed=%v reason=%q", decision.Allowed, decision.Reason)
	}

	ctx.Global.PickupsPaused = false
	decision = CanSend(ctx)
	if decision.Allowed || decision.Reason != constants.DenyReasonGiftingDisabled {
		t.Fatalf("expected creator_gifting_disabled, got allowed=%v reason=%q", decision.Allowed, decision.Reason)
	}

	ctx.Override.DisableGifting = false
	decision = CanSend(ctx)
	if decision.Allowed || decision.Reason != constants.DenyReasonDailyLimit {
		t.Fatalf("expected daily_limit_reached, got allowed=%v reason=%q", decision.Allowed, decision.Reason)
	}
}

func TestCanSendDailyLimitBoundary(t *testing.T) {
	ctx := PolicyContext{
		Global:         GiftingGlobalSetting{MaxGiftsPerFan: 3},
		DailySentCount: 2,
	}
	if decision := CanSend(ctx); !decision.Allowed {
		t.Fatalf("count below limit must pass, got reason %q", decision.Reason)
	}

	ctx.DailySentCount = 3
	if decision := CanSend(ctx); decision.Allowed {
		t.Fatal("count at limit must deny")
	}
}

func TestCanSendForceApprovalDoesNotBlock(t *testing.T) {
	// 强制审批只影响审批路径，不拦截发送
	ctx := PolicyContext{
		Global:   GiftingGlobalSetting{ForceApproval: true, MaxGiftsPerFan: 10},
		Override: CreatorOverride{ForceApproval: true},
	}
	if decision := CanSend(ctx); !decision.Allowed {
		t.Fatalf("force approval must not deny, got reason %q", decision.Reason)
	}
}
