package service

import (
	"errors"
	"testing"
	"time"

	"github.com/giftify-next/internal/repository"
)

func TestResolveDashboardWindowDefaults(t *testing.T) {
	now := time.Date(2026, 8, 31, 15, 0, 0, 0, time.UTC)

	window, err := resolveDashboardWindow(DashboardQueryInput{Timezone: "UTC"}, now)
	if err != nil {
		t.Fatalf("resolve default window failed: %v", err)
	}
	if window.rangeKey != "7d" {
		t.Fatalf("default range want 7d got %s", window.rangeKey)
	}
	wantStart := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	if !window.startAt.Equal(wantStart) || !window.endAt.Equal(wantEnd) {
		t.Fatalf("7d window want [%v, %v) got [%v, %v)", wantStart, wantEnd, window.startAt, window.endAt)
	}

	window, err = resolveDashboardWindow(DashboardQueryInput{Range: "today", Timezone: "UTC"}, now)
	if err != nil {
		t.Fatalf("resolve today window failed: %v", err)
	}
	if !window.startAt.Equal(time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("today window start wrong: %v", window.startAt)
	}
}

func TestResolveDashboardWindowCustom(t *testing.T) {
	now := time.Date(2026, 8, 31, 15, 0, 0, 0, time.UTC)
	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)

	window, err := resolveDashboardWindow(DashboardQueryInput{
		Range:    "custom",
		From:     &from,
		To:       &to,
		Timezone: "UTC",
	}, now)
	if err != nil {
		t.Fatalf("resolve custom window failed: %v", err)
	}
	if !window.startAt.Equal(from) {
		t.Fatalf("custom window start want %v got %v", from, window.startAt)
	}

	// 缺省边界
	if _, err := resolveDashboardWindow(DashboardQueryInput{Range: "custom", From: &from}, now); !errors.Is(err, ErrDashboardRangeInvalid) {
		t.Fatalf("custom without to want range error got %v", err)
	}

	// 终点早于起点
	if _, err := resolveDashboardWindow(DashboardQueryInput{Range: "custom", From: &to, To: &from}, now); !errors.Is(err, ErrDashboardRangeInvalid) {
		t.Fatalf("inverted custom range want range error got %v", err)
	}

	// 超过最大跨度
	farTo := from.AddDate(0, 0, 120)
	if _, err := resolveDashboardWindow(DashboardQueryInput{Range: "custom", From: &from, To: &farTo}, now); !errors.Is(err, ErrDashboardRangeInvalid) {
		t.Fatalf("oversized custom range want range error got %v", err)
	}

	if _, err := resolveDashboardWindow(DashboardQueryInput{Range: "quarter"}, now); !errors.Is(err, ErrDashboardRangeInvalid) {
		t.Fatalf("unknown range want range error got %v", err)
	}
}

func TestBuildDashboardAlerts(t *testing.T) {
	setting := DashboardAlertSetting{
		StalePendingHoursThreshold: 48,
		StalePendingThreshold:      1,
		PendingRequestsThreshold:   20,
		RejectedRequestsThreshold:  10,
	}

	alerts := buildDashboardAlerts(
		repository.DashboardOverviewRow{RejectedRequests: 12},
		repository.DashboardBacklogStatsRow{
			PendingRequests:      25,
			StalePendingRequests: 3,
			AwaitingPickup:       2,
		},
		setting,
	)
	if len(alerts) != 4 {
		t.Fatalf("want 4 alerts got %d: %+v", len(alerts), alerts)
	}
	if alerts[0].Type != "stale_pending_requests" || alerts[0].Level != "error" {
		t.Fatalf("first alert want stale_pending_requests/error got %+v", alerts[0])
	}

	alerts = buildDashboardAlerts(
		repository.DashboardOverviewRow{},
		repository.DashboardBacklogStatsRow{},
		setting,
	)
	if len(alerts) != 0 {
		t.Fatalf("quiet system want no alerts got %+v", alerts)
	}
}

func TestDashboardRateFormatting(t *testing.T) {
	if got := formatMoneyValue(12.5); got != "12.50" {
		t.Fatalf("money format want 12.50 got %s", got)
	}
	if got := formatPercentValue(66.6666); got != "66.67" {
		t.Fatalf("percent format want 66.67 got %s", got)
	}
}
