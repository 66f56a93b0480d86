package service

import (
	"testing"

	"github.com/giftify-next/internal/constants"
)

func TestUpdateDashboardSettingNormalized(t *testing.T) {
	repo := newMockSettingRepo()
	svc := NewSettingService(repo)

	input := map[string]interface{}{
		"alert": map[string]interface{}{
			"stale_pending_hours_threshold": 9999,
			"stale_pending_threshold":       -2,
			"pending_requests_threshold":    "200001",
			"rejected_requests_threshold":   0,
		},
		"ranking": map[string]interface{}{
			"top_creators_limit":   999,
			"top_categories_limit": -1,
		},
	}

	result, err := svc.Update(constants.SettingKeyDashboardConfig, input)
	if err != nil {
		t.Fatalf("update dashboard config failed: %v", err)
	}

	alert, ok := result["alert"].(map[string]interface{})
	if !ok {
		t.Fatalf("invalid alert payload type: %T", result["alert"])
	}
	ranking, ok := result["ranking"].(map[string]interface{})
	if !ok {
		t.Fatalf("invalid ranking payload type: %T", result["ranking"])
	}

	assertSettingIntValue(t, alert, "stale_pending_hours_threshold", 48)
	assertSettingIntValue(t, alert, "stale_pending_threshold", 1)
	assertSettingIntValue(t, alert, "pending_requests_threshold", 20)
	assertSettingIntValue(t, alert, "rejected_requests_threshold", 10)
	assertSettingIntValue(t, ranking, "top_creators_limit", 5)
	assertSettingIntValue(t, ranking, "top_categories_limit", 5)
}

func TestUpdateDashboardSettingFallbackWhenMissing(t *testing.T) {
	repo := newMockSettingRepo()
	svc := NewSettingService(repo)

	result, err := svc.Update(constants.SettingKeyDashboardConfig, map[string]interface{}{})
	if err != nil {
		t.Fatalf("update dashboard config failed: %v", err)
	}

	alert, ok := result["alert"].(map[string]interface{})
	if !ok {
		t.Fatalf("invalid alert payload type: %T", result["alert"])
	}
	ranking, ok := result["ranking"].(map[string]interface{})
	if !ok {
		t.Fatalf("invalid ranking payload type: %T", result["ranking"])
	}

	assertSettingIntValue(t, alert, "stale_pending_hours_threshold", 48)
	assertSettingIntValue(t, alert, "stale_pending_threshold", 1)
	assertSettingIntValue(t, alert, "pending_requests_threshold", 20)
	assertSettingIntValue(t, alert, "rejected_requests_threshold", 10)
	assertSettingIntValue(t, ranking, "top_creators_limit", 5)
	assertSettingIntValue(t, ranking, "top_categories_limit", 5)
}

func assertSettingIntValue(t *testing.T, data map[string]interface{}, key string, expected int) {
	t.Helper()
	value, exists := data[key]
	if !exists {
		t.Fatalf("missing key %s", key)
	}
	parsed, err := parseSettingInt(value)
	if err != nil {
		t.Fatalf("parse key %s failed: %v", key, err)
	}
	if parsed != expected {
		t.Fatalf("unexpected value for %s, expected %d got %d", key, expected, parsed)
	}
}
