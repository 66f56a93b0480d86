package service

import (
	"github.com/giftify-next/internal/constants"
	"github.com/giftify-next/internal/models"
)

// DashboardAlertSetting 仪表盘告警规则配置
type DashboardAlertSetting struct {
	StalePendingHoursThreshold int64 `json:"stale_pending_hours_threshold"`
	StalePendingThreshold      int64 `json:"stale_pending_threshold"`
	PendingRequestsThreshold   int64 `json:"pending_requests_threshold"`
	RejectedRequestsThreshold  int64 `json:"rejected_requests_threshold"`
}

// DashboardRankingSetting 仪表盘排行规则配置
type DashboardRankingSetting struct {
	TopCreatorsLimit   int `json:"top_creators_limit"`
	TopCategoriesLimit int `json:"top_categories_limit"`
}

// DashboardSetting 仪表盘配置
type DashboardSetting struct {
	Alert   DashboardAlertSetting   `json:"alert"`
	Ranking DashboardRankingSetting `json:"ranking"`
}

// DashboardDefaultSetting 默认仪表盘配置
func DashboardDefaultSetting() DashboardSetting {
	return NormalizeDashboardSetting(DashboardSetting{
		Alert: DashboardAlertSetting{
			StalePendingHoursThreshold: 48,
			StalePendingThreshold:      1,
			PendingRequestsThreshold:   20,
			RejectedRequestsThreshold:  10,
		},
		Ranking: DashboardRankingSetting{
			TopCreatorsLimit:   5,
			TopCategoriesLimit: 5,
		},
	})
}

// NormalizeDashboardSetting 归一化仪表盘配置，越界阈值回退默认值。
func NormalizeDashboardSetting(setting DashboardSetting) DashboardSetting {
	setting.Alert.StalePendingHoursThreshold = clampInt64Or(setting.Alert.StalePendingHoursThreshold, 1, 720, 48)
	setting.Alert.StalePendingThreshold = clampInt64Or(setting.Alert.StalePendingThreshold, 1, 10000, 1)
	setting.Alert.PendingRequestsThreshold = clampInt64Or(setting.Alert.PendingRequestsThreshold, 1, 100000, 20)
	setting.Alert.RejectedRequestsThreshold = clampInt64Or(setting.Alert.RejectedRequestsThreshold, 1, 100000, 10)

	setting.Ranking.TopCreatorsLimit = clampIntOr(setting.Ranking.TopCreatorsLimit, 1, 20, 5)
	setting.Ranking.TopCategoriesLimit = clampIntOr(setting.Ranking.TopCategoriesLimit, 1, 20, 5)

	return setting
}

// clampInt64Or 越界时回退默认值，不做截断。
func clampInt64Or(value, min, max, fallback int64) int64 {
	if value < min || value > max {
		return fallback
	}
	return value
}

func clampIntOr(value, min, max, fallback int) int {
	if value < min || value > max {
		return fallback
	}
	return value
}

// DashboardSettingToMap 将仪表盘配置转换为设置存储结构
func DashboardSettingToMap(setting DashboardSetting) map[string]interface{} {
	normalized := NormalizeDashboardSetting(setting)
	return map[string]interface{}{
		"alert": map[string]interface{}{
			"stale_pending_hours_threshold": normalized.Alert.StalePendingHoursThreshold,
			"stale_pending_threshold":       normalized.Alert.StalePendingThreshold,
			"pending_requests_threshold":    normalized.Alert.PendingRequestsThreshold,
			"rejected_requests_threshold":   normalized.Alert.RejectedRequestsThreshold,
		},
		"ranking": map[string]interface{}{
			"top_creators_limit":   normalized.Ranking.TopCreatorsLimit,
			"top_categories_limit": normalized.Ranking.TopCategoriesLimit,
		},
	}
}

// normalizeDashboardSettingMap 归一化待写入的仪表盘配置
func normalizeDashboardSettingMap(value map[string]interface{}) models.JSON {
	setting := dashboardSettingFromJSON(models.JSON(value), DashboardDefaultSetting())
	return models.JSON(DashboardSettingToMap(setting))
}

func dashboardSettingFromJSON(raw models.JSON, fallback DashboardSetting) DashboardSetting {
	result := fallback

	if alertRaw, ok := raw["alert"].(map[string]interface{}); ok {
		overrideSettingInt64(alertRaw, "stale_pending_hours_threshold", &result.Alert.StalePendingHoursThreshold)
		overrideSettingInt64(alertRaw, "stale_pending_threshold", &result.Alert.StalePendingThreshold)
		overrideSettingInt64(alertRaw, "pending_requests_threshold", &result.Alert.PendingRequestsThreshold)
		overrideSettingInt64(alertRaw, "rejected_requests_threshold", &result.Alert.RejectedRequestsThreshold)
	}

	if rankingRaw, ok := raw["ranking"].(map[string]interface{}); ok {
		overrideSettingInt(rankingRaw, "top_creators_limit", &result.Ranking.TopCreatorsLimit)
		overrideSettingInt(rankingRaw, "top_categories_limit", &result.Ranking.TopCategoriesLimit)
	}

	return NormalizeDashboardSetting(result)
}

// overrideSettingInt 键存在且能解析为整数时覆盖目标值，否则保持原样。
func overrideSettingInt(raw map[string]interface{}, key string, dst *int) {
	value, exists := raw[key]
	if !exists {
		return
	}
	if parsed, err := parseSettingInt(value); err == nil {
		*dst = parsed
	}
}

func overrideSettingInt64(raw map[string]interface{}, key string, dst *int64) {
	value, exists := raw[key]
	if !exists {
		return
	}
	if parsed, err := parseSettingInt(value); err == nil {
		*dst = int64(parsed)
	}
}

// GetDashboardSetting 获取仪表盘设置（优先 settings，空时回退默认）
func (s *SettingService) GetDashboardSetting() (DashboardSetting, error) {
	fallback := DashboardDefaultSetting()
	if s == nil {
		return fallback, nil
	}
	value, err := s.GetByKey(constants.SettingKeyDashboardConfig)
	if err != nil {
		return fallback, err
	}
	if value == nil {
		return fallback, nil
	}
	return dashboardSettingFromJSON(value, fallback), nil
}
