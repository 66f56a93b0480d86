package service

import (
	"strings"

	"github.com/giftify-next/internal/constants"
	"github.com/giftify-next/internal/models"
)

// normalizeSettingValueByKey 按设置键执行归一化，避免非法值入库。
func normalizeSettingValueByKey(key string, value map[string]interface{}) models.JSON {
	switch key {
	case constants.SettingKeyGiftingGlobal:
		return normalizeGiftingSettingMap(value)
	case constants.SettingKeyLogisticsConfig:
		return normalizeLogisticsSettingMap(value)
	case constants.SettingKeyCaptchaConfig:
		return normalizeCaptchaSettingMap(value)
	case constants.SettingKeyDashboardConfig:
		return normalizeDashboardSettingMap(value)
	default:
		return models.JSON(value)
	}
}

func normalizeSettingText(raw interface{}) string {
	text, ok := raw.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(text)
}

func parseSettingBool(raw interface{}) bool {
	switch value := raw.(type) {
	case bool:
		return value
	case int:
		return value != 0
	case int64:
		return value != 0
	case float64:
		return value != 0
	case string:
		normalized := strings.ToLower(strings.TrimSpace(value))
		return normalized == "1" || normalized == "true" || normalized == "yes" || normalized == "on"
	default:
		return false
	}
}

// settingStringListFromRaw 将任意 JSON 值转换为字符串列表
func settingStringListFromRaw(raw interface{}) []string {
	switch value := raw.(type) {
	case []string:
		return normalizeSettingStringList(value)
	case []interface{}:
		list := make([]string, 0, len(value))
		for _, item := range value {
			list = append(list, normalizeSettingText(item))
		}
		return normalizeSettingStringList(list)
	default:
		return []string{}
	}
}

// normalizeSettingStringList 去空白、去重，保持顺序
func normalizeSettingStringList(list []string) []string {
	result := make([]string, 0, len(list))
	seen := make(map[string]struct{}, len(list))
	for _, item := range list {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	return result
}

func cloneStringSlice(list []string) []string {
	if list == nil {
		return []string{}
	}
	cloned := make([]string, len(list))
	copy(cloned, list)
	return cloned
}
