package service

import (
	"fmt"

	"github.com/giftify-next/internal/constants"
	"github.com/giftify-next/internal/models"
)

const (
	logisticsDeliveryRetriesMin = 0
	logisticsDeliveryRetriesMax = 10
	logisticsProhibitedItemsMax = 50
)

// LogisticsSetting 物流中心配置
type LogisticsSetting struct {
	PickupsEnabled     bool     `json:"pickups_enabled"`
	PickupWindow       string   `json:"pickup_window"`
	InspectionRequired bool     `json:"inspection_required"`
	ProhibitedItems    []string `json:"prohibited_items"`
	PackingType        string   `json:"packing_type"`
	BrandedPackaging   bool     `json:"branded_packaging"`
	DeliveriesEnabled  bool     `json:"deliveries_enabled"`
	DeliveryRetries    int      `json:"delivery_retries"`
	LogActivity        bool     `json:"log_activity"`
	OperationsPaused   bool     `json:"operations_paused"`
}

// LogisticsDefaultSetting 默认物流配置
func LogisticsDefaultSetting() LogisticsSetting {
	return LogisticsSetting{
		PickupsEnabled:     true,
		PickupWindow:       constants.PickupWindowNextDay,
		InspectionRequired: true,
		ProhibitedItems:    []string{"Liquids", "Batteries", "Sharp Objects", "Perishables"},
		PackingType:        constants.PackingTypeStandard,
		BrandedPackaging:   false,
		DeliveriesEnabled:  true,
		DeliveryRetries:    2,
		LogActivity:        true,
		OperationsPaused:   false,
	}
}

// NormalizeLogisticsSetting 归一化物流配置
func NormalizeLogisticsSetting(setting LogisticsSetting) LogisticsSetting {
	switch setting.PickupWindow {
	case constants.PickupWindowSameDay, constants.PickupWindowNextDay, constants.PickupWindowTwoDays:
	default:
		setting.PickupWindow = constants.PickupWindowNextDay
	}
	switch setting.PackingType {
	case constants.PackingTypeStandard, constants.PackingTypeGift, constants.PackingTypeDiscreet:
	default:
		setting.PackingType = constants.PackingTypeStandard
	}
	if setting.DeliveryRetries < logisticsDeliveryRetriesMin {
		setting.DeliveryRetries = logisticsDeliveryRetriesMin
	}
	if setting.DeliveryRetries > logisticsDeliveryRetriesMax {
		setting.DeliveryRetries = logisticsDeliveryRetriesMax
	}
	setting.ProhibitedItems = normalizeSettingStringList(setting.ProhibitedItems)
	if len(setting.ProhibitedItems) > logisticsProhibitedItemsMax {
		setting.ProhibitedItems = setting.ProhibitedItems[:logisticsProhibitedItemsMax]
	}
	return setting
}

// ValidateLogisticsSetting 校验物流配置
func ValidateLogisticsSetting(setting LogisticsSetting) error {
	if setting.DeliveryRetries < logisticsDeliveryRetriesMin || setting.DeliveryRetries > logisticsDeliveryRetriesMax {
		return fmt.Errorf("%w: 配送重试次数必须在 %d-%d 之间", ErrLogisticsConfigInvalid, logisticsDeliveryRetriesMin, logisticsDeliveryRetriesMax)
	}
	return nil
}

// LogisticsSettingToMap 将物流配置转换为 settings 存储结构
func LogisticsSettingToMap(setting LogisticsSetting) map[string]interface{} {
	normalized := NormalizeLogisticsSetting(setting)
	return map[string]interface{}{
		"pickups_enabled":     normalized.PickupsEnabled,
		"pickup_window":       normalized.PickupWindow,
		"inspection_required": normalized.InspectionRequired,
		"prohibited_items":    cloneStringSlice(normalized.ProhibitedItems),
		"packing_type":        normalized.PackingType,
		"branded_packaging":   normalized.BrandedPackaging,
		"deliveries_enabled":  normalized.DeliveriesEnabled,
		"delivery_retries":    normalized.DeliveryRetries,
		"log_activity":        normalized.LogActivity,
		"operations_paused":   normalized.OperationsPaused,
	}
}

func logisticsSettingFromJSON(raw models.JSON, fallback LogisticsSetting) LogisticsSetting {
	result := fallback

	if v, ok := raw["pickups_enabled"]; ok {
		result.PickupsEnabled = parseSettingBool(v)
	}
	if v, ok := raw["pickup_window"]; ok {
		result.PickupWindow = normalizeSettingText(v)
	}
	if v, ok := raw["inspection_required"]; ok {
		result.InspectionRequired = parseSettingBool(v)
	}
	if v, ok := raw["prohibited_items"]; ok {
		result.ProhibitedItems = settingStringListFromRaw(v)
	}
	if v, ok := raw["packing_type"]; ok {
		result.PackingType = normalizeSettingText(v)
	}
	if v, ok := raw["branded_packaging"]; ok {
		result.BrandedPackaging = parseSettingBool(v)
	}
	if v, ok := raw["deliveries_enabled"]; ok {
		result.DeliveriesEnabled = parseSettingBool(v)
	}
	if v, ok := raw["delivery_retries"]; ok {
		if parsed, err := parseSettingInt(v); err == nil {
			result.DeliveryRetries = parsed
		}
	}
	if v, ok := raw["log_activity"]; ok {
		result.LogActivity = parseSettingBool(v)
	}
	if v, ok := raw["operations_paused"]; ok {
		result.OperationsPaused = parseSettingBool(v)
	}

	return NormalizeLogisticsSetting(result)
}

func normalizeLogisticsSettingMap(value map[string]interface{}) models.JSON {
	setting := logisticsSettingFromJSON(models.JSON(value), LogisticsDefaultSetting())
	return models.JSON(LogisticsSettingToMap(setting))
}

// GetLogisticsSetting 获取物流配置（优先 settings，空时回退默认）
func (s *SettingService) GetLogisticsSetting() (LogisticsSetting, error) {
	fallback := LogisticsDefaultSetting()
	if s == nil {
		return fallback, nil
	}

	value, err := s.GetByKey(constants.SettingKeyLogisticsConfig)
	if err != nil {
		return fallback, err
	}
	if value == nil {
		return fallback, nil
	}
	return logisticsSettingFromJSON(value, fallback), nil
}

// UpdateLogisticsSetting 更新物流配置
func (s *SettingService) UpdateLogisticsSetting(setting LogisticsSetting) (LogisticsSetting, error) {
	if err := ValidateLogisticsSetting(setting); err != nil {
		return LogisticsSetting{}, err
	}
	value, err := s.Update(constants.SettingKeyLogisticsConfig, LogisticsSettingToMap(setting))
	if err != nil {
		return LogisticsSetting{}, err
	}
	return logisticsSettingFromJSON(value, LogisticsDefaultSetting()), nil
}
