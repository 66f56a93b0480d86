package service

import (
	"fmt"
	"strconv"

	"github.com/giftify-next/internal/constants"
	"github.com/giftify-next/internal/models"
)

const (
	giftingMaxGiftsPerFanMin     = 1
	giftingMaxGiftsPerFanMax     = 10000
	giftingMaxGiftsPerFanDefault = 100
)

// GiftingGlobalSetting 全局礼物策略配置
type GiftingGlobalSetting struct {
	ForceApproval       bool `json:"force_approval"`
	PickupsPaused       bool `json:"pickups_paused"`
	DisableAutoApproval bool `json:"disable_auto_approval"`
	MaxGiftsPerFan      int  `json:"max_gifts_per_fan"`
}

// CreatorOverride 单个创作者的策略覆盖
type CreatorOverride struct {
	ForceApproval  bool `json:"force_approval"`
	DisableGifting bool `json:"disable_gifting"`
}

// GiftingDefaultSetting 默认全局礼物策略
func GiftingDefaultSetting() GiftingGlobalSetting {
	return GiftingGlobalSetting{
		ForceApproval:       false,
		PickupsPaused:       false,
		DisableAutoApproval: false,
		MaxGiftsPerFan:      giftingMaxGiftsPerFanDefault,
	}
}

// NormalizeGiftingSetting 归一化全局礼物策略
func NormalizeGiftingSetting(setting GiftingGlobalSetting) GiftingGlobalSetting {
	if setting.MaxGiftsPerFan < giftingMaxGiftsPerFanMin {
		setting.MaxGiftsPerFan = giftingMaxGiftsPerFanDefault
	}
	if setting.MaxGiftsPerFan > giftingMaxGiftsPerFanMax {
		setting.MaxGiftsPerFan = giftingMaxGiftsPerFanMax
	}
	return setting
}

// ValidateGiftingSetting 校验全局礼物策略
func ValidateGiftingSetting(setting GiftingGlobalSetting) error {
	if setting.MaxGiftsPerFan < giftingMaxGiftsPerFanMin || setting.MaxGiftsPerFan > giftingMaxGiftsPerFanMax {
		return fmt.Errorf("%w: 每日发送上限必须在 %d-%d 之间", ErrGiftingConfigInvalid, giftingMaxGiftsPerFanMin, giftingMaxGiftsPerFanMax)
	}
	return nil
}

// GiftingSettingToMap 将全局礼物策略转换为 settings 存储结构
func GiftingSettingToMap(setting GiftingGlobalSetting) map[string]interface{} {
	normalized := NormalizeGiftingSetting(setting)
	return map[string]interface{}{
		"force_approval":        normalized.ForceApproval,
		"pickups_paused":        normalized.PickupsPaused,
		"disable_auto_approval": normalized.DisableAutoApproval,
		"max_gifts_per_fan":     normalized.MaxGiftsPerFan,
	}
}

func giftingSettingFromJSON(raw models.JSON, fallback GiftingGlobalSetting) GiftingGlobalSetting {
	result := fallback

	if forceRaw, ok := raw["force_approval"]; ok {
		result.ForceApproval = parseSettingBool(forceRaw)
	}
	if pausedRaw, ok := raw["pickups_paused"]; ok {
		result.PickupsPaused = parseSettingBool(pausedRaw)
	}
	if disableRaw, ok := raw["disable_auto_approval"]; ok {
		result.DisableAutoApproval = parseSettingBool(disableRaw)
	}
	if maxRaw, ok := raw["max_gifts_per_fan"]; ok {
		if parsed, err := parseSettingInt(maxRaw); err == nil {
			result.MaxGiftsPerFan = parsed
		}
	}

	return NormalizeGiftingSetting(result)
}

func normalizeGiftingSettingMap(value map[string]interface{}) models.JSON {
	setting := giftingSettingFromJSON(models.JSON(value), GiftingDefaultSetting())
	return models.JSON(GiftingSettingToMap(setting))
}

// GetGiftingGlobalSetting 获取全局礼物策略（优先 settings，空时回退默认）
func (s *SettingService) GetGiftingGlobalSetting() (GiftingGlobalSetting, error) {
	fallback := GiftingDefaultSetting()
	if s == nil {
		return fallback, nil
	}

	value, err := s.GetByKey(constants.SettingKeyGiftingGlobal)
	if err != nil {
		return fallback, err
	}
	if value == nil {
		return fallback, nil
	}
	return giftingSettingFromJSON(value, fallback), nil
}

// UpdateGiftingGlobalSetting 更新全局礼物策略
func (s *SettingService) UpdateGiftingGlobalSetting(setting GiftingGlobalSetting) (GiftingGlobalSetting, error) {
	if err := ValidateGiftingSetting(setting); err != nil {
		return GiftingGlobalSetting{}, err
	}
	value, err := s.Update(constants.SettingKeyGiftingGlobal, GiftingSettingToMap(setting))
	if err != nil {
		return GiftingGlobalSetting{}, err
	}
	return giftingSettingFromJSON(value, GiftingDefaultSetting()), nil
}

// GetCreatorOverrides 获取全部创作者策略覆盖
func (s *SettingService) GetCreatorOverrides() (map[uint]CreatorOverride, error) {
	result := make(map[uint]CreatorOverride)
	if s == nil {
		return result, nil
	}

	value, err := s.GetByKey(constants.SettingKeyCreatorOverrides)
	if err != nil {
		return result, err
	}
	for key, raw := range value {
		creatorID, parseErr := strconv.ParseUint(key, 10, 64)
		if parseErr != nil || creatorID == 0 {
			continue
		}
		overrideMap, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		result[uint(creatorID)] = CreatorOverride{
			ForceApproval:  parseSettingBool(overrideMap["force_approval"]),
			DisableGifting: parseSettingBool(overrideMap["disable_gifting"]),
		}
	}
	return result, nil
}

// GetCreatorOverride 获取单个创作者策略覆盖（未配置返回零值）
func (s *SettingService) GetCreatorOverride(creatorID uint) (CreatorOverride, error) {
	overrides, err := s.GetCreatorOverrides()
	if err != nil {
		return CreatorOverride{}, err
	}
	return overrides[creatorID], nil
}

// UpsertCreatorOverride 写入单个创作者策略覆盖
func (s *SettingService) UpsertCreatorOverride(creatorID uint, override CreatorOverride) error {
	if creatorID == 0 {
		return ErrGiftingConfigInvalid
	}
	value, err := s.GetByKey(constants.SettingKeyCreatorOverrides)
	if err != nil {
		return err
	}
	if value == nil {
		value = models.JSON{}
	}
	value[strconv.FormatUint(uint64(creatorID), 10)] = map[string]interface{}{
		"force_approval":  override.ForceApproval,
		"disable_gifting": override.DisableGifting,
	}
	_, err = s.Update(constants.SettingKeyCreatorOverrides, value)
	return err
}

// DeleteCreatorOverride 移除单个创作者策略覆盖
func (s *SettingService) DeleteCreatorOverride(creatorID uint) error {
	value, err := s.GetByKey(constants.SettingKeyCreatorOverrides)
	if err != nil {
		return err
	}
	if value == nil {
		return nil
	}
	delete(value, strconv.FormatUint(uint64(creatorID), 10))
	_, err = s.Update(constants.SettingKeyCreatorOverrides, value)
	return err
}
