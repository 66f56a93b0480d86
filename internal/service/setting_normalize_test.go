package service

import (
	"testing"

	"github.com/giftify-next/internal/constants"
	"github.com/giftify-next/internal/models"
)

type mockSettingRepo struct {
	store map[string]models.JSON
}

func newMockSettingRepo() *mockSettingRepo {
	return &mockSettingRepo{store: map[string]models.JSON{}}
}

func (m *mockSettingRepo) GetByKey(key string) (*models.Setting, error) {
	value, ok := m.store[key]
	if !ok {
		return nil, nil
	}
	return &models.Setting{Key: key, ValueJSON: value}, nil
}

func (m *mockSettingRepo) Upsert(key string, value models.JSON) (*models.Setting, error) {
	m.store[key] = value
	return &models.Setting{Key: key, ValueJSON: value}, nil
}

func TestUpdateGiftingSettingNormalized(t *testing.T) {
	repo := newMockSettingRepo()
	svc := NewSettingService(repo)

	result, err := svc.Update(constants.SettingKeyGiftingGlobal, map[string]interface{}{
		"max_gifts_per_fan": "20000",
		"pickups_paused":    "true",
	})
	if err != nil {
		t.Fatalf("update gifting config failed: %v", err)
	}

	maxGifts, err := parseSettingInt(result["max_gifts_per_fan"])
	if err != nil {
		t.Fatalf("parse max_gifts_per_fan failed: %v", err)
	}
	if maxGifts != 10000 {
		t.Fatalf("unexpected max_gifts_per_fan, expected 10000 got %d", maxGifts)
	}
	if result["pickups_paused"] != true {
		t.Fatalf("unexpected pickups_paused: %v", result["pickups_paused"])
	}
	if result["force_approval"] != false {
		t.Fatalf("unexpected force_approval: %v", result["force_approval"])
	}
}

func TestUpdateGiftingSettingInvalidMaxFallsBackToDefault(t *testing.T) {
	repo := newMockSettingRepo()
	svc := NewSettingService(repo)

	result, err := svc.Update(constants.SettingKeyGiftingGlobal, map[string]interface{}{
		"max_gifts_per_fan": -5,
	})
	if err != nil {
		t.Fatalf("update gifting config failed: %v", err)
	}

	maxGifts, err := parseSettingInt(result["max_gifts_per_fan"])
	if err != nil {
		t.Fatalf("parse max_gifts_per_fan failed: %v", err)
	}
	if maxGifts != 100 {
		t.Fatalf("unexpected max_gifts_per_fan, expected default 100 got %d", maxGifts)
	}
}

func TestUpdateLogisticsSettingNormalized(t *testing.T) {
	repo := newMockSettingRepo()
	svc := NewSettingService(repo)

	result, err := svc.Update(constants.SettingKeyLogisticsConfig, map[string]interface{}{
		"pickup_window":    "someday",
		"packing_type":     "luxury",
		"delivery_retries": "99",
		"prohibited_items": []interface{}{" Liquids ", "Liquids", "", "Batteries"},
	})
	if err != nil {
		t.Fatalf("update logistics config failed: %v", err)
	}

	if result["pickup_window"] != constants.PickupWindowNextDay {
		t.Fatalf("unexpected pickup_window: %v", result["pickup_window"])
	}
	if result["packing_type"] != constants.PackingTypeStandard {
		t.Fatalf("unexpected packing_type: %v", result["packing_type"])
	}
	retries, err := parseSettingInt(result["delivery_retries"])
	if err != nil {
		t.Fatalf("parse delivery_retries failed: %v", err)
	}
	if retries != 10 {
		t.Fatalf("unexpected delivery_retries, expected 10 got %d", retries)
	}
	items, ok := result["prohibited_items"].([]string)
	if !ok {
		t.Fatalf("invalid prohibited_items payload type: %T", result["prohibited_items"])
	}
	if len(items) != 2 || items[0] != "Liquids" || items[1] != "Batteries" {
		t.Fatalf("unexpected prohibited_items: %+v", items)
	}
}

func TestUpdateCaptchaSettingNormalized(t *testing.T) {
	repo := newMockSettingRepo()
	svc := NewSettingService(repo)

	result, err := svc.Update(constants.SettingKeyCaptchaConfig, map[string]interface{}{
		"provider": "  IMAGE  ",
		"image": map[string]interface{}{
			"length":         99,
			"expire_seconds": 1,
		},
	})
	if err != nil {
		t.Fatalf("update captcha config failed: %v", err)
	}

	if result["provider"] != constants.CaptchaProviderImage {
		t.Fatalf("unexpected provider: %v", result["provider"])
	}
	image, ok := result["image"].(map[string]interface{})
	if !ok {
		t.Fatalf("invalid image payload type: %T", result["image"])
	}
	length, err := parseSettingInt(image["length"])
	if err != nil {
		t.Fatalf("parse image.length failed: %v", err)
	}
	if length != 5 {
		t.Fatalf("unexpected image.length, expected 5 got %d", length)
	}
	expire, err := parseSettingInt(image["expire_seconds"])
	if err != nil {
		t.Fatalf("parse image.expire_seconds failed: %v", err)
	}
	if expire != 300 {
		t.Fatalf("unexpected image.expire_seconds, expected 300 got %d", expire)
	}
}

func TestUpdateUnknownSettingPassesThrough(t *testing.T) {
	repo := newMockSettingRepo()
	svc := NewSettingService(repo)

	result, err := svc.Update(constants.SettingKeySiteConfig, map[string]interface{}{
		"brand": map[string]interface{}{"site_name": "Giftify"},
	})
	if err != nil {
		t.Fatalf("update site config failed: %v", err)
	}
	brand, ok := result["brand"].(map[string]interface{})
	if !ok {
		t.Fatalf("invalid brand payload type: %T", result["brand"])
	}
	if brand["site_name"] != "Giftify" {
		t.Fatalf("unexpected brand.site_name: %v", brand["site_name"])
	}
}
