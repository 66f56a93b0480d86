package service

import (
	"errors"
	"testing"
)

func TestCreatorOverrideCRUD(t *testing.T) {
	settings := NewSettingService(newMockSettingRepo())

	overrides, err := settings.GetCreatorOverrides()
	if err != nil {
		t.Fatalf("get overrides failed: %v", err)
	}
	if len(overrides) != 0 {
		t.Fatalf("want empty overrides, got %d", len(overrides))
	}

	if err := settings.UpsertCreatorOverride(42, CreatorOverride{DisableGifting: true}); err != nil {
		t.Fatalf("upsert override failed: %v", err)
	}
	if err := settings.UpsertCreatorOverride(7, CreatorOverride{ForceApproval: true}); err != nil {
		t.Fatalf("upsert second override failed: %v", err)
	}

	override, err := settings.GetCreatorOverride(42)
	if err != nil {
		t.Fatalf("get override failed: %v", err)
	}
	if !override.DisableGifting || override.ForceApproval {
		t.Fatalf("override fields wrong: %+v", override)
	}

	if err := settings.UpsertCreatorOverride(42, CreatorOverride{DisableGifting: false, ForceApproval: true}); err != nil {
		t.Fatalf("update override failed: %v", err)
	}
	override, err = settings.GetCreatorOverride(42)
	if err != nil {
		t.Fatalf("get updated override failed: %v", err)
	}
	if override.DisableGifting || !override.ForceApproval {
		t.Fatalf("override not replaced: %+v", override)
	}

	if err := settings.DeleteCreatorOverride(42); err != nil {
		t.Fatalf("delete override failed: %v", err)
	}
	overrides, err = settings.GetCreatorOverrides()
	if err != nil {
		t.Fatalf("get overrides after delete failed: %v", err)
	}
	if len(overrides) != 1 {
		t.Fatalf("want 1 remaining override, got %d", len(overrides))
	}
	if _, ok := overrides[7]; !ok {
		t.Fatal("untouched override missing after delete")
	}
}

func TestGetCreatorOverrideMissingReturnsZero(t *testing.T) {
	settings := NewSettingService(newMockSettingRepo())

	override, err := settings.GetCreatorOverride(999)
	if err != nil {
		t.Fatalf("get missing override failed: %v", err)
	}
	if override.DisableGifting || override.ForceApproval {
		t.Fatalf("missing override should be zero value: %+v", override)
	}
}

func TestValidateGiftingSettingBounds(t *testing.T) {
	if err := ValidateGiftingSetting(GiftingGlobalSetting{MaxGiftsPerFan: 100}); err != nil {
		t.Fatalf("valid setting rejected: %v", err)
	}
	if err := ValidateGiftingSetting(GiftingGlobalSetting{MaxGiftsPerFan: 0}); !errors.Is(err, ErrGiftingConfigInvalid) {
		t.Fatalf("want ErrGiftingConfigInvalid, got %v", err)
	}
	if err := ValidateGiftingSetting(GiftingGlobalSetting{MaxGiftsPerFan: 10001}); !errors.Is(err, ErrGiftingConfigInvalid) {
		t.Fatalf("want ErrGiftingConfigInvalid, got %v", err)
	}
}
