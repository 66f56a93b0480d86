package service

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/giftify-next/internal/config"
	"github.com/giftify-next/internal/constants"
	"github.com/giftify-next/internal/models"
	"github.com/giftify-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupUserAuthServiceTest(t *testing.T) (*UserAuthService, repository.UserRepository) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("migrate models failed: %v", err)
	}

	cfg := &config.Config{}
	cfg.UserJWT.SecretKey = "user-auth-test-secret"
	cfg.UserJWT.ExpireHours = 24
	cfg.Security.PasswordPolicy = config.PasswordPolicyConfig{
		MinLength:     8,
		RequireUpper:  true,
		RequireNumber: true,
	}

	userRepo := repository.NewUserRepository(db)
	return NewUserAuthService(cfg, userRepo), userRepo
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := setupUserAuthServiceTest(t)

	user, token, _, err := svc.Register(RegisterInput{
		Email:    "  Ada.Fan@Example.COM ",
		Password: "Sunshine1",
		Role:     "fan",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.Email != "ada.fan@example.com" {
		t.Fatalf("email not normalized: %s", user.Email)
	}
	if user.DisplayName != "ada.fan" {
		t.Fatalf("display name not derived from email: %s", user.DisplayName)
	}
	if token == "" {
		t.Fatal("expected a token after register")
	}

	claims, err := svc.ParseUserJWT(token)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if claims.UserID != user.ID || claims.Email != user.Email {
		t.Fatalf("claims mismatch: %+v", claims)
	}

	logged, token2, _, err := svc.Login("ada.fan@example.com", "Sunshine1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if logged.ID != user.ID || token2 == "" {
		t.Fatal("login returned wrong user or empty token")
	}
	if logged.LastLoginAt == nil {
		t.Fatal("last_login_at not stamped")
	}
}

func TestRegisterRejectsBadInput(t *testing.T) {
	svc, _ := setupUserAuthServiceTest(t)

	if _, _, _, err := svc.Register(RegisterInput{Email: "not-an-email", Password: "Sunshine1"}); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("want ErrInvalidEmail, got %v", err)
	}
	if _, _, _, err := svc.Register(RegisterInput{Email: "x@example.com", Password: "Sunshine1", Role: "logistics"}); !errors.Is(err, ErrRoleInvalid) {
		t.Fatalf("want ErrRoleInvalid, got %v", err)
	}
	if _, _, _, err := svc.Register(RegisterInput{Email: "x@example.com", Password: "weak"}); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("want ErrWeakPassword, got %v", err)
	}

	if _, _, _, err := svc.Register(RegisterInput{Email: "dup@example.com", Password: "Sunshine1"}); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if _, _, _, err := svc.Register(RegisterInput{Email: "DUP@example.com", Password: "Sunshine1"}); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("want ErrEmailExists, got %v", err)
	}
}

func TestLoginRejectsDisabledUser(t *testing.T) {
	svc, userRepo := setupUserAuthServiceTest(t)

	user, _, _, err := svc.Register(RegisterInput{Email: "ben@example.com", Password: "Sunshine1"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if _, _, _, err := svc.Login("ben@example.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("want ErrInvalidCredentials, got %v", err)
	}

	user.Status = constants.UserStatusDisabled
	if err := userRepo.Update(user); err != nil {
		t.Fatalf("disable user failed: %v", err)
	}
	if _, _, _, err := svc.Login("ben@example.com", "Sunshine1"); !errors.Is(err, ErrUserDisabled) {
		t.Fatalf("want ErrUserDisabled, got %v", err)
	}
}

func TestChangePasswordBumpsTokenVersion(t *testing.T) {
	svc, userRepo := setupUserAuthServiceTest(t)

	user, _, _, err := svc.Register(RegisterInput{Email: "li@example.com", Password: "Sunshine1"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if err := svc.ChangePassword(user.ID, "nope", "Moonbeam2"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("want ErrInvalidPassword, got %v", err)
	}
	if err := svc.ChangePassword(user.ID, "Sunshine1", "short"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("want ErrWeakPassword, got %v", err)
	}
	if err := svc.ChangePassword(user.ID, "Sunshine1", "Moonbeam2"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}

	reloaded, err := userRepo.GetByID(user.ID)
	if err != nil || reloaded == nil {
		t.Fatalf("reload user failed: %v", err)
	}
	if reloaded.TokenVersion != user.TokenVersion+1 {
		t.Fatalf("token version not bumped: %d", reloaded.TokenVersion)
	}
	if reloaded.TokenInvalidBefore == nil {
		t.Fatal("token_invalid_before not stamped")
	}

	if _, _, _, err := svc.Login("li@example.com", "Moonbeam2"); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
}

func TestUpdateFanSettings(t *testing.T) {
	svc, _ := setupUserAuthServiceTest(t)

	user, _, _, err := svc.Register(RegisterInput{Email: "mia@example.com", Password: "Sunshine1"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	initial, err := svc.GetFanSettings(user.ID)
	if err != nil {
		t.Fatalf("get fan settings failed: %v", err)
	}
	if initial.DefaultPickupAddress != nil {
		t.Fatal("new user should have no default address")
	}
	if !initial.Notifications.Approval || !initial.Notifications.Pickup || !initial.Notifications.Delivery {
		t.Fatalf("notification prefs should default on: %+v", initial.Notifications)
	}

	confirm := true
	updated, err := svc.UpdateFanSettings(user.ID, UpdateFanSettingsInput{
		DefaultPickupAddress: &PickupAddressInput{
			Street:  " 9 Default Ave ",
			City:    "Portland",
			State:   "OR",
			Zip:     "97201",
			Country: "US",
		},
		ConfirmBeforeSubmit: &confirm,
		Notifications:       &models.FanNotificationPrefs{Approval: false, Pickup: true, Delivery: true},
	})
	if err != nil {
		t.Fatalf("update fan settings failed: %v", err)
	}
	if updated.DefaultPickupAddress == nil || updated.DefaultPickupAddress.Street != "9 Default Ave" {
		t.Fatalf("default address not trimmed/stored: %+v", updated.DefaultPickupAddress)
	}
	if !updated.ConfirmBeforeSubmit || updated.Notifications.Approval {
		t.Fatalf("settings not applied: %+v", updated)
	}

	cleared, err := svc.UpdateFanSettings(user.ID, UpdateFanSettingsInput{ClearDefaultAddress: true})
	if err != nil {
		t.Fatalf("clear default address failed: %v", err)
	}
	if cleared.DefaultPickupAddress != nil {
		t.Fatal("default address should be cleared")
	}
	if !cleared.ConfirmBeforeSubmit {
		t.Fatal("confirm_before_submit should survive the address clear")
	}
}

func TestUpdateProfile(t *testing.T) {
	svc, _ := setupUserAuthServiceTest(t)

	user, _, _, err := svc.Register(RegisterInput{Email: "cy@example.com", Password: "Sunshine1", Role: "creator"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if _, err := svc.UpdateProfile(user.ID, UpdateProfileInput{}); !errors.Is(err, ErrProfileEmpty) {
		t.Fatalf("want ErrProfileEmpty, got %v", err)
	}

	bio := "  Ceramics and small sculpture.  "
	name := "Cy Pottery"
	updated, err := svc.UpdateProfile(user.ID, UpdateProfileInput{
		DisplayName: &name,
		Bio:         &bio,
		Categories:  []string{"Ceramics", " ceramics ", "Sculpture"},
	})
	if err != nil {
		t.Fatalf("update profile failed: %v", err)
	}
	if updated.DisplayName != "Cy Pottery" {
		t.Fatalf("display name not updated: %s", updated.DisplayName)
	}
	profile := userProfileFromJSON(updated.ProfileJSON)
	if profile.Bio != "Ceramics and small sculpture." {
		t.Fatalf("bio not trimmed: %q", profile.Bio)
	}
	if len(profile.Categories) != 2 {
		t.Fatalf("categories not deduped: %v", profile.Categories)
	}
}
