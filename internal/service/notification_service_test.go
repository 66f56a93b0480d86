package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/giftify-next/internal/constants"
	"github.com/giftify-next/internal/models"
	"github.com/giftify-next/internal/queue"
	"github.com/giftify-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupNotificationServiceTest(t *testing.T) (*NotificationService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Notification{}); err != nil {
		t.Fatalf("migrate models failed: %v", err)
	}
	svc := NewNotificationService(
		repository.NewNotificationRepository(db),
		repository.NewUserRepository(db),
		nil,
	)
	return svc, db
}

func createNotificationTestUser(t *testing.T, db *gorm.DB, role string, fanSettings models.JSON) *models.User {
	t.Helper()
	user := &models.User{
		Email:           fmt.Sprintf("%s-%s@example.com", role, strings.ToLower(t.Name())),
		Role:            role,
		Status:          constants.UserStatusActive,
		FanSettingsJSON: fanSettings,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

func TestEnqueueRejectsUnknownType(t *testing.T) {
	svc, _ := setupNotificationServiceTest(t)
	err := svc.Enqueue(NotificationEnqueueInput{Type: "gift_exploded", UserID: 1})
	if !errors.Is(err, ErrNotificationTypeInvalid) {
		t.Fatalf("want ErrNotificationTypeInvalid got %v", err)
	}
}

func TestDispatchStoresNotification(t *testing.T) {
	svc, db := setupNotificationServiceTest(t)
	creator := createNotificationTestUser(t, db, constants.RoleCreator, nil)

	err := svc.Dispatch(context.Background(), queue.NotificationDispatchPayload{
		Type:      constants.NotificationTypeGiftReceived,
		UserID:    creator.ID,
		RequestNo: "GF20260801100001",
		Title:     "New gift request",
		Body:      "Fan One wants to send you a gift",
	})
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	rows, total, err := svc.List(NotificationListInput{UserID: creator.ID, Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("want 1 stored notification got total=%d len=%d", total, len(rows))
	}
	if rows[0].Type != constants.NotificationTypeGiftReceived || rows[0].RequestNo != "GF20260801100001" {
		t.Fatalf("unexpected stored notification: %+v", rows[0])
	}
	if rows[0].NotificationNo == "" {
		t.Fatal("notification_no must be generated")
	}
}

func TestDispatchRespectsFanPrefs(t *testing.T) {
	svc, db := setupNotificationServiceTest(t)
	fan := createNotificationTestUser(t, db, constants.RoleFan, models.JSON{
		"notifications": map[string]interface{}{
			"approval":  false,
			"pickup":    true,
			"delivery":  true,
			"thank_you": true,
		},
	})

	err := svc.Dispatch(context.Background(), queue.NotificationDispatchPayload{
		Type:   constants.NotificationTypeGiftAccepted,
		UserID: fan.ID,
	})
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if _, total, err := svc.List(NotificationListInput{UserID: fan.ID, Page: 1, PageSize: 10}); err != nil || total != 0 {
		t.Fatalf("approval notification must be skipped, total=%d err=%v", total, err)
	}

	err = svc.Dispatch(context.Background(), queue.NotificationDispatchPayload{
		Type:   constants.NotificationTypeGiftPickedUp,
		UserID: fan.ID,
	})
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if _, total, err := svc.List(NotificationListInput{UserID: fan.ID, Page: 1, PageSize: 10}); err != nil || total != 1 {
		t.Fatalf("pickup notification must be stored, total=%d err=%v", total, err)
	}
}

func TestDispatchSkipsDisabledUser(t *testing.T) {
	svc, db := setupNotificationServiceTest(t)
	user := createNotificationTestUser(t, db, constants.RoleCreator, nil)
	if err := db.Model(&models.User{}).Where("id = ?", user.ID).Update("status", constants.UserStatusDisabled).Error; err != nil {
		t.Fatalf("disable user failed: %v", err)
	}

	err := svc.Dispatch(context.Background(), queue.NotificationDispatchPayload{
		Type:   constants.NotificationTypeGiftReceived,
		UserID: user.ID,
	})
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if _, total, err := svc.List(NotificationListInput{UserID: user.ID, Page: 1, PageSize: 10}); err != nil || total != 0 {
		t.Fatalf("disabled user must not receive notifications, total=%d err=%v", total, err)
	}
}

func TestMarkReadFlow(t *testing.T) {
	svc, db := setupNotificationServiceTest(t)
	creator := createNotificationTestUser(t, db, constants.RoleCreator, nil)

	for i := 0; i < 2; i++ {
		if err := svc.Dispatch(context.Background(), queue.NotificationDispatchPayload{
			Type:   constants.NotificationTypeGiftReceived,
			UserID: creator.ID,
		}); err != nil {
			t.Fatalf("dispatch failed: %v", err)
		}
	}

	unread, err := svc.UnreadCount(creator.ID)
	if err != nil || unread != 2 {
		t.Fatalf("unread want 2 got %d err=%v", unread, err)
	}

	rows, _, err := svc.List(NotificationListInput{UserID: creator.ID, Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if err := svc.MarkRead(rows[0].NotificationNo, creator.ID); err != nil {
		t.Fatalf("mark read failed: %v", err)
	}
	if err := svc.MarkRead(rows[0].NotificationNo, creator.ID+1); !errors.Is(err, ErrNotificationNotFound) {
		t.Fatalf("foreign user mark read want ErrNotificationNotFound got %v", err)
	}

	unread, err = svc.UnreadCount(creator.ID)
	if err != nil || unread != 1 {
		t.Fatalf("unread want 1 got %d err=%v", unread, err)
	}

	if err := svc.MarkAllRead(creator.ID); err != nil {
		t.Fatalf("mark all read failed: %v", err)
	}
	unread, err = svc.UnreadCount(creator.ID)
	if err != nil || unread != 0 {
		t.Fatalf("unread want 0 got %d err=%v", unread, err)
	}
}

func TestFanWantsNotificationMapping(t *testing.T) {
	settings := models.FanSettings{Notifications: models.FanNotificationPrefs{
		Approval: false,
		Pickup:   false,
		Delivery: true,
	}}
	if fanWantsNotification(settings, constants.NotificationTypeGiftAccepted) {
		t.Fatal("accepted maps to approval pref")
	}
	if fanWantsNotification(settings, constants.NotificationTypeGiftReady) {
		t.Fatal("ready maps to pickup pref")
	}
	if !fanWantsNotification(settings, constants.NotificationTypeGiftDelivered) {
		t.Fatal("delivered maps to delivery pref")
	}
	if !fanWantsNotification(settings, constants.NotificationTypeGiftReceived) {
		t.Fatal("received is always delivered")
	}
}
