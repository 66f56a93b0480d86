package main

import (
	"time"

	"github.com/giftify-next/internal/config"
	"github.com/giftify-next/internal/constants"
	"github.com/giftify-next/internal/logger"
	"github.com/giftify-next/internal/models"
	"github.com/giftify-next/internal/service"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

const demoPassword = "Giftify@2026"

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	seedSettings(stdLog.Printf)
	users := seedUsers(stdLog.Printf)
	seedGiftRequests(stdLog.Printf, users)

	stdLog.Printf("Seed completed")
}

type seededUsers struct {
	fanAda    models.User
	fanBen    models.User
	creatorLi models.User
	creatorMo models.User
	logistics models.User
}

func seedSettings(logf func(format string, args ...interface{})) {
	settings := map[string]map[string]interface{}{
		constants.SettingKeyGiftingGlobal:   service.GiftingSettingToMap(service.GiftingDefaultSetting()),
		constants.SettingKeyLogisticsConfig: service.LogisticsSettingToMap(service.LogisticsDefaultSetting()),
		constants.SettingKeyDashboardConfig: service.DashboardSettingToMap(service.DashboardDefaultSetting()),
	}
	for key, value := range settings {
		var existing models.Setting
		if err := models.DB.Where("key = ?", key).First(&existing).Error; err == nil {
			logf("Setting already exists: %s", key)
			continue
		}
		setting := models.Setting{Key: key, ValueJSON: models.JSON(value)}
		if err := models.DB.Create(&setting).Error; err != nil {
			logf("Failed to create setting %s: %v", key, err)
			continue
		}
		logf("Created setting: %s", key)
	}
}

func seedUsers(logf func(format string, args ...interface{})) seededUsers {
	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		logf("Failed to hash demo password: %v", err)
		return seededUsers{}
	}

	fanSettings := models.FanSettings{
		DefaultPickupAddress: &models.PickupAddress{
			Street:  "88 Harbor Street",
			City:    "Seattle",
			State:   "WA",
			Zip:     "98101",
			Country: "US",
		},
		ConfirmBeforeSubmit: true,
		Notifications: models.FanNotificationPrefs{
			Approval: true,
			Pickup:   true,
			Delivery: true,
			ThankYou: true,
		},
	}

	users := []models.User{
		{
			Email:        "ada.fan@example.com",
			PasswordHash: string(hash),
			Role:         constants.RoleFan,
			FirstName:    "Ada",
			LastName:     "Lin",
			DisplayName:  "Ada",
			Onboarded:    true,
			Status:       constants.UserStatusActive,
			FanSettingsJSON: models.JSON(map[string]interface{}{
				"default_pickup_address": map[string]interface{}{
					"street":  fanSettings.DefaultPickupAddress.Street,
					"city":    fanSettings.DefaultPickupAddress.City,
					"state":   fanSettings.DefaultPickupAddress.State,
					"zip":     fanSettings.DefaultPickupAddress.Zip,
					"country": fanSettings.DefaultPickupAddress.Country,
				},
				"confirm_before_submit": fanSettings.ConfirmBeforeSubmit,
				"notifications": map[string]interface{}{
					"approval":  true,
					"pickup":    true,
					"delivery":  true,
					"thank_you": true,
				},
			}),
		},
		{
			Email:        "ben.fan@example.com",
			PasswordHash: string(hash),
			Role:         constants.RoleFan,
			FirstName:    "Ben",
			LastName:     "Ortiz",
			DisplayName:  "Ben O.",
			Onboarded:    true,
			Status:       constants.UserStatusActive,
		},
		{
			Email:        "li.creator@example.com",
			PasswordHash: string(hash),
			Role:         constants.RoleCreator,
			FirstName:    "Li",
			LastName:     "Wen",
			DisplayName:  "Li Wen",
			Verified:     true,
			Onboarded:    true,
			Status:       constants.UserStatusActive,
			ProfileJSON: models.JSON(map[string]interface{}{
				"bio":        "Street photography and travel vlogs.",
				"categories": []interface{}{"photography", "travel"},
			}),
		},
		{
			Email:        "mo.creator@example.com",
			PasswordHash: string(hash),
			Role:         constants.RoleCreator,
			FirstName:    "Mo",
			LastName:     "Hassan",
			DisplayName:  "Mo Plays",
			Verified:     true,
			Onboarded:    true,
			Status:       constants.UserStatusActive,
			ProfileJSON: models.JSON(map[string]interface{}{
				"bio":        "Indie game streams, five nights a week.",
				"categories": []interface{}{"gaming"},
			}),
		},
		{
			Email:        "hub.logistics@example.com",
			PasswordHash: string(hash),
			Role:         constants.RoleLogistics,
			FirstName:    "Hub",
			LastName:     "Operator",
			DisplayName:  "Pickup Hub",
			Onboarded:    true,
			Status:       constants.UserStatusActive,
		},
	}

	byEmail := map[string]models.User{}
	for _, user := range users {
		var existing models.User
		if err := models.DB.Where("email = ?", user.Email).First(&existing).Error; err == nil {
			logf("User already exists: %s", user.Email)
			byEmail[user.Email] = existing
			continue
		}
		record := user
		if err := models.DB.Create(&record).Error; err != nil {
			logf("Failed to create user %s: %v", user.Email, err)
			continue
		}
		logf("Created user: %s (%s)", record.Email, record.Role)
		byEmail[record.Email] = record
	}

	return seededUsers{
		fanAda:    byEmail["ada.fan@example.com"],
		fanBen:    byEmail["ben.fan@example.com"],
		creatorLi: byEmail["li.creator@example.com"],
		creatorMo: byEmail["mo.creator@example.com"],
		logistics: byEmail["hub.logistics@example.com"],
	}
}

func seedGiftRequests(logf func(format string, args ...interface{}), users seededUsers) {
	if users.fanAda.ID == 0 || users.creatorLi.ID == 0 {
		logf("Skip gift request seed: demo users missing")
		return
	}

	now := time.Now()
	pickup := &models.PickupDetails{
		Address: models.PickupAddress{
			Street:  "88 Harbor Street",
			City:    "Seattle",
			State:   "WA",
			Zip:     "98101",
			Country: "US",
		},
		ContactPhone: "+1-206-555-0188",
	}

	requests := []models.GiftRequest{
		{
			RequestNo:   "GF20260801100001",
			FanID:       users.fanAda.ID,
			FanName:     users.fanAda.DisplayName,
			CreatorID:   users.creatorLi.ID,
			CreatorName: users.creatorLi.DisplayName,
			Status:      constants.GiftRequestStatusPending,
			ItemDetails: models.GiftItemDetails{
				Name:        "35mm Film Pack",
				Description: "Five rolls of color negative film.",
				ApproxValue: models.NewMoneyFromDecimal(decimal.NewFromFloat(42.50)),
				Category:    "photography",
			},
			Timeline: models.Timeline{
				constants.TimelineEventCreated: now.Add(-2 * time.Hour),
			},
		},
		{
			RequestNo:   "GF20260801100002",
			FanID:       users.fanBen.ID,
			FanName:     users.fanBen.DisplayName,
			CreatorID:   users.creatorLi.ID,
			CreatorName: users.creatorLi.DisplayName,
			Status:      constants.GiftRequestStatusAcceptedNeedAddress,
			ItemDetails: models.GiftItemDetails{
				Name:        "Camera Strap",
				Description: "Hand-stitched leather strap.",
				ApproxValue: models.NewMoneyFromDecimal(decimal.NewFromFloat(65)),
				Category:    "photography",
			},
			Timeline: models.Timeline{
				constants.TimelineEventCreated:  now.Add(-26 * time.Hour),
				constants.TimelineEventAccepted: now.Add(-20 * time.Hour),
			},
		},
		{
			RequestNo:     "GF20260801100003",
			FanID:         users.fanAda.ID,
			FanName:       users.fanAda.DisplayName,
			CreatorID:     users.creatorMo.ID,
			CreatorName:   users.creatorMo.DisplayName,
			Status:        constants.GiftRequestStatusReadyForPickup,
			PickupDetails: pickup,
			ItemDetails: models.GiftItemDetails{
				Name:        "Mechanical Keyboard",
				Description: "Low-profile board for the stream desk.",
				ApproxValue: models.NewMoneyFromDecimal(decimal.NewFromFloat(129.99)),
				Category:    "gaming",
			},
			Timeline: models.Timeline{
				constants.TimelineEventCreated:        now.Add(-72 * time.Hour),
				constants.TimelineEventAccepted:       now.Add(-70 * time.Hour),
				constants.TimelineEventReadyForPickup: now.Add(-48 * time.Hour),
			},
		},
		{
			RequestNo:     "GF20260801100004",
			FanID:         users.fanAda.ID,
			FanName:       users.fanAda.DisplayName,
			CreatorID:     users.creatorMo.ID,
			CreatorName:   users.creatorMo.DisplayName,
			Status:        constants.GiftRequestStatusDelivered,
			PickupDetails: pickup,
			Logistics: models.GiftLogistics{
				Weight:         1.2,
				TrackingNumber: "HUB-2026-000481",
			},
			ItemDetails: models.GiftItemDetails{
				Name:        "Stream Deck Mount",
				Description: "Adjustable desk mount.",
				ApproxValue: models.NewMoneyFromDecimal(decimal.NewFromFloat(54)),
				Category:    "gaming",
			},
			Timeline: models.Timeline{
				constants.TimelineEventCreated:        now.Add(-240 * time.Hour),
				constants.TimelineEventAccepted:       now.Add(-238 * time.Hour),
				constants.TimelineEventReadyForPickup: now.Add(-200 * time.Hour),
				constants.TimelineEventPickedUp:       now.Add(-180 * time.Hour),
				constants.TimelineEventDelivered:      now.Add(-160 * time.Hour),
			},
		},
		{
			RequestNo:   "GF20260801100005",
			FanID:       users.fanBen.ID,
			FanName:     users.fanBen.DisplayName,
			CreatorID:   users.creatorMo.ID,
			CreatorName: users.creatorMo.DisplayName,
			Status:      constants.GiftRequestStatusRejected,
			ItemDetails: models.GiftItemDetails{
				Name:        "Energy Drink Crate",
				Description: "Two dozen cans.",
				ApproxValue: models.NewMoneyFromDecimal(decimal.NewFromFloat(36)),
				Category:    "food",
			},
			Timeline: models.Timeline{
				constants.TimelineEventCreated:  now.Add(-120 * time.Hour),
				constants.TimelineEventRejected: now.Add(-118 * time.Hour),
			},
		},
	}

	for _, request := range requests {
		var existing models.GiftRequest
		if err := models.DB.Where("request_no = ?", request.RequestNo).First(&existing).Error; err == nil {
			logf("Gift request already exists: %s", request.RequestNo)
			continue
		}
		record := request
		if err := models.DB.Create(&record).Error; err != nil {
			logf("Failed to create gift request %s: %v", request.RequestNo, err)
			continue
		}
		logf("Created gift request: %s (%s)", record.RequestNo, record.Status)
	}
}
