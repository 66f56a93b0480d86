//go:build integration
// +build integration

package repository

import (
	"os"
	"strings"
	"testing"

	"github.com/giftify-next/internal/constants"
	"github.com/giftify-next/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	cleanupModels := []interface{}{
		&models.GiftRequest{},
		&models.User{},
	}
	_ = db.Migrator().DropTable(cleanupModels...)

	if err := db.AutoMigrate(
		&models.User{},
		&models.GiftRequest{},
	); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(cleanupModels...)
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func TestPostgresGiftRequestItemSearch(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewGiftRequestRepository(db)

	request := &models.GiftRequest{
		RequestNo:   "PG-GIFT-001",
		FanID:       1,
		FanName:     "pg-fan",
		CreatorID:   2,
		CreatorName: "pg-creator",
		Status:      constants.GiftRequestStatusPending,
		ItemDetails: models.GiftItemDetails{
			Name:        "Vintage Camera",
			Description: "a restored rangefinder camera",
			ApproxValue: models.NewMoneyFromDecimal(decimal.NewFromInt(120)),
			Category:    "electronics",
		},
		Timeline: models.Timeline{},
	}
	if err := repo.Create(request); err != nil {
		t.Fatalf("create gift request failed: %v", err)
	}

	rows, total, err := repo.List(GiftRequestListFilter{Page: 1, Search: "rangefinder"})
	if err != nil {
		t.Fatalf("list search by description failed: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("list search want 1 got total=%d len=%d", total, len(rows))
	}

	rows, total, err = repo.List(GiftRequestListFilter{Page: 1, Search: "pg-creator"})
	if err != nil {
		t.Fatalf("list search by creator name failed: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("creator name search want 1 got total=%d len=%d", total, len(rows))
	}
}

func TestPostgresGiftRequestStatusCAS(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewGiftRequestRepository(db)

	request := &models.GiftRequest{
		RequestNo:   "PG-GIFT-002",
		FanID:       1,
		CreatorID:   2,
		Status:      constants.GiftRequestStatusPending,
		ItemDetails: models.GiftItemDetails{Name: "Plush Toy"},
		Timeline:    models.Timeline{},
	}
	if err := repo.Create(request); err != nil {
		t.Fatalf("create gift request failed: %v", err)
	}

	ok, err := repo.UpdateStatusFrom(request.ID, constants.GiftRequestStatusPending, constants.GiftRequestStatusAcceptedNeedAddress, nil)
	if err != nil {
		t.Fatalf("first conditional update failed: %v", err)
	}
	if !ok {
		t.Fatalf("first conditional update should hit")
	}

	ok, err = repo.UpdateStatusFrom(request.ID, constants.GiftRequestStatusPending, constants.GiftRequestStatusRejected, nil)
	if err != nil {
		t.Fatalf("second conditional update failed: %v", err)
	}
	if ok {
		t.Fatalf("second conditional update must miss after status changed")
	}
}
