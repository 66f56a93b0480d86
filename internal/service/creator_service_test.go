package service

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/giftify-next/internal/constants"
	"github.com/giftify-next/internal/models"
	"github.com/giftify-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupCreatorServiceTest(t *testing.T) (*CreatorService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Favorite{}); err != nil {
		t.Fatalf("migrate models failed: %v", err)
	}
	svc := NewCreatorService(
		repository.NewUserRepository(db),
		repository.NewFavoriteRepository(db),
	)
	return svc, db
}

func createDirectoryUser(t *testing.T, db *gorm.DB, email, role, name string, verified bool) *models.User {
	t.Helper()
	user := &models.User{
		Email:       email,
		Role:        role,
		DisplayName: name,
		Verified:    verified,
		Status:      constants.UserStatusActive,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

func TestCreatorListFiltersNonCreators(t *testing.T) {
	svc, db := setupCreatorServiceTest(t)
	createDirectoryUser(t, db, "c1@example.com", constants.RoleCreator, "Creator One", true)
	createDirectoryUser(t, db, "c2@example.com", constants.RoleCreator, "Creator Two", false)
	createDirectoryUser(t, db, "f1@example.com", constants.RoleFan, "Fan One", false)

	items, total, err := svc.List(0, CreatorListInput{Page: 1, PageSize: 20})
	if err != nil {
		t.Fatalf("list creators failed: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Fatalf("directory want 2 creators got total=%d len=%d", total, len(items))
	}

	items, total, err = svc.List(0, CreatorListInput{Page: 1, PageSize: 20, OnlyVerified: true})
	if err != nil {
		t.Fatalf("list verified creators failed: %v", err)
	}
	if total != 1 || len(items) != 1 || !items[0].Verified {
		t.Fatalf("verified filter want 1 got total=%d len=%d", total, len(items))
	}
}

func TestCreatorFavoriteFlow(t *testing.T) {
	svc, db := setupCreatorServiceTest(t)
	creator := createDirectoryUser(t, db, "c1@example.com", constants.RoleCreator, "Creator One", true)
	fan := createDirectoryUser(t, db, "f1@example.com", constants.RoleFan, "Fan One", false)

	if err := svc.Favorite(fan.ID, creator.ID); err != nil {
		t.Fatalf("favorite failed: %v", err)
	}

	item, err := svc.Get(fan.ID, creator.ID)
	if err != nil {
		t.Fatalf("get creator failed: %v", err)
	}
	if !item.Favorited {
		t.Fatal("creator must be marked as favorited for the fan")
	}

	favorites, err := svc.ListFavorites(fan.ID)
	if err != nil {
		t.Fatalf("list favorites failed: %v", err)
	}
	if len(favorites) != 1 || favorites[0].ID != creator.ID {
		t.Fatalf("favorites want [creator] got %+v", favorites)
	}

	if err := svc.Unfavorite(fan.ID, creator.ID); err != nil {
		t.Fatalf("unfavorite failed: %v", err)
	}
	favorites, err = svc.ListFavorites(fan.ID)
	if err != nil {
		t.Fatalf("list favorites failed: %v", err)
	}
	if len(favorites) != 0 {
		t.Fatalf("favorites want empty got %+v", favorites)
	}
}

func TestCreatorFavoriteRejectsNonCreator(t *testing.T) {
	svc, db := setupCreatorServiceTest(t)
	fan := createDirectoryUser(t, db, "f1@example.com", constants.RoleFan, "Fan One", false)
	other := createDirectoryUser(t, db, "f2@example.com", constants.RoleFan, "Fan Two", false)

	if err := svc.Favorite(fan.ID, other.ID); !errors.Is(err, ErrCreatorNotFound) {
		t.Fatalf("favoriting a fan want ErrCreatorNotFound got %v", err)
	}
	if _, err := svc.Get(fan.ID, other.ID); !errors.Is(err, ErrCreatorNotFound) {
		t.Fatalf("getting a fan want ErrCreatorNotFound got %v", err)
	}
}
