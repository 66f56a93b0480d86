package repository

import (
	"github.com/giftify-next/internal/models"

	"gorm.io/gorm"
)

// FavoriteRepository 收藏数据访问接口
type FavoriteRepository interface {
	Add(fanID, creatorID uint) error
	Remove(fanID, creatorID uint) error
	Exists(fanID, creatorID uint) (bool, error)
	ListCreatorIDs(fanID uint) ([]uint, error)
}

// GormFavoriteRepository GORM 实现
type GormFavoriteRepository struct {
	db *gorm.DB
}

// NewFavoriteRepository 创建收藏仓库
func NewFavoriteRepository(db *gorm.DB) *GormFavoriteRepository {
	return &GormFavoriteRepository{db: db}
}

// Add 收藏创作者（重复收藏视为幂等）
func (r *GormFavoriteRepository) Add(fanID, creatorID uint) error {
	exists, err := r.Exists(fanID, creatorID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return r.db.Create(&models.Favorite{FanID: fanID, CreatorID: creatorID}).Error
}

// Remove 取消收藏
func (r *GormFavoriteRepository) Remove(fanID, creatorID uint) error {
	return r.db.Where("fan_id = ? AND creator_id = ?", fanID, creatorID).
		Delete(&models.Favorite{}).Error
}

// Exists 是否已收藏
func (r *GormFavoriteRepository) Exists(fanID, creatorID uint) (bool, error) {
	var favorite models.Favorite
	found, err := firstOrNil(r.db.Where("fan_id = ? AND creator_id = ?", fanID, creatorID), &favorite)
	if err != nil {
		return false, err
	}
	return found != nil, nil
}

// ListCreatorIDs 列出粉丝收藏的创作者ID
func (r *GormFavoriteRepository) ListCreatorIDs(fanID uint) ([]uint, error) {
	var ids []uint
	if err := r.db.Model(&models.Favorite{}).
		Where("fan_id = ?", fanID).
		Order("id DESC").
		Pluck("creator_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
