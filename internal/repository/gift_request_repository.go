package repository

import (
	"time"

	"github.com/giftify-next/internal/models"

	"gorm.io/gorm"
)

// GiftRequestRepository 礼物请求数据访问接口
type GiftRequestRepository interface {
	Create(request *models.GiftRequest) error
	GetByID(id uint) (*models.GiftRequest, error)
	GetByRequestNo(requestNo string) (*models.GiftRequest, error)
	List(filter GiftRequestListFilter) ([]models.GiftRequest, int64, error)
	CountCreatedSince(fanID uint, since time.Time) (int64, error)
	CountByStatus() (map[string]int64, error)
	UpdateStatusFrom(id uint, fromStatus, toStatus string, updates map[string]interface{}) (bool, error)
	UpdateFields(id uint, updates map[string]interface{}) error
	Delete(id uint) error
	WithTx(tx *gorm.DB) *GormGiftRequestRepository
}

// GormGiftRequestRepository GORM 实现
type GormGiftRequestRepository struct {
	db *gorm.DB
}

// NewGiftRequestRepository 创建礼物请求仓库
func NewGiftRequestRepository(db *gorm.DB) *GormGiftRequestRepository {
	return &GormGiftRequestRepository{db: db}
}

// WithTx 绑定事务
func (r *GormGiftRequestRepository) WithTx(tx *gorm.DB) *GormGiftRequestRepository {
	if tx == nil {
		return r
	}
	return &GormGiftRequestRepository{db: tx}
}

// Create 创建礼物请求
func (r *GormGiftRequestRepository) Create(request *models.GiftRequest) error {
	return r.db.Create(request).Error
}

// GetByID 根据 ID 获取礼物请求
func (r *GormGiftRequestRepository) GetByID(id uint) (*models.GiftRequest, error) {
	var request models.GiftRequest
	return firstOrNil(r.db.Where("id = ?", id), &request)
}

// GetByRequestNo 根据请求编号获取礼物请求
func (r *GormGiftRequestRepository) GetByRequestNo(requestNo string) (*models.GiftRequest, error) {
	var request models.GiftRequest
	return firstOrNil(r.db.Where("request_no = ?", requestNo), &request)
}

// List 礼物请求列表
func (r *GormGiftRequestRepository) List(filter GiftRequestListFilter) ([]models.GiftRequest, int64, error) {
	query := r.db.Model(&models.GiftRequest{})

	if filter.FanID != 0 {
		query = query.Where("fan_id = ?", filter.FanID)
	}
	if filter.CreatorID != 0 {
		query = query.Where("creator_id = ?", filter.CreatorID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if filter.RequestNo != "" {
		query = query.Where("request_no = ?", filter.RequestNo)
	}
	if filter.Search != "" {
		condition, argCount := buildItemSearchCondition(r.db, []string{"fan_name", "creator_name"})
		query = query.Where(condition, repeatLikeArgs("%"+filter.Search+"%", argCount)...)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	order := "id DESC"
	if filter.PendingFirst {
		order = "CASE WHEN status = 'pending' THEN 0 ELSE 1 END, id DESC"
	}

	var requests []models.GiftRequest
	if err := query.Order(order).Find(&requests).Error; err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

// CountCreatedSince 统计粉丝自某时刻起创建的请求数（每日限额兜底口径）
func (r *GormGiftRequestRepository) CountCreatedSince(fanID uint, since time.Time) (int64, error) {
	var count int64
	if err := r.db.Model(&models.GiftRequest{}).
		Where("fan_id = ? AND created_at >= ?", fanID, since).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus 按状态统计请求数量
func (r *GormGiftRequestRepository) CountByStatus() (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	if err := r.db.Model(&models.GiftRequest{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	result := make(map[string]int64, len(rows))
	for _, row := range rows {
		result[row.Status] = row.Count
	}
	return result, nil
}

// UpdateStatusFrom 条件更新状态：仅当前状态等于 fromStatus 时生效。
// 返回 false 表示状态已被并发修改或前置状态不满足，调用方据此判定非法流转。
func (r *GormGiftRequestRepository) UpdateStatusFrom(id uint, fromStatus, toStatus string, updates map[string]interface{}) (bool, error) {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = toStatus
	result := r.db.Model(&models.GiftRequest{}).
		Where("id = ? AND status = ?", id, fromStatus).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// UpdateFields 更新任意字段（管理端覆盖写入口）
func (r *GormGiftRequestRepository) UpdateFields(id uint, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.Model(&models.GiftRequest{}).Where("id = ?", id).Updates(updates).Error
}

// Delete 删除礼物请求（管理端破坏性操作）
func (r *GormGiftRequestRepository) Delete(id uint) error {
	return r.db.Delete(&models.GiftRequest{}, id).Error
}
