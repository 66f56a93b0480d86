package repository

import (
	"fmt"
	"time"

	"github.com/giftify-next/internal/constants"
	"github.com/giftify-next/internal/models"

	"gorm.io/gorm"
)

// DashboardRepository 仪表盘聚合查询接口
// 说明：仅聚合统计数据，不承载业务规则。
type DashboardRepository interface {
	GetOverview(startAt, endAt time.Time) (DashboardOverviewRow, error)
	GetRequestTrends(startAt, endAt time.Time) ([]DashboardRequestTrendRow, error)
	GetBacklogStats(stalePendingHours int64) (DashboardBacklogStatsRow, error)
	GetTopCreators(startAt, endAt time.Time, limit int) ([]DashboardCreatorRankingRow, error)
	GetTopCategories(startAt, endAt time.Time, limit int) ([]DashboardCategoryRankingRow, error)
}

// DashboardOverviewRow 仪表盘总览原始统计结果
type DashboardOverviewRow struct {
	RequestsTotal     int64
	PendingRequests   int64
	AcceptedRequests  int64
	PickedUpRequests  int64
	DeliveredRequests int64
	RejectedRequests  int64
	DeliveredValue    float64
	NewUsers          int64
	NewFans           int64
	NewCreators       int64
}

// DashboardRequestTrendRow 请求趋势统计
type DashboardRequestTrendRow struct {
	Day       string
	Total     int64
	Accepted  int64
	Delivered int64
	Rejected  int64
}

// DashboardBacklogStatsRow 待处理积压统计
type DashboardBacklogStatsRow struct {
	PendingRequests      int64
	StalePendingRequests int64
	AwaitingAddress      int64
	AwaitingPickup       int64
}

// DashboardCreatorRankingRow 创作者排行原始行
type DashboardCreatorRankingRow struct {
	CreatorID      uint
	CreatorName    string
	RequestsTotal  int64
	Delivered      int64
	DeliveredValue float64
}

// DashboardCategoryRankingRow 礼物类目排行原始行
type DashboardCategoryRankingRow struct {
	Category      string
	RequestsTotal int64
	Delivered     int64
}

// GormDashboardRepository GORM 仪表盘聚合实现
type GormDashboardRepository struct {
	db *gorm.DB
}

// NewDashboardRepository 创建仪表盘仓库
func NewDashboardRepository(db *gorm.DB) *GormDashboardRepository {
	return &GormDashboardRepository{db: db}
}

// acceptedStatuses 已被创作者接受的状态集合（含后续流转）
func acceptedStatuses() []string {
	return []string{
		constants.GiftRequestStatusAcceptedNeedAddress,
		constants.GiftRequestStatusReadyForPickup,
		constants.GiftRequestStatusPickedUp,
		constants.GiftRequestStatusDelivered,
	}
}

// GetOverview 获取总览统计
func (r *GormDashboardRepository) GetOverview(startAt, endAt time.Time) (DashboardOverviewRow, error) {
	result := DashboardOverviewRow{}

	requestBase := func() *gorm.DB {
		return r.db.Model(&models.GiftRequest{}).
			Where("created_at >= ? AND created_at < ?", startAt, endAt)
	}

	if err := requestBase().Count(&result.RequestsTotal).Error; err != nil {
		return result, err
	}
	if err := requestBase().Where("status = ?", constants.GiftRequestStatusPending).Count(&result.PendingRequests).Error; err != nil {
		return result, err
	}
	if err := requestBase().Where("status IN ?", acceptedStatuses()).Count(&result.AcceptedRequests).Error; err != nil {
		return result, err
	}
	pickedStatuses := []string{
		constants.GiftRequestStatusPickedUp,
		constants.GiftRequestStatusDelivered,
	}
	if err := requestBase().Where("status IN ?", pickedStatuses).Count(&result.PickedUpRequests).Error; err != nil {
		return result, err
	}
	if err := requestBase().Where("status = ?", constants.GiftRequestStatusDelivered).Count(&result.DeliveredRequests).Error; err != nil {
		return result, err
	}
	if err := requestBase().Where("status = ?", constants.GiftRequestStatusRejected).Count(&result.RejectedRequests).Error; err != nil {
		return result, err
	}

	valueExpr := jsonNumberExpr(r.db, "item_details", "approx_value")
	if err := requestBase().
		Where("status = ?", constants.GiftRequestStatusDelivered).
		Select(fmt.Sprintf("COALESCE(SUM(%s), 0)", valueExpr)).
		Scan(&result.DeliveredValue).Error; err != nil {
		return result, err
	}

	userBase := func() *gorm.DB {
		return r.db.Model(&models.User{}).
			Where("created_at >= ? AND created_at < ?", startAt, endAt)
	}
	if err := userBase().Count(&result.NewUsers).Error; err != nil {
		return result, err
	}
	if err := userBase().Where("role = ?", constants.RoleFan).Count(&result.NewFans).Error; err != nil {
		return result, err
	}
	if err := userBase().Where("role = ?", constants.RoleCreator).Count(&result.NewCreators).Error; err != nil {
		return result, err
	}

	return result, nil
}

// GetRequestTrends 获取请求趋势
func (r *GormDashboardRepository) GetRequestTrends(startAt, endAt time.Time) ([]DashboardRequestTrendRow, error) {
	type countRow struct {
		Day   string
		Total int64
	}

	dayExpr := "CAST(date(created_at) AS TEXT)"
	base := func() *gorm.DB {
		return r.db.Model(&models.GiftRequest{}).
			Select(fmt.Sprintf("%s as day, COUNT(*) as total", dayExpr)).
			Where("created_at >= ? AND created_at < ?", startAt, endAt).
			Group(dayExpr).
			Order("day asc")
	}

	var totals []countRow
	if err := base().Scan(&totals).Error; err != nil {
		return nil, err
	}
	var accepted []countRow
	if err := base().Where("status IN ?", acceptedStatuses()).Scan(&accepted).Error; err != nil {
		return nil, err
	}
	var delivered []countRow
	if err := base().Where("status = ?", constants.GiftRequestStatusDelivered).Scan(&delivered).Error; err != nil {
		return nil, err
	}
	var rejected []countRow
	if err := base().Where("status = ?", constants.GiftRequestStatusRejected).Scan(&rejected).Error; err != nil {
		return nil, err
	}

	acceptedMap := make(map[string]int64, len(accepted))
	for _, item := range accepted {
		acceptedMap[item.Day] = item.Total
	}
	deliveredMap := make(map[string]int64, len(delivered))
	for _, item := range delivered {
		deliveredMap[item.Day] = item.Total
	}
	rejectedMap := make(map[string]int64, len(rejected))
	for _, item := range rejected {
		rejectedMap[item.Day] = item.Total
	}

	result := make([]DashboardRequestTrendRow, 0, len(totals))
	for _, item := range totals {
		result = append(result, DashboardRequestTrendRow{
			Day:       item.Day,
			Total:     item.Total,
			Accepted:  acceptedMap[item.Day],
			Delivered: deliveredMap[item.Day],
			Rejected:  rejectedMap[item.Day],
		})
	}
	return result, nil
}

// GetBacklogStats 获取积压统计（不限时间窗口，反映当前待办）
func (r *GormDashboardRepository) GetBacklogStats(stalePendingHours int64) (DashboardBacklogStatsRow, error) {
	result := DashboardBacklogStatsRow{}

	if err := r.db.Model(&models.GiftRequest{}).
		Where("status = ?", constants.GiftRequestStatusPending).
		Count(&result.PendingRequests).Error; err != nil {
		return result, err
	}

	if stalePendingHours < 1 {
		stalePendingHours = 48
	}
	staleBefore := time.Now().Add(-time.Duration(stalePendingHours) * time.Hour)
	if err := r.db.Model(&models.GiftRequest{}).
		Where("status = ? AND created_at < ?", constants.GiftRequestStatusPending, staleBefore).
		Count(&result.StalePendingRequests).Error; err != nil {
		return result, err
	}

	if err := r.db.Model(&models.GiftRequest{}).
		Where("status = ?", constants.GiftRequestStatusAcceptedNeedAddress).
		Count(&result.AwaitingAddress).Error; err != nil {
		return result, err
	}
	if err := r.db.Model(&models.GiftRequest{}).
		Where("status = ?", constants.GiftRequestStatusReadyForPickup).
		Count(&result.AwaitingPickup).Error; err != nil {
		return result, err
	}

	return result, nil
}

// GetTopCreators 获取收礼最多的创作者排行
func (r *GormDashboardRepository) GetTopCreators(startAt, endAt time.Time, limit int) ([]DashboardCreatorRankingRow, error) {
	if limit < 1 {
		limit = 5
	}

	valueExpr := jsonNumberExpr(r.db, "item_details", "approx_value")
	deliveredStatus := constants.GiftRequestStatusDelivered

	var rows []DashboardCreatorRankingRow
	if err := r.db.Model(&models.GiftRequest{}).
		Select(fmt.Sprintf(
			"creator_id, MAX(creator_name) as creator_name, COUNT(*) as requests_total, "+
				"SUM(CASE WHEN status = '%s' THEN 1 ELSE 0 END) as delivered, "+
				"COALESCE(SUM(CASE WHEN status = '%s' THEN %s ELSE 0 END), 0) as delivered_value",
			deliveredStatus, deliveredStatus, valueExpr)).
		Where("created_at >= ? AND created_at < ?", startAt, endAt).
		Group("creator_id").
		Order("requests_total DESC, delivered DESC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetTopCategories 获取礼物类目排行
func (r *GormDashboardRepository) GetTopCategories(startAt, endAt time.Time, limit int) ([]DashboardCategoryRankingRow, error) {
	if limit < 1 {
		limit = 5
	}

	categoryExpr := jsonTextExpr(r.db, "item_details", "category")
	deliveredStatus := constants.GiftRequestStatusDelivered

	var rows []DashboardCategoryRankingRow
	if err := r.db.Model(&models.GiftRequest{}).
		Select(fmt.Sprintf(
			"COALESCE(%s, '') as category, COUNT(*) as requests_total, "+
				"SUM(CASE WHEN status = '%s' THEN 1 ELSE 0 END) as delivered",
			categoryExpr, deliveredStatus)).
		Where("created_at >= ? AND created_at < ?", startAt, endAt).
		Group(fmt.Sprintf("COALESCE(%s, '')", categoryExpr)).
		Order("requests_total DESC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
