package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/giftify-next/internal/cache"
	"github.com/giftify-next/internal/repository"
)

const (
	dashboardCacheTTL      = 45 * time.Second
	dashboardCustomMaxDays = 90
)

// DashboardService 仪表盘服务
// 说明：聚合后台首页礼物请求运营数据。
type DashboardService struct {
	repo           repository.DashboardRepository
	settingService *SettingService
}

// NewDashboardService 创建仪表盘服务
func NewDashboardService(repo repository.DashboardRepository, settingService *SettingService) *DashboardService {
	return &DashboardService{repo: repo, settingService: settingService}
}

// DashboardQueryInput 仪表盘查询输入
type DashboardQueryInput struct {
	Range        string
	From         *time.Time
	To           *time.Time
	Timezone     string
	ForceRefresh bool
}

// DashboardOverviewResponse 仪表盘总览响应
type DashboardOverviewResponse struct {
	Range    string               `json:"range"`
	From     string               `json:"from"`
	To       string               `json:"to"`
	Timezone string               `json:"timezone"`
	KPI      DashboardKPI         `json:"kpi"`
	Funnel   DashboardFunnel      `json:"funnel"`
	Alerts   []DashboardAlertItem `json:"alerts"`
}

// DashboardKPI 仪表盘核心指标
type DashboardKPI struct {
	RequestsTotal        int64  `json:"requests_total"`
	PendingRequests      int64  `json:"pending_requests"`
	AcceptedRequests     int64  `json:"accepted_requests"`
	PickedUpRequests     int64  `json:"picked_up_requests"`
	DeliveredRequests    int64  `json:"delivered_requests"`
	RejectedRequests     int64  `json:"rejected_requests"`
	DeliveredValue       string `json:"delivered_value"`
	AcceptanceRate       string `json:"acceptance_rate"`
	NewUsers             int64  `json:"new_users"`
	NewFans              int64  `json:"new_fans"`
	NewCreators          int64  `json:"new_creators"`
	PendingBacklog       int64  `json:"pending_backlog"`
	StalePendingRequests int64  `json:"stale_pending_requests"`
	AwaitingAddress      int64  `json:"awaiting_address"`
	AwaitingPickup       int64  `json:"awaiting_pickup"`
}

// DashboardFunnel 仪表盘转化漏斗
type DashboardFunnel struct {
	RequestsCreated   int64  `json:"requests_created"`
	RequestsAccepted  int64  `json:"requests_accepted"`
	RequestsPickedUp  int64  `json:"requests_picked_up"`
	RequestsDelivered int64  `json:"requests_delivered"`
	AcceptanceRate    string `json:"acceptance_rate"`
	DeliveryRate      string `json:"delivery_rate"`
}

// DashboardAlertItem 仪表盘告警项
type DashboardAlertItem struct {
	Type  string `json:"type"`
	Level string `json:"level"`
	Value int64  `json:"value"`
}

// DashboardTrendResponse 仪表盘趋势响应
type DashboardTrendResponse struct {
	Range    string                `json:"range"`
	From     string                `json:"from"`
	To       string                `json:"to"`
	Timezone string                `json:"timezone"`
	Points   []DashboardTrendPoint `json:"points"`
}

// DashboardTrendPoint 趋势点
type DashboardTrendPoint struct {
	Date              string `json:"date"`
	RequestsTotal     int64  `json:"requests_total"`
	RequestsAccepted  int64  `json:"requests_accepted"`
	RequestsDelivered int64  `json:"requests_delivered"`
	RequestsRejected  int64  `json:"requests_rejected"`
}

// DashboardRankingsResponse 仪表盘排行榜响应
type DashboardRankingsResponse struct {
	Range         string                     `json:"range"`
	From          string                     `json:"from"`
	To            string                     `json:"to"`
	Timezone      string                     `json:"timezone"`
	TopCreators   []DashboardCreatorRanking  `json:"top_creators"`
	TopCategories []DashboardCategoryRanking `json:"top_categories"`
}

// DashboardCreatorRanking 创作者排行项
type DashboardCreatorRanking struct {
	CreatorID      uint   `json:"creator_id"`
	CreatorName    string `json:"creator_name"`
	RequestsTotal  int64  `json:"requests_total"`
	Delivered      int64  `json:"delivered"`
	DeliveredValue string `json:"delivered_value"`
	DeliveryRate   string `json:"delivery_rate"`
}

// DashboardCategoryRanking 礼物类目排行项
type DashboardCategoryRanking struct {
	Category      string `json:"category"`
	RequestsTotal int64  `json:"requests_total"`
	Delivered     int64  `json:"delivered"`
}

type dashboardWindow struct {
	rangeKey string
	startAt  time.Time
	endAt    time.Time
	timezone string
}

// GetOverview 获取仪表盘总览
func (s *DashboardService) GetOverview(ctx context.Context, input DashboardQueryInput) (*DashboardOverviewResponse, error) {
	if s == nil || s.repo == nil {
		return &DashboardOverviewResponse{}, nil
	}

	window, err := resolveDashboardWindow(input, time.Now())
	if err != nil {
		return nil, err
	}

	setting := s.loadDashboardSetting()

	cacheKey := fmt.Sprintf("dashboard:overview:%s:%d:%d:%s:%d:%d:%d:%d",
		window.rangeKey,
		window.startAt.Unix(),
		window.endAt.Unix(),
		window.timezone,
		setting.Alert.StalePendingHoursThreshold,
		setting.Alert.StalePendingThreshold,
		setting.Alert.PendingRequestsThreshold,
		setting.Alert.RejectedRequestsThreshold,
	)
	if !input.ForceRefresh {
		var cached DashboardOverviewResponse
		hit, cacheErr := cache.GetJSON(ctx, cacheKey, &cached)
		if cacheErr == nil && hit {
			return &cached, nil
		}
	}

	overview, err := s.repo.GetOverview(window.startAt, window.endAt)
	if err != nil {
		return nil, err
	}
	backlog, err := s.repo.GetBacklogStats(setting.Alert.StalePendingHoursThreshold)
	if err != nil {
		return nil, err
	}

	decided := overview.AcceptedRequests + overview.RejectedRequests
	acceptanceRate := 0.0
	if decided > 0 {
		acceptanceRate = float64(overview.AcceptedRequests) / float64(decided) * 100
	}

	deliveryRate := 0.0
	if overview.AcceptedRequests > 0 {
		deliveryRate = float64(overview.DeliveredRequests) / float64(overview.AcceptedRequests) * 100
	}

	response := &DashboardOverviewResponse{
		Range:    window.rangeKey,
		From:     window.startAt.Format(time.RFC3339),
		To:       window.endAt.Add(-time.Second).Format(time.RFC3339),
		Timezone: window.timezone,
		KPI: DashboardKPI{
			RequestsTotal:        overview.RequestsTotal,
			PendingRequests:      overview.PendingRequests,
			AcceptedRequests:     overview.AcceptedRequests,
			PickedUpRequests:     overview.PickedUpRequests,
			DeliveredRequests:    overview.DeliveredRequests,
			RejectedRequests:     overview.RejectedRequests,
			DeliveredValue:       formatMoneyValue(overview.DeliveredValue),
			AcceptanceRate:       formatPercentValue(acceptanceRate),
			NewUsers:             overview.NewUsers,
			NewFans:              overview.NewFans,
			NewCreators:          overview.NewCreators,
			PendingBacklog:       backlog.PendingRequests,
			StalePendingRequests: backlog.StalePendingRequests,
			AwaitingAddress:      backlog.AwaitingAddress,
			AwaitingPickup:       backlog.AwaitingPickup,
		},
		Funnel: DashboardFunnel{
			RequestsCreated:   overview.RequestsTotal,
			RequestsAccepted:  overview.AcceptedRequests,
			RequestsPickedUp:  overview.PickedUpRequests,
			RequestsDelivered: overview.DeliveredRequests,
			AcceptanceRate:    formatPercentValue(acceptanceRate),
			DeliveryRate:      formatPercentValue(deliveryRate),
		},
		Alerts: buildDashboardAlerts(overview, backlog, setting.Alert),
	}

	_ = cache.SetJSON(ctx, cacheKey, response, dashboardCacheTTL)
	return response, nil
}

// GetTrends 获取仪表盘趋势
func (s *DashboardService) GetTrends(ctx context.Context, input DashboardQueryInput) (*DashboardTrendResponse, error) {
	if s == nil || s.repo == nil {
		return &DashboardTrendResponse{}, nil
	}

	window, err := resolveDashboardWindow(input, time.Now())
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("dashboard:trends:%s:%d:%d:%s", window.rangeKey, window.startAt.Unix(), window.endAt.Unix(), window.timezone)
	if !input.ForceRefresh {
		var cached DashboardTrendResponse
		hit, cacheErr := cache.GetJSON(ctx, cacheKey, &cached)
		if cacheErr == nil && hit {
			return &cached, nil
		}
	}

	rows, err := s.repo.GetRequestTrends(window.startAt, window.endAt)
	if err != nil {
		return nil, err
	}

	rowMap := make(map[string]repository.DashboardRequestTrendRow, len(rows))
	for _, item := range rows {
		rowMap[item.Day] = item
	}

	points := make([]DashboardTrendPoint, 0)
	for cursor := time.Date(window.startAt.Year(), window.startAt.Month(), window.startAt.Day(), 0, 0, 0, 0, window.startAt.Location()); cursor.Before(window.endAt); cursor = cursor.AddDate(0, 0, 1) {
		day := cursor.Format("2006-01-02")
		item := rowMap[day]
		points = append(points, DashboardTrendPoint{
			Date:              day,
			RequestsTotal:     item.Total,
			RequestsAccepted:  item.Accepted,
			RequestsDelivered: item.Delivered,
			RequestsRejected:  item.Rejected,
		})
	}

	response := &DashboardTrendResponse{
		Range:    window.rangeKey,
		From:     window.startAt.Format(time.RFC3339),
		To:       window.endAt.Add(-time.Second).Format(time.RFC3339),
		Timezone: window.timezone,
		Points:   points,
	}

	_ = cache.SetJSON(ctx, cacheKey, response, dashboardCacheTTL)
	return response, nil
}

// GetRankings 获取仪表盘排行榜
func (s *DashboardService) GetRankings(ctx context.Context, input DashboardQueryInput) (*DashboardRankingsResponse, error) {
	if s == nil || s.repo == nil {
		return &DashboardRankingsResponse{}, nil
	}

	window, err := resolveDashboardWindow(input, time.Now())
	if err != nil {
		return nil, err
	}

	setting := s.loadDashboardSetting()

	cacheKey := fmt.Sprintf("dashboard:rankings:%s:%d:%d:%s:%d:%d",
		window.rangeKey,
		window.startAt.Unix(),
		window.endAt.Unix(),
		window.timezone,
		setting.Ranking.TopCreatorsLimit,
		setting.Ranking.TopCategoriesLimit,
	)
	if !input.ForceRefresh {
		var cached DashboardRankingsResponse
		hit, cacheErr := cache.GetJSON(ctx, cacheKey, &cached)
		if cacheErr == nil && hit {
			return &cached, nil
		}
	}

	creatorRows, err := s.repo.GetTopCreators(window.startAt, window.endAt, setting.Ranking.TopCreatorsLimit)
	if err != nil {
		return nil, err
	}
	categoryRows, err := s.repo.GetTopCategories(window.startAt, window.endAt, setting.Ranking.TopCategoriesLimit)
	if err != nil {
		return nil, err
	}

	creators := make([]DashboardCreatorRanking, 0, len(creatorRows))
	for _, item := range creatorRows {
		name := strings.TrimSpace(item.CreatorName)
		if name == "" {
			name = "-"
		}
		rate := 0.0
		if item.RequestsTotal > 0 {
			rate = float64(item.Delivered) / float64(item.RequestsTotal) * 100
		}
		creators = append(creators, DashboardCreatorRanking{
			CreatorID:      item.CreatorID,
			CreatorName:    name,
			RequestsTotal:  item.RequestsTotal,
			Delivered:      item.Delivered,
			DeliveredValue: formatMoneyValue(item.DeliveredValue),
			DeliveryRate:   formatPercentValue(rate),
		})
	}

	categories := make([]DashboardCategoryRanking, 0, len(categoryRows))
	for _, item := range categoryRows {
		category := strings.TrimSpace(item.Category)
		if category == "" {
			category = "-"
		}
		categories = append(categories, DashboardCategoryRanking{
			Category:      category,
			RequestsTotal: item.RequestsTotal,
			Delivered:     item.Delivered,
		})
	}

	response := &DashboardRankingsResponse{
		Range:         window.rangeKey,
		From:          window.startAt.Format(time.RFC3339),
		To:            window.endAt.Add(-time.Second).Format(time.RFC3339),
		Timezone:      window.timezone,
		TopCreators:   creators,
		TopCategories: categories,
	}

	_ = cache.SetJSON(ctx, cacheKey, response, dashboardCacheTTL)
	return response, nil
}

func (s *DashboardService) loadDashboardSetting() DashboardSetting {
	fallback := DashboardDefaultSetting()
	if s == nil || s.settingService == nil {
		return fallback
	}
	setting, err := s.settingService.GetDashboardSetting()
	if err != nil {
		return fallback
	}
	return NormalizeDashboardSetting(setting)
}

func resolveDashboardWindow(input DashboardQueryInput, now time.Time) (dashboardWindow, error) {
	rangeKey := strings.ToLower(strings.TrimSpace(input.Range))
	if rangeKey == "" {
		rangeKey = "7d"
	}

	timezone := strings.TrimSpace(input.Timezone)
	location := time.Local
	if timezone != "" {
		if parsed, err := time.LoadLocation(timezone); err == nil {
			location = parsed
		} else {
			timezone = ""
		}
	}
	if timezone == "" {
		timezone = location.String()
	}

	localNow := now.In(location)
	todayStart := time.Date(localNow.Year(), localNow.Month(), localNow.Day(), 0, 0, 0, 0, location)
	window := dashboardWindow{rangeKey: rangeKey, timezone: timezone}

	switch rangeKey {
	case "today":
		window.startAt = todayStart
		window.endAt = todayStart.AddDate(0, 0, 1)
	case "7d":
		window.startAt = todayStart.AddDate(0, 0, -6)
		window.endAt = todayStart.AddDate(0, 0, 1)
	case "30d":
		window.startAt = todayStart.AddDate(0, 0, -29)
		window.endAt = todayStart.AddDate(0, 0, 1)
	case "custom":
		if input.From == nil || input.To == nil {
			return dashboardWindow{}, ErrDashboardRangeInvalid
		}
		startAt := input.From.In(location)
		endAt := input.To.In(location)
		if endAt.Before(startAt) {
			return dashboardWindow{}, ErrDashboardRangeInvalid
		}
		if endAt.Sub(startAt) > time.Hour*24*dashboardCustomMaxDays {
			return dashboardWindow{}, ErrDashboardRangeInvalid
		}
		window.startAt = startAt
		window.endAt = endAt.Add(time.Second)
	default:
		return dashboardWindow{}, ErrDashboardRangeInvalid
	}

	if !window.endAt.After(window.startAt) {
		return dashboardWindow{}, ErrDashboardRangeInvalid
	}
	return window, nil
}

func formatMoneyValue(value float64) string {
	return fmt.Sprintf("%.2f", value)
}

func formatPercentValue(value float64) string {
	return fmt.Sprintf("%.2f", value)
}

func buildDashboardAlerts(overview repository.DashboardOverviewRow, backlog repository.DashboardBacklogStatsRow, alertSetting DashboardAlertSetting) []DashboardAlertItem {
	alerts := make([]DashboardAlertItem, 0, 4)
	if backlog.StalePendingRequests >= alertSetting.StalePendingThreshold {
		alerts = append(alerts, DashboardAlertItem{Type: "stale_pending_requests", Level: "error", Value: backlog.StalePendingRequests})
	}
	if backlog.PendingRequests >= alertSetting.PendingRequestsThreshold {
		alerts = append(alerts, DashboardAlertItem{Type: "pending_requests", Level: "warning", Value: backlog.PendingRequests})
	}
	if backlog.AwaitingPickup > 0 {
		alerts = append(alerts, DashboardAlertItem{Type: "awaiting_pickup", Level: "warning", Value: backlog.AwaitingPickup})
	}
	if overview.RejectedRequests >= alertSetting.RejectedRequestsThreshold {
		alerts = append(alerts, DashboardAlertItem{Type: "rejected_requests", Level: "warning", Value: overview.RejectedRequests})
	}
	return alerts
}
