package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/giftify-next/internal/http/response"
	"github.com/giftify-next/internal/service"

	"github.com/gin-gonic/gin"
)

// GetDashboardOverview 获取后台仪表盘总览
func (h *Handler) GetDashboardOverview(c *gin.Context) {
	h.serveDashboard(c, func(input service.DashboardQueryInput) (interface{}, error) {
		return h.DashboardService.GetOverview(c.Request.Context(), input)
	})
}

// GetDashboardRankings 获取后台仪表盘排行榜
func (h *Handler) GetDashboardRankings(c *gin.Context) {
	h.serveDashboard(c, func(input service.DashboardQueryInput) (interface{}, error) {
		return h.DashboardService.GetRankings(c.Request.Context(), input)
	})
}

// GetDashboardTrends 获取后台仪表盘趋势
func (h *Handler) GetDashboardTrends(c *gin.Context) {
	h.serveDashboard(c, func(input service.DashboardQueryInput) (interface{}, error) {
		return h.DashboardService.GetTrends(c.Request.Context(), input)
	})
}

// serveDashboard 仪表盘接口共用的取数流程：解析查询参数、调服务、统一错误映射。
func (h *Handler) serveDashboard(c *gin.Context, fetch func(service.DashboardQueryInput) (interface{}, error)) {
	input, err := parseDashboardQuery(c)
	if err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	data, err := fetch(input)
	if err != nil {
		if errors.Is(err, service.ErrDashboardRangeInvalid) {
			respondError(c, response.CodeBadRequest, "bad request", nil)
			return
		}
		respondError(c, response.CodeInternal, "dashboard fetch failed", err)
		return
	}

	response.Success(c, data)
}

func parseDashboardQuery(c *gin.Context) (service.DashboardQueryInput, error) {
	rangeRaw := strings.TrimSpace(c.DefaultQuery("range", "7d"))
	timezone := strings.TrimSpace(c.Query("tz"))

	from, err := parseTimeNullable(strings.TrimSpace(c.Query("from")))
	if err != nil {
		return service.DashboardQueryInput{}, err
	}
	to, err := parseTimeNullable(strings.TrimSpace(c.Query("to")))
	if err != nil {
		return service.DashboardQueryInput{}, err
	}

	forceRefresh := false
	if raw := strings.TrimSpace(c.Query("force_refresh")); raw != "" {
		forceRefresh, err = strconv.ParseBool(raw)
		if err != nil {
			return service.DashboardQueryInput{}, err
		}
	}

	return service.DashboardQueryInput{
		Range:        rangeRaw,
		From:         from,
		To:           to,
		Timezone:     timezone,
		ForceRefresh: forceRefresh,
	}, nil
}
