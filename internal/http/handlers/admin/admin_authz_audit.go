package admin

import (
	"strconv"
	"strings"

	"github.com/giftify-next/internal/http/response"
	"github.com/giftify-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListAuthzAuditLogs 获取权限审计日志列表
func (h *Handler) ListAuthzAuditLogs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	operatorAdminID, ok := queryUintFilter(c, "operator_admin_id")
	if !ok {
		return
	}
	targetAdminID, ok := queryUintFilter(c, "target_admin_id")
	if !ok {
		return
	}
	createdFrom, ok := queryTimeNullable(c, "created_from")
	if !ok {
		return
	}
	createdTo, ok := queryTimeNullable(c, "created_to")
	if !ok {
		return
	}

	items, total, err := h.AuthzAuditService.ListForAdmin(repository.AuthzAuditLogListFilter{
		Page:            page,
		PageSize:        pageSize,
		OperatorAdminID: operatorAdminID,
		TargetAdminID:   targetAdminID,
		Action:          strings.TrimSpace(c.Query("action")),
		Role:            strings.TrimSpace(c.Query("role")),
		Object:          strings.TrimSpace(c.Query("object")),
		Method:          strings.TrimSpace(c.Query("method")),
		CreatedFrom:     createdFrom,
		CreatedTo:       createdTo,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "authz config fetch failed", err)
		return
	}

	response.SuccessWithPage(c, items, response.BuildPagination(page, pageSize, total))
}

// queryUintFilter 解析可选的无符号整数查询参数，缺省时返回零值。
func queryUintFilter(c *gin.Context, name string) (uint, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, true
	}
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return 0, false
	}
	return uint(parsed), true
}
