package admin

import (
	"strconv"
	"strings"
	"time"

	"github.com/giftify-next/internal/cache"
	"github.com/giftify-next/internal/constants"
	"github.com/giftify-next/internal/http/response"
	"github.com/giftify-next/internal/models"
	"github.com/giftify-next/internal/repository"
	"github.com/giftify-next/internal/service"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// UpdateAdminUserRequest 管理员更新用户请求
type UpdateAdminUserRequest struct {
	DisplayName *string `json:"display_name"`
	Role        *string `json:"role"`
	Status      *string `json:"status"`
	Verified    *bool   `json:"verified"`
	Email       *string `json:"email"`
	Password    *string `json:"password"`
}

// BatchUpdateUserStatusRequest 批量更新用户状态请求
type BatchUpdateUserStatusRequest struct {
	UserIDs []uint `json:"user_ids" binding:"required"`
	Status  string `json:"status" binding:"required"`
}

// GetAdminUsers 获取用户列表
func (h *Handler) GetAdminUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	keyword := strings.TrimSpace(c.Query("keyword"))
	role := strings.TrimSpace(c.Query("role"))
	status := strings.TrimSpace(c.Query("status"))

	var verified *bool
	if raw := strings.TrimSpace(c.Query("verified")); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(c, response.CodeBadRequest, "bad request", err)
			return
		}
		verified = &parsed
	}

	createdFrom, ok := queryTimeNullable(c, "created_from")
	if !ok {
		return
	}
	createdTo, ok := queryTimeNullable(c, "created_to")
	if !ok {
		return
	}
	lastLoginFrom, ok := queryTimeNullable(c, "last_login_from")
	if !ok {
		return
	}
	lastLoginTo, ok := queryTimeNullable(c, "last_login_to")
	if !ok {
		return
	}

	users, total, err := h.UserRepo.List(repository.UserListFilter{
		Page:          page,
		PageSize:      pageSize,
		Keyword:       keyword,
		Role:          role,
		Status:        status,
		Verified:      verified,
		CreatedFrom:   createdFrom,
		CreatedTo:     createdTo,
		LastLoginFrom: lastLoginFrom,
		LastLoginTo:   lastLoginTo,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "user fetch failed", err)
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, users, pagination)
}

// GetAdminUser 获取用户详情
func (h *Handler) GetAdminUser(c *gin.Context) {
	user, ok := h.loadUserTarget(c)
	if !ok {
		return
	}
	response.Success(c, user)
}

// UpdateAdminUser 更新用户信息
func (h *Handler) UpdateAdminUser(c *gin.Context) {
	var req UpdateAdminUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, ok := h.loadUserTarget(c)
	if !ok {
		return
	}

	updated := false
	revokeToken := false
	if req.Email != nil {
		normalized, err := service.NormalizeEmail(*req.Email)
		if err != nil {
			respondError(c, response.CodeBadRequest, "email invalid", nil)
			return
		}
		existing, err := h.UserRepo.GetByEmail(normalized)
		if err != nil {
			respondError(c, response.CodeInternal, "user update failed", err)
			return
		}
		if existing != nil && existing.ID != user.ID {
			respondError(c, response.CodeBadRequest, "email already registered", nil)
			return
		}
		if normalized != user.Email {
			user.Email = normalized
			updated = true
		}
	}
	if req.DisplayName != nil {
		trimmed := strings.TrimSpace(*req.DisplayName)
		if trimmed != "" {
			user.DisplayName = trimmed
			updated = true
		}
	}
	if req.Password != nil {
		trimmed := strings.TrimSpace(*req.Password)
		if trimmed != "" {
			hashed, err := bcrypt.GenerateFromPassword([]byte(trimmed), bcrypt.DefaultCost)
			if err != nil {
				respondError(c, response.CodeInternal, "user update failed", err)
				return
			}
			user.PasswordHash = string(hashed)
			updated = true
			revokeToken = true
		}
	}
	if req.Role != nil {
		trimmed := strings.ToLower(strings.TrimSpace(*req.Role))
		switch trimmed {
		case constants.RoleFan, constants.RoleCreator, constants.RoleLogistics:
			if user.Role != trimmed {
				user.Role = trimmed
				updated = true
				revokeToken = true
			}
		default:
			respondError(c, response.CodeBadRequest, "role not supported", nil)
			return
		}
	}
	if req.Verified != nil {
		if user.Verified != *req.Verified {
			user.Verified = *req.Verified
			updated = true
		}
	}
	if req.Status != nil {
		trimmed := strings.ToLower(strings.TrimSpace(*req.Status))
		if trimmed == constants.UserStatusActive || trimmed == constants.UserStatusDisabled {
			if user.Status != trimmed {
				user.Status = trimmed
				updated = true
			}
			if trimmed == constants.UserStatusDisabled {
				revokeToken = true
			}
		}
	}

	if !updated {
		respondError(c, response.CodeBadRequest, "bad request", nil)
		return
	}

	now := time.Now()
	user.UpdatedAt = now
	if revokeToken {
		user.TokenVersion++
		user.TokenInvalidBefore = &now
	}
	if err := h.UserRepo.Update(user); err != nil {
		respondError(c, response.CodeInternal, "user update failed", err)
		return
	}
	_ = cache.SetUserAuthState(c.Request.Context(), cache.BuildUserAuthState(user))

	response.Success(c, user)
}

// BatchUpdateUserStatus 批量更新用户状态
func (h *Handler) BatchUpdateUserStatus(c *gin.Context) {
	var req BatchUpdateUserStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	if len(req.UserIDs) == 0 {
		respondError(c, response.CodeBadRequest, "bad request", nil)
		return
	}
	normalizedStatus := strings.ToLower(strings.TrimSpace(req.Status))
	if normalizedStatus != constants.UserStatusActive && normalizedStatus != constants.UserStatusDisabled {
		respondError(c, response.CodeBadRequest, "bad request", nil)
		return
	}

	if err := h.UserRepo.BatchUpdateStatus(req.UserIDs, normalizedStatus); err != nil {
		respondError(c, response.CodeInternal, "user update failed", err)
		return
	}
	for _, userID := range req.UserIDs {
		_ = cache.DelUserAuthState(c.Request.Context(), userID)
	}

	response.Success(c, gin.H{"updated": len(req.UserIDs)})
}

// loadUserTarget 解析路径里的用户 ID 并加载用户，失败时已写入响应。
func (h *Handler) loadUserTarget(c *gin.Context) (*models.User, bool) {
	rawID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || rawID == 0 {
		respondError(c, response.CodeBadRequest, "user id invalid", nil)
		return nil, false
	}

	user, err := h.UserRepo.GetByID(uint(rawID))
	if err != nil {
		respondError(c, response.CodeInternal, "user fetch failed", err)
		return nil, false
	}
	if user == nil {
		respondError(c, response.CodeNotFound, "user not found", nil)
		return nil, false
	}
	return user, true
}

// queryTimeNullable 解析可选的时间查询参数，格式非法时已写入响应。
func queryTimeNullable(c *gin.Context, name string) (*time.Time, bool) {
	value, err := parseTimeNullable(strings.TrimSpace(c.Query(name)))
	if err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return nil, false
	}
	return value, true
}
