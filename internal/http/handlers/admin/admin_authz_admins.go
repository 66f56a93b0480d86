package admin

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/giftify-next/internal/cache"
	"github.com/giftify-next/internal/http/response"
	"github.com/giftify-next/internal/logger"
	"github.com/giftify-next/internal/models"
	"github.com/giftify-next/internal/service"

	"github.com/gin-gonic/gin"
)

const protectedSuperAdminUsername = "admin"

var (
	errUsernameRequired   = errors.New("username is required")
	errUsernameWhitespace = errors.New("username contains whitespace")
	errUsernameLength     = errors.New("username length out of range")
)

type authzCreateAdminPayload struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	IsSuper  *bool  `json:"is_super"`
}

type authzUpdateAdminPayload struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
	IsSuper  *bool   `json:"is_super"`
}

// CreateAuthzAdmin 创建管理员
func (h *Handler) CreateAuthzAdmin(c *gin.Context) {
	var req authzCreateAdminPayload
	if !bindJSON(c, &req) {
		return
	}

	username, err := normalizeAdminUsername(req.Username)
	if err != nil {
		respondError(c, response.CodeBadRequest, "username invalid", err)
		return
	}

	existing, err := h.AdminRepo.GetByUsername(username)
	if err != nil {
		respondError(c, response.CodeInternal, "admin create failed", err)
		return
	}
	if existing != nil {
		respondError(c, response.CodeBadRequest, "username already exists", nil)
		return
	}

	hash, ok := h.hashValidatedPassword(c, req.Password, "admin create failed")
	if !ok {
		return
	}

	// admin 账号始终保持超级管理员，防止把自己锁在门外
	isSuper := req.IsSuper != nil && *req.IsSuper
	if isProtectedAdminUsername(username) {
		isSuper = true
	}

	admin := &models.Admin{
		Username:     username,
		PasswordHash: hash,
		IsSuper:      isSuper,
	}
	if err := h.AdminRepo.Create(admin); err != nil {
		respondError(c, response.CodeInternal, "admin create failed", err)
		return
	}

	_ = cache.SetAdminAuthState(c.Request.Context(), cache.BuildAdminAuthState(admin))

	h.auditAdminChange(c, "admin_create", admin.ID, admin.Username, models.JSON{
		"target_admin_id": admin.ID,
		"target_username": admin.Username,
		"is_super":        admin.IsSuper,
	})
	logger.Infow("admin_authz_admin_created",
		"operator_admin_id", currentAdminID(c),
		"target_admin_id", admin.ID,
		"target_username", admin.Username,
		"is_super", admin.IsSuper,
	)

	response.Success(c, admin)
}

// UpdateAuthzAdmin 更新管理员
func (h *Handler) UpdateAuthzAdmin(c *gin.Context) {
	adminID, ok := parseAdminIDParam(c)
	if !ok {
		return
	}
	admin, ok := h.loadAdminTarget(c, adminID, "admin update failed")
	if !ok {
		return
	}

	var req authzUpdateAdminPayload
	if !bindJSON(c, &req) {
		return
	}

	updatedFields := make([]string, 0, 3)

	if req.Username != nil {
		normalizedUsername, err := normalizeAdminUsername(*req.Username)
		if err != nil {
			respondError(c, response.CodeBadRequest, "username invalid", err)
			return
		}
		if normalizedUsername != admin.Username {
			existing, err := h.AdminRepo.GetByUsername(normalizedUsername)
			if err != nil {
				respondError(c, response.CodeInternal, "admin update failed", err)
				return
			}
			if existing != nil && existing.ID != admin.ID {
				respondError(c, response.CodeBadRequest, "username already exists", nil)
				return
			}
			admin.Username = normalizedUsername
			updatedFields = append(updatedFields, "username")
		}
	}

	if req.IsSuper != nil {
		nextIsSuper := *req.IsSuper
		if isProtectedAdminUsername(admin.Username) {
			nextIsSuper = true
		}
		if admin.IsSuper != nextIsSuper {
			admin.IsSuper = nextIsSuper
			updatedFields = append(updatedFields, "is_super")
		}
	}

	if req.Password != nil {
		hash, ok := h.hashValidatedPassword(c, *req.Password, "admin update failed")
		if !ok {
			return
		}
		// 改密后旧 token 全部失效
		admin.PasswordHash = hash
		now := time.Now()
		admin.TokenVersion++
		admin.TokenInvalidBefore = &now
		updatedFields = append(updatedFields, "password")
	}

	if len(updatedFields) == 0 {
		respondError(c, response.CodeBadRequest, "bad request", nil)
		return
	}

	if err := h.AdminRepo.Update(admin); err != nil {
		respondError(c, response.CodeInternal, "admin update failed", err)
		return
	}
	_ = cache.SetAdminAuthState(c.Request.Context(), cache.BuildAdminAuthState(admin))

	sort.Strings(updatedFields)
	if currentAdminID(c) == admin.ID {
		c.Set("admin_is_super", admin.IsSuper)
	}

	h.auditAdminChange(c, "admin_update", admin.ID, admin.Username, models.JSON{
		"target_admin_id": admin.ID,
		"target_username": admin.Username,
		"updated_fields":  updatedFields,
		"is_super":        admin.IsSuper,
	})
	logger.Infow("admin_authz_admin_updated",
		"operator_admin_id", currentAdminID(c),
		"target_admin_id", admin.ID,
		"target_username", admin.Username,
		"updated_fields", updatedFields,
	)

	response.Success(c, admin)
}

// DeleteAuthzAdmin 删除管理员
func (h *Handler) DeleteAuthzAdmin(c *gin.Context) {
	adminID, ok := parseAdminIDParam(c)
	if !ok {
		return
	}
	admin, ok := h.loadAdminTarget(c, adminID, "admin delete failed")
	if !ok {
		return
	}
	if currentAdminID(c) == adminID {
		respondError(c, response.CodeBadRequest, "cannot delete current admin", nil)
		return
	}
	if isProtectedAdminUsername(admin.Username) {
		respondError(c, response.CodeBadRequest, "cannot delete protected admin", nil)
		return
	}

	count, err := h.AdminRepo.Count()
	if err != nil {
		respondError(c, response.CodeInternal, "admin delete failed", err)
		return
	}
	if count <= 1 {
		respondError(c, response.CodeBadRequest, "cannot delete the last admin", nil)
		return
	}

	// 先清空角色绑定再删账号，避免 casbin 里残留孤儿策略
	if err := h.AuthzService.SetAdminRoles(adminID, []string{}); err != nil {
		respondError(c, response.CodeInternal, "admin delete failed", err)
		return
	}
	if err := h.AdminRepo.Delete(adminID); err != nil {
		respondError(c, response.CodeInternal, "admin delete failed", err)
		return
	}
	_ = cache.DelAdminAuthState(c.Request.Context(), adminID)

	h.auditAdminChange(c, "admin_delete", adminID, admin.Username, models.JSON{
		"target_admin_id": adminID,
		"target_username": admin.Username,
	})
	logger.Infow("admin_authz_admin_deleted",
		"operator_admin_id", currentAdminID(c),
		"target_admin_id", adminID,
		"target_username", admin.Username,
	)

	response.Success(c, nil)
}

// loadAdminTarget 按 ID 加载被操作的管理员，未找到时直接写入错误响应。
func (h *Handler) loadAdminTarget(c *gin.Context, adminID uint, failMsg string) (*models.Admin, bool) {
	admin, err := h.AdminRepo.GetByID(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, failMsg, err)
		return nil, false
	}
	if admin == nil {
		respondError(c, response.CodeBadRequest, "admin id invalid", nil)
		return nil, false
	}
	return admin, true
}

// hashValidatedPassword 校验密码策略并生成哈希，失败时已写入响应。
func (h *Handler) hashValidatedPassword(c *gin.Context, password, failMsg string) (string, bool) {
	password = strings.TrimSpace(password)
	if password == "" {
		respondError(c, response.CodeBadRequest, "password too weak", nil)
		return "", false
	}
	if err := h.AuthService.ValidatePassword(password); err != nil {
		if respondAdminPasswordPolicyError(c, err) {
			return "", false
		}
		respondError(c, response.CodeBadRequest, "password too weak", err)
		return "", false
	}
	hash, err := h.AuthService.HashPassword(password)
	if err != nil {
		respondError(c, response.CodeInternal, failMsg, err)
		return "", false
	}
	return hash, true
}

func (h *Handler) auditAdminChange(c *gin.Context, action string, targetID uint, targetUsername string, details models.JSON) {
	entry := h.authzAuditEntry(c, action, details)
	entry.TargetAdminID = &targetID
	entry.TargetUsername = targetUsername
	h.recordAuthzAudit(entry)
}

func isProtectedAdminUsername(username string) bool {
	return strings.EqualFold(strings.TrimSpace(username), protectedSuperAdminUsername)
}

func normalizeAdminUsername(username string) (string, error) {
	trimmed := strings.TrimSpace(username)
	if trimmed == "" {
		return "", errUsernameRequired
	}
	if strings.ContainsAny(trimmed, " \t\r\n") {
		return "", errUsernameWhitespace
	}
	length := len([]rune(trimmed))
	if length < 3 || length > 64 {
		return "", errUsernameLength
	}
	return trimmed, nil
}

func respondAdminPasswordPolicyError(c *gin.Context, err error) bool {
	if err == nil || !errors.Is(err, service.ErrWeakPassword) {
		return false
	}
	respondError(c, response.CodeBadRequest, "password too weak", nil)
	return true
}
