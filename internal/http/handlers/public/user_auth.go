package public

import (
	"errors"
	"strings"
	"time"

	"github.com/giftify-next/internal/constants"
	handlershared "github.com/giftify-next/internal/http/handlers/shared"
	"github.com/giftify-next/internal/http/response"
	"github.com/giftify-next/internal/models"
	"github.com/giftify-next/internal/service"

	"github.com/gin-gonic/gin"
)

// UserRegisterRequest 用户注册请求
type UserRegisterRequest struct {
	Email          string                `json:"email" binding:"required"`
	Password       string                `json:"password" binding:"required"`
	Role           string                `json:"role"`
	FirstName      string                `json:"first_name"`
	LastName       string                `json:"last_name"`
	DisplayName    string                `json:"display_name"`
	CaptchaPayload CaptchaPayloadRequest `json:"captcha_payload"`
}

// UserRegister 用户注册
func (h *Handler) UserRegister(c *gin.Context) {
	var req UserRegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	if !h.verifyCaptchaScene(c, constants.CaptchaSceneRegister, req.CaptchaPayload) {
		return
	}

	user, token, expiresAt, err := h.UserAuthService.Register(service.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		Role:        req.Role,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidEmail):
			respondError(c, response.CodeBadRequest, "email invalid", nil)
		case errors.Is(err, service.ErrEmailExists):
			respondError(c, response.CodeBadRequest, "email already registered", nil)
		case errors.Is(err, service.ErrRoleInvalid):
			respondError(c, response.CodeBadRequest, "role not supported", nil)
		case errors.Is(err, service.ErrWeakPassword):
			respondError(c, response.CodeBadRequest, "password too weak", nil)
		default:
			respondError(c, response.CodeInternal, "register failed", err)
		}
		return
	}

	response.Success(c, gin.H{
		"user":       userAuthResponse(user),
		"token":      token,
		"expires_at": expiresAt.Format(time.RFC3339),
	})
}

// UserLoginRequest 用户登录请求
type UserLoginRequest struct {
	Email          string                `json:"email" binding:"required"`
	Password       string                `json:"password" binding:"required"`
	RememberMe     bool                  `json:"remember_me"`
	CaptchaPayload CaptchaPayloadRequest `json:"captcha_payload"`
}

// UserLogin 用户登录
func (h *Handler) UserLogin(c *gin.Context) {
	var req UserLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.recordUserLogin(c, "", 0, constants.LoginLogStatusFailed, constants.LoginFailReasonBadRequest, constants.LoginLogSourceWeb)
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	// 登录失败也记审计日志，原因码随错误类型走
	failLogin := func(reason string, code int, msg string, cause error) {
		h.recordUserLogin(c, req.Email, 0, constants.LoginLogStatusFailed, reason, constants.LoginLogSourceWeb)
		respondError(c, code, msg, cause)
	}

	if h.CaptchaService != nil {
		if captchaErr := h.CaptchaService.Verify(constants.CaptchaSceneLogin, req.CaptchaPayload.toServicePayload()); captchaErr != nil {
			h.recordUserLogin(c, req.Email, 0, constants.LoginLogStatusFailed, captchaLoginFailReason(captchaErr), constants.LoginLogSourceWeb)
			respondCaptchaError(c, captchaErr)
			return
		}
	}

	user, token, expiresAt, err := h.UserAuthService.LoginWithRememberMe(req.Email, req.Password, req.RememberMe)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidEmail):
			failLogin(constants.LoginFailReasonBadRequest, response.CodeBadRequest, "email invalid", nil)
		case errors.Is(err, service.ErrInvalidCredentials):
			failLogin(constants.LoginFailReasonInvalidCredentials, response.CodeUnauthorized, "email or password incorrect", nil)
		case errors.Is(err, service.ErrUserDisabled):
			failLogin(constants.LoginFailReasonUserDisabled, response.CodeUnauthorized, "account disabled", nil)
		default:
			failLogin(constants.LoginFailReasonInternalError, response.CodeInternal, "login failed", err)
		}
		return
	}

	h.recordUserLogin(c, user.Email, user.ID, constants.LoginLogStatusSuccess, "", constants.LoginLogSourceWeb)
	response.Success(c, gin.H{
		"user":       userAuthResponse(user),
		"token":      token,
		"expires_at": expiresAt.Format(time.RFC3339),
	})
}

func (h *Handler) recordUserLogin(c *gin.Context, email string, userID uint, status, failReason, source string) {
	if h == nil || h.UserLoginLogService == nil {
		return
	}
	_ = h.UserLoginLogService.Record(service.RecordUserLoginInput{
		UserID:      userID,
		Email:       email,
		Status:      status,
		FailReason:  failReason,
		ClientIP:    c.ClientIP(),
		UserAgent:   c.GetHeader("User-Agent"),
		LoginSource: source,
		RequestID:   strings.TrimSpace(handlershared.RequestID(c)),
	})
}

// GetCurrentUser 获取当前用户信息
func (h *Handler) GetCurrentUser(c *gin.Context) {
	id, ok := getUserID(c)
	if !ok {
		return
	}

	user, err := h.UserAuthService.GetUserByID(id)
	if err != nil {
		respondError(c, response.CodeInternal, "user fetch failed", err)
		return
	}
	if user == nil {
		respondError(c, response.CodeNotFound, "user not found", nil)
		return
	}

	response.Success(c, userAuthResponse(user))
}

// UserUpdateProfileRequest 更新资料请求（nil 字段不改动）
type UserUpdateProfileRequest struct {
	FirstName   *string  `json:"first_name"`
	LastName    *string  `json:"last_name"`
	DisplayName *string  `json:"display_name"`
	AvatarURL   *string  `json:"avatar_url"`
	Bio         *string  `json:"bio"`
	Categories  []string `json:"categories"`
	Onboarded   *bool    `json:"onboarded"`
}

// UpdateMyProfile 更新当前用户资料
func (h *Handler) UpdateMyProfile(c *gin.Context) {
	id, ok := getUserID(c)
	if !ok {
		return
	}

	var req UserUpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.UserAuthService.UpdateProfile(id, service.UpdateProfileInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		DisplayName: req.DisplayName,
		AvatarURL:   req.AvatarURL,
		Bio:         req.Bio,
		Categories:  req.Categories,
		Onboarded:   req.Onboarded,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProfileEmpty):
			respondError(c, response.CodeBadRequest, "no profile fields to update", nil)
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "user not found", nil)
		default:
			respondError(c, response.CodeInternal, "save failed", err)
		}
		return
	}

	response.Success(c, userAuthResponse(user))
}

// GetMyFanSettings 获取当前粉丝设置
func (h *Handler) GetMyFanSettings(c *gin.Context) {
	id, ok := getUserID(c)
	if !ok {
		return
	}

	settings, err := h.UserAuthService.GetFanSettings(id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "user not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "user fetch failed", err)
		return
	}
	response.Success(c, settings)
}

// UserUpdateFanSettingsRequest 更新粉丝设置请求
type UserUpdateFanSettingsRequest struct {
	DefaultPickupAddress *service.PickupAddressInput  `json:"default_pickup_address"`
	ClearDefaultAddress  bool                         `json:"clear_default_address"`
	ConfirmBeforeSubmit  *bool                        `json:"confirm_before_submit"`
	Notifications        *models.FanNotificationPrefs `json:"notifications"`
}

// UpdateMyFanSettings 更新当前粉丝设置
func (h *Handler) UpdateMyFanSettings(c *gin.Context) {
	id, ok := getUserID(c)
	if !ok {
		return
	}

	var req UserUpdateFanSettingsRequest
	if !bindJSON(c, &req) {
		return
	}

	settings, err := h.UserAuthService.UpdateFanSettings(id, service.UpdateFanSettingsInput{
		DefaultPickupAddress: req.DefaultPickupAddress,
		ClearDefaultAddress:  req.ClearDefaultAddress,
		ConfirmBeforeSubmit:  req.ConfirmBeforeSubmit,
		Notifications:        req.Notifications,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			respondError(c, response.CodeBadRequest, err.Error(), nil)
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "user not found", nil)
		default:
			respondError(c, response.CodeInternal, "save failed", err)
		}
		return
	}

	response.Success(c, settings)
}

// UserChangePasswordRequest 修改密码请求
type UserChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// ChangeMyPassword 修改当前用户密码
func (h *Handler) ChangeMyPassword(c *gin.Context) {
	id, ok := getUserID(c)
	if !ok {
		return
	}

	var req UserChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.UserAuthService.ChangePassword(id, req.OldPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPassword):
			respondError(c, response.CodeBadRequest, "old password incorrect", nil)
		case errors.Is(err, service.ErrWeakPassword):
			respondError(c, response.CodeBadRequest, "password too weak", nil)
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "user not found", nil)
		default:
			respondError(c, response.CodeInternal, "save failed", err)
		}
		return
	}

	response.Success(c, gin.H{"updated": true})
}

func userAuthResponse(user *models.User) gin.H {
	if user == nil {
		return gin.H{}
	}
	return gin.H{
		"id":            user.ID,
		"email":         user.Email,
		"role":          user.Role,
		"first_name":    user.FirstName,
		"last_name":     user.LastName,
		"display_name":  user.DisplayName,
		"verified":      user.Verified,
		"onboarded":     user.Onboarded,
		"profile":       user.ProfileJSON,
		"last_login_at": user.LastLoginAt,
	}
}
