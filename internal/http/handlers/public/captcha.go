package public

import (
	"errors"

	"github.com/giftify-next/internal/constants"
	"github.com/giftify-next/internal/http/response"
	"github.com/giftify-next/internal/service"

	"github.com/gin-gonic/gin"
)

// GetImageCaptcha 获取图片验证码挑战
func (h *Handler) GetImageCaptcha(c *gin.Context) {
	if h.CaptchaService == nil {
		respondError(c, response.CodeInternal, "captcha unavailable", service.ErrCaptchaConfigInvalid)
		return
	}

	challenge, err := h.CaptchaService.GenerateImageChallenge()
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCaptchaConfigInvalid):
			respondError(c, response.CodeBadRequest, "captcha unavailable", nil)
		default:
			respondError(c, response.CodeInternal, "captcha generate failed", err)
		}
		return
	}

	response.Success(c, gin.H{
		"captcha_id":   challenge.CaptchaID,
		"image_base64": challenge.ImageBase64,
	})
}

// verifyCaptchaScene 按场景校验验证码，返回是否放行。
func (h *Handler) verifyCaptchaScene(c *gin.Context, scene string, payload CaptchaPayloadRequest) bool {
	if h.CaptchaService == nil {
		return true
	}
	err := h.CaptchaService.Verify(scene, payload.toServicePayload())
	if err == nil {
		return true
	}
	respondCaptchaError(c, err)
	return false
}

// respondCaptchaError 按验证码错误类型映射响应码。
func respondCaptchaError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCaptchaRequired):
		respondError(c, response.CodeBadRequest, "captcha required", nil)
	case errors.Is(err, service.ErrCaptchaInvalid):
		respondError(c, response.CodeBadRequest, "captcha invalid", nil)
	case errors.Is(err, service.ErrCaptchaConfigInvalid):
		respondError(c, response.CodeInternal, "captcha config invalid", err)
	default:
		respondError(c, response.CodeInternal, "captcha verify failed", err)
	}
}

// captchaLoginFailReason 验证码错误对应的登录日志失败原因。
func captchaLoginFailReason(err error) string {
	switch {
	case errors.Is(err, service.ErrCaptchaRequired):
		return constants.LoginFailReasonCaptchaRequired
	case errors.Is(err, service.ErrCaptchaInvalid):
		return constants.LoginFailReasonCaptchaInvalid
	default:
		return constants.LoginFailReasonInternalError
	}
}
