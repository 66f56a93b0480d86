package public

import (
	"errors"

	"github.com/giftify-next/internal/http/response"
	"github.com/giftify-next/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
// loud 的映射在响应前记 warn 日志，越权与非法流转多半是前端状态不同步或调用方 bug。
type mappedHandlerError struct {
	target error
	code   int
	msg    string
	loud   bool
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			msg := rule.msg
			if msg == "" {
				msg = err.Error()
			}
			if rule.loud {
				requestLog(c).Warnw("gift_request_denied",
					"code", rule.code,
					"path", c.FullPath(),
					"error", err,
				)
			}
			respondError(c, rule.code, msg, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

func concatMappedHandlerErrors(groups ...[]mappedHandlerError) []mappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]mappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

// 礼物请求各操作共用的错误映射。
// ErrPolicyDenied 与 ErrValidation 留空 msg，直接透出带原因的错误文案。
var giftRequestCommonErrorRules = []mappedHandlerError{
	{target: service.ErrGiftRequestNotFound, code: response.CodeRecordNotFound, msg: "gift request not found"},
	{target: service.ErrForbidden, code: response.CodeRoleForbidden, msg: "forbidden", loud: true},
	{target: service.ErrInvalidTransition, code: response.CodeInvalidTransition, msg: "operation not allowed in current status", loud: true},
	{target: service.ErrValidation, code: response.CodeValidationFailed},
	{target: service.ErrCreatorNotFound, code: response.CodeRecordNotFound, msg: "creator not found"},
	{target: service.ErrNotFound, code: response.CodeRecordNotFound, msg: "record not found"},
}

var giftRequestCreateExtraErrorRules = []mappedHandlerError{
	{target: service.ErrPolicyDenied, code: response.CodePolicyDenied},
	{target: service.ErrUserDisabled, code: response.CodeRoleForbidden, msg: "account disabled"},
}

func respondGiftRequestError(c *gin.Context, err error) {
	respondWithMappedError(c, err, giftRequestCommonErrorRules, response.CodeInternal, "gift request operation failed")
}

func respondGiftRequestCreateError(c *gin.Context, err error) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(giftRequestCreateExtraErrorRules, giftRequestCommonErrorRules), response.CodeInternal, "gift request create failed")
}

var creatorDirectoryErrorRules = []mappedHandlerError{
	{target: service.ErrCreatorNotFound, code: response.CodeNotFound, msg: "creator not found"},
	{target: service.ErrNotFound, code: response.CodeNotFound, msg: "record not found"},
}

func respondCreatorDirectoryError(c *gin.Context, err error) {
	respondWithMappedError(c, err, creatorDirectoryErrorRules, response.CodeInternal, "creator directory operation failed")
}

var notificationErrorRules = []mappedHandlerError{
	{target: service.ErrNotificationNotFound, code: response.CodeNotFound, msg: "notification not found"},
}

func respondNotificationError(c *gin.Context, err error) {
	respondWithMappedError(c, err, notificationErrorRules, response.CodeInternal, "notification operation failed")
}
