package service

import "errors"

// 礼物请求业务错误
var (
	ErrGiftRequestNotFound     = errors.New("礼物请求不存在")
	ErrGiftRequestFetchFailed  = errors.New("礼物请求查询失败")
	ErrGiftRequestCreateFailed = errors.New("礼物请求创建失败")
	ErrGiftRequestUpdateFailed = errors.New("礼物请求更新失败")
	ErrForbidden               = errors.New("无权操作该礼物请求")
	ErrInvalidTransition       = errors.New("当前状态不允许该操作")
	ErrPolicyDenied            = errors.New("安全策略拒绝发送")
	ErrValidation              = errors.New("请求数据不合法")
)

// 用户与认证错误
var (
	ErrNotFound           = errors.New("记录不存在")
	ErrInvalidCredentials = errors.New("账号或密码错误")
	ErrInvalidEmail       = errors.New("邮箱格式不正确")
	ErrEmailExists        = errors.New("邮箱已被注册")
	ErrUserDisabled       = errors.New("账号已被禁用")
	ErrInvalidPassword    = errors.New("原密码不正确")
	ErrWeakPassword       = errors.New("密码不符合安全要求")
	ErrProfileEmpty       = errors.New("没有可更新的资料字段")
	ErrRoleInvalid        = errors.New("不支持的平台角色")
	ErrCreatorNotFound    = errors.New("创作者不存在")
)

// 验证码错误
var (
	ErrCaptchaRequired      = errors.New("需要验证码")
	ErrCaptchaInvalid       = errors.New("验证码错误")
	ErrCaptchaConfigInvalid = errors.New("验证码配置不合法")
)

// 设置错误
var (
	ErrGiftingConfigInvalid   = errors.New("礼物策略配置不合法")
	ErrLogisticsConfigInvalid = errors.New("物流配置不合法")
)

// 通知错误
var (
	ErrNotificationTypeInvalid = errors.New("不支持的通知类型")
	ErrNotificationNotFound    = errors.New("通知不存在")
)

// 队列错误
var ErrQueueUnavailable = errors.New("队列服务不可用")

// 仪表盘错误
var ErrDashboardRangeInvalid = errors.New("仪表盘时间范围不合法")

// policyDeniedError 携带拒绝原因的安全策略错误
type policyDeniedError struct {
	reason string
}

func (e policyDeniedError) Error() string {
	return ErrPolicyDenied.Error() + ": " + e.reason
}

func (e policyDeniedError) Is(target error) bool {
	return target == ErrPolicyDenied
}

// Reason 返回拒绝原因编码
func (e policyDeniedError) Reason() string {
	return e.reason
}

// NewPolicyDeniedError 构造携带原因的策略拒绝错误
func NewPolicyDeniedError(reason string) error {
	return policyDeniedError{reason: reason}
}

// PolicyDenyReason 提取策略拒绝原因，非策略错误返回空串
func PolicyDenyReason(err error) string {
	var denied policyDeniedError
	if errors.As(err, &denied) {
		return denied.reason
	}
	return ""
}

// validationError 携带字段信息的校验错误
type validationError struct {
	field string
}

func (e validationError) Error() string {
	return ErrValidation.Error() + ": " + e.field
}

func (e validationError) Is(target error) bool {
	return target == ErrValidation
}

// Field 返回未通过校验的字段
func (e validationError) Field() string {
	return e.field
}

// NewValidationError 构造携带字段的校验错误
func NewValidationError(field string) error {
	return validationError{field: field}
}

// ValidationField 提取校验失败字段，非校验错误返回空串
func ValidationField(err error) string {
	var invalid validationError
	if errors.As(err, &invalid) {
		return invalid.field
	}
	return ""
}
