package service

import (
	"unicode"

	"github.com/giftify-next/internal/config"
)

// passwordPolicyError 密码策略校验失败，key 对应具体不满足的规则
type passwordPolicyError struct {
	key  string
	args []interface{}
}

func (e passwordPolicyError) Error() string {
	return e.key
}

func (e passwordPolicyError) Is(target error) bool {
	return target == ErrWeakPassword
}

func (e passwordPolicyError) Key() string {
	return e.key
}

func (e passwordPolicyError) Args() []interface{} {
	return e.args
}

// validatePassword 按配置的密码策略逐项校验，全部关闭时直接放行
func validatePassword(policy config.PasswordPolicyConfig, password string) error {
	if policy.MinLength <= 0 &&
		!policy.RequireUpper &&
		!policy.RequireLower &&
		!policy.RequireNumber &&
		!policy.RequireSpecial {
		return nil
	}

	if policy.MinLength > 0 && len([]rune(password)) < policy.MinLength {
		return passwordPolicyError{key: "error.password_min_length", args: []interface{}{policy.MinLength}}
	}

	var hasUpper, hasLower, hasNumber, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasNumber = true
		default:
			hasSpecial = true
		}
	}

	rules := []struct {
		required bool
		ok       bool
		key      string
	}{
		{policy.RequireUpper, hasUpper, "error.password_require_upper"},
		{policy.RequireLower, hasLower, "error.password_require_lower"},
		{policy.RequireNumber, hasNumber, "error.password_require_number"},
		{policy.RequireSpecial, hasSpecial, "error.password_require_special"},
	}
	for _, rule := range rules {
		if rule.required && !rule.ok {
			return passwordPolicyError{key: rule.key}
		}
	}

	return nil
}
