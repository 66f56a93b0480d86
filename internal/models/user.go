package models

import (
	"time"

	"gorm.io/gorm"
)

// UserProfile 用户公开资料
type UserProfile struct {
	AvatarURL  string      `json:"avatar_url,omitempty"`
	Bio        string      `json:"bio,omitempty"`
	Categories StringArray `json:"categories,omitempty"`
	Socials    JSON        `json:"socials,omitempty"`
}

// FanNotificationPrefs 粉丝通知偏好
type FanNotificationPrefs struct {
	Approval bool `json:"approval"`
	Pickup   bool `json:"pickup"`
	Delivery bool `json:"delivery"`
	ThankYou bool `json:"thank_you"`
}

// FanSettings 粉丝个人设置
type FanSettings struct {
	DefaultPickupAddress *PickupAddress       `json:"default_pickup_address,omitempty"`
	ConfirmBeforeSubmit  bool                 `json:"confirm_before_submit"`
	Notifications        FanNotificationPrefs `json:"notifications"`
}

// User 用户表
type User struct {
	ID                 uint           `gorm:"primarykey" json:"id"`                         // 主键
	Email              string         `gorm:"uniqueIndex;not null" json:"email"`            // 邮箱
	PasswordHash       string         `gorm:"not null" json:"-"`                            // 密码哈希（不返回给前端）
	Role               string         `gorm:"index;not null;default:'fan'" json:"role"`     // 平台角色（fan/creator/logistics/admin）
	FirstName          string         `gorm:"type:varchar(60)" json:"first_name"`           // 名
	LastName           string         `gorm:"type:varchar(60)" json:"last_name"`            // 姓
	DisplayName        string         `gorm:"default:''" json:"display_name"`               // 昵称
	Verified           bool           `gorm:"not null;default:false;index" json:"verified"` // 是否已认证（创作者目录依赖）
	Onboarded          bool           `gorm:"not null;default:false" json:"onboarded"`      // 是否完成引导
	Status             string         `gorm:"default:'active'" json:"status"`               // 账号状态
	ProfileJSON        JSON           `gorm:"type:json" json:"profile"`                     // 公开资料
	FanSettingsJSON    JSON           `gorm:"type:json" json:"fan_settings"`                // 粉丝设置
	TokenVersion       uint64         `gorm:"not null;default:0" json:"-"`                  // Token 版本（用于全量失效）
	TokenInvalidBefore *time.Time     `gorm:"index" json:"-"`                               // 该时间点前签发的 Token 失效
	LastLoginAt        *time.Time     `json:"last_login_at"`                                // 最后登录时间
	CreatedAt          time.Time      `gorm:"index" json:"created_at"`                      // 创建时间
	UpdatedAt          time.Time      `gorm:"index" json:"updated_at"`                      // 更新时间
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`                               // 软删除时间
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}
