package repository

import "time"

// GiftRequestListFilter 查询礼物请求列表的过滤条件
type GiftRequestListFilter struct {
	Page         int
	PageSize     int
	FanID        uint
	CreatorID    uint
	Status       string
	Statuses     []string
	RequestNo    string
	Search       string
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
	PendingFirst bool
}

// CreatorListFilter 查询创作者目录的过滤条件
type CreatorListFilter struct {
	Page         int
	PageSize     int
	Search       string
	Category     string
	OnlyVerified bool
}

// UserListFilter 查询用户列表的过滤条件
type UserListFilter struct {
	Page          int
	PageSize      int
	Keyword       string
	Role          string
	Status        string
	Verified      *bool
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
	LastLoginFrom *time.Time
	LastLoginTo   *time.Time
}

// NotificationListFilter 查询站内通知列表的过滤条件
type NotificationListFilter struct {
	Page       int
	PageSize   int
	UserID     uint
	Type       string
	OnlyUnread bool
}

// UserLoginLogListFilter 查询用户登录日志列表的过滤条件
type UserLoginLogListFilter struct {
	Page        int
	PageSize    int
	UserID      uint
	Email       string
	Status      string
	FailReason  string
	ClientIP    string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// AuthzAuditLogListFilter 查询权限审计日志列表的过滤条件
type AuthzAuditLogListFilter struct {
	Page            int
	PageSize        int
	OperatorAdminID uint
	TargetAdminID   uint
	Action          string
	Role            string
	Object          string
	Method          string
	CreatedFrom     *time.Time
	CreatedTo       *time.Time
}
