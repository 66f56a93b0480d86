package models

import "time"

// Notification 站内通知表
// 由队列任务异步写入，失败不影响触发它的状态流转。
type Notification struct {
	ID             uint      `gorm:"primarykey" json:"id"`                        // 主键
	NotificationNo string    `gorm:"uniqueIndex;not null" json:"notification_no"` // 通知编号
	UserID         uint      `gorm:"index;not null" json:"user_id"`               // 接收用户ID
	Type           string    `gorm:"index;not null" json:"type"`                  // 通知类型
	Title          string    `gorm:"type:varchar(200)" json:"title"`              // 标题
	Body           string    `gorm:"type:text" json:"body"`                       // 内容
	RequestNo      string    `gorm:"index" json:"request_no,omitempty"`           // 关联礼物请求编号
	Read           bool      `gorm:"not null;default:false;index" json:"read"`    // 是否已读
	CreatedAt      time.Time `gorm:"index" json:"created_at"`                     // 创建时间
}

// TableName 指定表名
func (Notification) TableName() string {
	return "notifications"
}
