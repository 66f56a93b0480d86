package models

import "time"

// Favorite 粉丝收藏的创作者
type Favorite struct {
	ID        uint      `gorm:"primarykey" json:"id"`                                // 主键
	FanID     uint      `gorm:"index:idx_fav_pair,unique;not null" json:"fan_id"`    // 粉丝ID
	CreatorID uint      `gorm:"index:idx_fav_pair,unique;not null" json:"creator_id"` // 创作者ID
	CreatedAt time.Time `gorm:"index" json:"created_at"`                             // 收藏时间
}

// TableName 指定表名
func (Favorite) TableName() string {
	return "favorites"
}
