package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// GiftItemDetails 礼物信息
// 请求被接受后冻结，不再允许修改。
type GiftItemDetails struct {
	Name             string `json:"name"`
	Description      string `json:"description"`
	ApproxValue      Money  `json:"approx_value"`
	Category         string `json:"category"`
	Packing          string `json:"packing,omitempty"`
	Note             string `json:"note,omitempty"`
	SensitiveContent bool   `json:"sensitive_content"`
}

// Value 实现 driver.Valuer 接口
func (d GiftItemDetails) Value() (driver.Value, error) {
	return json.Marshal(d)
}

// Scan 实现 sql.Scanner 接口
func (d *GiftItemDetails) Scan(value interface{}) error {
	return scanJSON(value, d)
}

// PickupAddress 取件地址
type PickupAddress struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

// PickupDetails 取件信息（仅粉丝本人可写，创作者永不可见）
type PickupDetails struct {
	Address      PickupAddress `json:"address"`
	ContactPhone string        `json:"contact_phone"`
	Instructions string        `json:"instructions,omitempty"`
}

// Value 实现 driver.Valuer 接口
func (d *PickupDetails) Value() (driver.Value, error) {
	if d == nil {
		return nil, nil
	}
	return json.Marshal(d)
}

// Scan 实现 sql.Scanner 接口
func (d *PickupDetails) Scan(value interface{}) error {
	return scanJSON(value, d)
}

// GiftLogistics 物流信息（仅物流角色可写）
type GiftLogistics struct {
	Weight         float64 `json:"weight"`
	TrackingNumber string  `json:"tracking_number,omitempty"`
}

// Value 实现 driver.Valuer 接口
func (l GiftLogistics) Value() (driver.Value, error) {
	return json.Marshal(l)
}

// Scan 实现 sql.Scanner 接口
func (l *GiftLogistics) Scan(value interface{}) error {
	return scanJSON(value, l)
}

// Timeline 状态时间线（事件名 → 时间，只追加不覆盖）
type Timeline map[string]time.Time

// Value 实现 driver.Valuer 接口
func (t Timeline) Value() (driver.Value, error) {
	if t == nil {
		return json.Marshal(Timeline{})
	}
	return json.Marshal(t)
}

// Scan 实现 sql.Scanner 接口
func (t *Timeline) Scan(value interface{}) error {
	if value == nil {
		*t = make(Timeline)
		return nil
	}
	return scanJSON(value, t)
}

// Stamped 返回事件是否已记录
func (t Timeline) Stamped(event string) bool {
	_, ok := t[event]
	return ok
}

// GiftRequest 礼物请求表
type GiftRequest struct {
	ID            uint            `gorm:"primarykey" json:"id"`                     // 主键
	RequestNo     string          `gorm:"uniqueIndex;not null" json:"request_no"`   // 请求编号
	FanID         uint            `gorm:"index;not null" json:"fan_id"`             // 粉丝ID（创建后不可变）
	FanName       string          `gorm:"type:varchar(120)" json:"fan_name"`        // 粉丝昵称（冗余）
	CreatorID     uint            `gorm:"index;not null" json:"creator_id"`         // 创作者ID（创建后不可变）
	CreatorName   string          `gorm:"type:varchar(120)" json:"creator_name"`    // 创作者昵称（冗余）
	Status        string          `gorm:"index;not null" json:"status"`             // 请求状态
	ItemDetails   GiftItemDetails `gorm:"type:json;not null" json:"item_details"`   // 礼物信息
	PickupDetails *PickupDetails  `gorm:"type:json" json:"pickup_details,omitempty"` // 取件信息
	Logistics     GiftLogistics   `gorm:"type:json" json:"logistics"`               // 物流信息
	Timeline      Timeline        `gorm:"type:json" json:"timeline"`                // 状态时间线
	CreatedAt     time.Time       `gorm:"index" json:"created_at"`                  // 创建时间
	UpdatedAt     time.Time       `gorm:"index" json:"updated_at"`                  // 更新时间
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`                           // 软删除时间
}

// TableName 指定表名
func (GiftRequest) TableName() string {
	return "gift_requests"
}

func scanJSON(value interface{}, dest interface{}) error {
	if value == nil {
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		s, ok := value.(string)
		if !ok {
			return nil
		}
		bytes = []byte(s)
	}
	if len(bytes) == 0 {
		return nil
	}
	return json.Unmarshal(bytes, dest)
}
