package service

import (
	"time"

	"github.com/giftify-next/internal/constants"
	"github.com/giftify-next/internal/models"
)

// GiftRequestFanView 粉丝视角的礼物请求
type GiftRequestFanView struct {
	ID            uint                   `json:"id"`
	RequestNo     string                 `json:"request_no"`
	CreatorID     uint                   `json:"creator_id"`
	CreatorName   string                 `json:"creator_name"`
	Status        string                 `json:"status"`
	ItemDetails   models.GiftItemDetails `json:"item_details"`
	PickupDetails *models.PickupDetails  `json:"pickup_details,omitempty"`
	Timeline      models.Timeline        `json:"timeline"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

// GiftRequestCreatorView 创作者视角的礼物请求
// 结构上不包含取件信息字段，粉丝地址对创作者永不可见
type GiftRequestCreatorView struct {
	ID          uint                   `json:"id"`
	RequestNo   string                 `json:"request_no"`
	FanID       uint                   `json:"fan_id"`
	FanName     string                 `json:"fan_name"`
	Status      string                 `json:"status"`
	ItemDetails models.GiftItemDetails `json:"item_details"`
	Timeline    models.Timeline        `json:"timeline"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

// GiftRequestLogisticsView 物流视角的礼物请求
// 结构上不包含粉丝身份字段，仅凭请求编号操作
type GiftRequestLogisticsView struct {
	ID            uint                   `json:"id"`
	RequestNo     string                 `json:"request_no"`
	CreatorID     uint                   `json:"creator_id"`
	CreatorName   string                 `json:"creator_name"`
	Status        string                 `json:"status"`
	ItemDetails   models.GiftItemDetails `json:"item_details"`
	PickupDetails *models.PickupDetails  `json:"pickup_details,omitempty"`
	Logistics     models.GiftLogistics   `json:"logistics"`
	Timeline      models.Timeline        `json:"timeline"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

// ProjectGiftRequestForFan 粉丝投影
func ProjectGiftRequestForFan(request *models.GiftRequest) GiftRequestFanView {
	return GiftRequestFanView{
		ID:            request.ID,
		RequestNo:     request.RequestNo,
		CreatorID:     request.CreatorID,
		CreatorName:   request.CreatorName,
		Status:        request.Status,
		ItemDetails:   request.ItemDetails,
		PickupDetails: request.PickupDetails,
		Timeline:      request.Timeline,
		CreatedAt:     request.CreatedAt,
		UpdatedAt:     request.UpdatedAt,
	}
}

// ProjectGiftRequestForCreator 创作者投影
func ProjectGiftRequestForCreator(request *models.GiftRequest) GiftRequestCreatorView {
	return GiftRequestCreatorView{
		ID:          request.ID,
		RequestNo:   request.RequestNo,
		FanID:       request.FanID,
		FanName:     request.FanName,
		Status:      request.Status,
		ItemDetails: request.ItemDetails,
		Timeline:    request.Timeline,
		CreatedAt:   request.CreatedAt,
		UpdatedAt:   request.UpdatedAt,
	}
}

// ProjectGiftRequestForLogistics 物流投影
func ProjectGiftRequestForLogistics(request *models.GiftRequest) GiftRequestLogisticsView {
	return GiftRequestLogisticsView{
		ID:            request.ID,
		RequestNo:     request.RequestNo,
		CreatorID:     request.CreatorID,
		CreatorName:   request.CreatorName,
		Status:        request.Status,
		ItemDetails:   request.ItemDetails,
		PickupDetails: request.PickupDetails,
		Logistics:     request.Logistics,
		Timeline:      request.Timeline,
		CreatedAt:     request.CreatedAt,
		UpdatedAt:     request.UpdatedAt,
	}
}

// ProjectGiftRequestForRole 按角色投影，管理员返回完整模型
func ProjectGiftRequestForRole(request *models.GiftRequest, role string) interface{} {
	if request == nil {
		return nil
	}
	switch role {
	case constants.RoleFan:
		return ProjectGiftRequestForFan(request)
	case constants.RoleCreator:
		return ProjectGiftRequestForCreator(request)
	case constants.RoleLogistics:
		return ProjectGiftRequestForLogistics(request)
	case constants.RoleAdmin:
		return request
	default:
		return nil
	}
}

// ProjectGiftRequestListForRole 列表投影
func ProjectGiftRequestListForRole(requests []models.GiftRequest, role string) []interface{} {
	result := make([]interface{}, 0, len(requests))
	for i := range requests {
		view := ProjectGiftRequestForRole(&requests[i], role)
		if view == nil {
			continue
		}
		result = append(result, view)
	}
	return result
}
