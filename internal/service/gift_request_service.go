package service

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/giftify-next/internal/cache"
	"github.com/giftify-next/internal/constants"
	"github.com/giftify-next/internal/logger"
	"github.com/giftify-next/internal/models"
	"github.com/giftify-next/internal/repository"

	"github.com/shopspring/decimal"
)

// giftRequestTransitions 状态流转表，未列出的边一律非法
var giftRequestTransitions = map[string]map[string]bool{
	constants.GiftRequestStatusPending: {
		constants.GiftRequestStatusAcceptedNeedAddress: true,
		constants.GiftRequestStatusRejected:            true,
	},
	constants.GiftRequestStatusAcceptedNeedAddress: {
		constants.GiftRequestStatusReadyForPickup: true,
	},
	constants.GiftRequestStatusReadyForPickup: {
		constants.GiftRequestStatusPickedUp: true,
	},
	constants.GiftRequestStatusPickedUp: {
		constants.GiftRequestStatusDelivered: true,
	},
}

// Actor 操作者身份
type Actor struct {
	ID   uint
	Role string
}

// GiftItemDetailsInput 礼物信息输入
// ApproxValue 接受任意原始输入，非法值按 0 处理
type GiftItemDetailsInput struct {
	Name             string      `json:"name"`
	Description      string      `json:"description"`
	ApproxValue      interface{} `json:"approx_value"`
	Category         string      `json:"category"`
	Packing          string      `json:"packing"`
	Note             string      `json:"note"`
	SensitiveContent bool        `json:"sensitive_content"`
}

// CreateGiftRequestInput 创建礼物请求输入
type CreateGiftRequestInput struct {
	CreatorID uint
	Item      GiftItemDetailsInput
}

// PickupAddressInput 取件地址输入
type PickupAddressInput struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

// SubmitPickupAddressInput 提交取件地址输入
// Address 为空时回退粉丝默认地址
type SubmitPickupAddressInput struct {
	Address      *PickupAddressInput `json:"address"`
	ContactPhone string              `json:"contact_phone"`
	Instructions string              `json:"instructions"`
}

// MarkPickedUpInput 取件标记输入
type MarkPickedUpInput struct {
	Weight         float64 `json:"weight"`
	TrackingNumber string  `json:"tracking_number"`
}

// ListGiftRequestInput 礼物请求列表查询输入
type ListGiftRequestInput struct {
	Status       string
	Search       string
	PendingFirst bool
	Page         int
	PageSize     int
}

// AdminUpdateGiftRequestInput 管理端覆盖写输入
type AdminUpdateGiftRequestInput struct {
	Status        *string                   `json:"status"`
	Item          *GiftItemDetailsInput     `json:"item_details"`
	PickupDetails *SubmitPickupAddressInput `json:"pickup_details"`
	Logistics     *MarkPickedUpInput        `json:"logistics"`
}

// GiftRequestService 礼物请求生命周期服务
type GiftRequestService struct {
	giftRequestRepo     repository.GiftRequestRepository
	userRepo            repository.UserRepository
	settingService      *SettingService
	notificationService *NotificationService
}

// NewGiftRequestService 创建礼物请求服务
func NewGiftRequestService(giftRequestRepo repository.GiftRequestRepository, userRepo repository.UserRepository, settingService *SettingService, notificationService *NotificationService) *GiftRequestService {
	return &GiftRequestService{
		giftRequestRepo:     giftRequestRepo,
		userRepo:            userRepo,
		settingService:      settingService,
		notificationService: notificationService,
	}
}

// BuildPolicyContext 装配安全策略上下文
func (s *GiftRequestService) BuildPolicyContext(ctx context.Context, fanID, creatorID uint) (PolicyContext, error) {
	global, err := s.settingService.GetGiftingGlobalSetting()
	if err != nil {
		return PolicyContext{}, err
	}
	override, err := s.settingService.GetCreatorOverride(creatorID)
	if err != nil {
		return PolicyContext{}, err
	}
	sentCount, err := s.dailySentCount(ctx, fanID)
	if err != nil {
		return PolicyContext{}, err
	}
	return PolicyContext{
		Global:         global,
		Override:       override,
		DailySentCount: sentCount,
	}, nil
}

// Create 粉丝发起礼物请求
func (s *GiftRequestService) Create(ctx context.Context, actor Actor, input CreateGiftRequestInput) (*models.GiftRequest, error) {
	if actor.Role != constants.RoleFan {
		return nil, ErrForbidden
	}
	fan, err := s.userRepo.GetByID(actor.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGiftRequestCreateFailed, err)
	}
	if fan == nil || fan.Status != constants.UserStatusActive {
		return nil, ErrForbidden
	}
	creator, err := s.userRepo.GetByID(input.CreatorID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGiftRequestCreateFailed, err)
	}
	if creator == nil || creator.Role != constants.RoleCreator || creator.Status != constants.UserStatusActive {
		return nil, ErrCreatorNotFound
	}

	item, err := normalizeItemDetails(input.Item)
	if err != nil {
		return nil, err
	}

	policyCtx, err := s.BuildPolicyContext(ctx, fan.ID, creator.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGiftRequestCreateFailed, err)
	}
	if decision := CanSend(policyCtx); !decision.Allowed {
		return nil, NewPolicyDeniedError(decision.Reason)
	}

	now := time.Now()
	request := &models.GiftRequest{
		RequestNo:   generateGiftRequestNo(),
		FanID:       fan.ID,
		FanName:     userDisplayName(fan),
		CreatorID:   creator.ID,
		CreatorName: userDisplayName(creator),
		Status:      constants.GiftRequestStatusPending,
		ItemDetails: item,
		Timeline: models.Timeline{
			constants.TimelineEventCreated: now,
		},
	}
	if err := s.giftRequestRepo.Create(request); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGiftRequestCreateFailed, err)
	}

	if err := cache.IncrDailySentCount(ctx, fan.ID, now.UTC()); err != nil {
		logger.Warnw("gift_quota_incr_failed", "fan_id", fan.ID, "error", err)
	}

	s.notify(NotificationEnqueueInput{
		Type:      constants.NotificationTypeGiftReceived,
		UserID:    creator.ID,
		RequestNo: request.RequestNo,
		Body:      fmt.Sprintf("%s wants to send you a gift: %s (#%s)", request.FanName, item.Name, request.RequestNo),
	})
	return request, nil
}

// Respond 创作者接受或拒绝请求
func (s *GiftRequestService) Respond(ctx context.Context, actor Actor, requestNo, decision string) (*models.GiftRequest, error) {
	if actor.Role != constants.RoleCreator {
		return nil, ErrForbidden
	}
	request, err := s.getByRequestNo(requestNo)
	if err != nil {
		return nil, err
	}
	if request.CreatorID != actor.ID {
		return nil, ErrForbidden
	}

	var toStatus, timelineEvent, notificationType string
	switch strings.ToLower(strings.TrimSpace(decision)) {
	case constants.RespondDecisionAccept:
		toStatus = constants.GiftRequestStatusAcceptedNeedAddress
		timelineEvent = constants.TimelineEventAccepted
		notificationType = constants.NotificationTypeGiftAccepted
	case constants.RespondDecisionReject:
		toStatus = constants.GiftRequestStatusRejected
		timelineEvent = constants.TimelineEventRejected
		notificationType = constants.NotificationTypeGiftRejected
	default:
		return nil, NewValidationError("decision")
	}

	updated, err := s.transition(request, constants.GiftRequestStatusPending, toStatus, timelineEvent, nil)
	if err != nil {
		return nil, err
	}

	s.notify(NotificationEnqueueInput{
		Type:      notificationType,
		UserID:    updated.FanID,
		RequestNo: updated.RequestNo,
	})
	return updated, nil
}

// SubmitPickupAddress 粉丝提交取件地址
func (s *GiftRequestService) SubmitPickupAddress(ctx context.Context, actor Actor, requestNo string, input SubmitPickupAddressInput) (*models.GiftRequest, error) {
	if actor.Role != constants.RoleFan {
		return nil, ErrForbidden
	}
	request, err := s.getByRequestNo(requestNo)
	if err != nil {
		return nil, err
	}
	if request.FanID != actor.ID {
		return nil, ErrForbidden
	}

	details, err := s.resolvePickupDetails(actor.ID, input)
	if err != nil {
		return nil, err
	}

	updated, err := s.transition(request,
		constants.GiftRequestStatusAcceptedNeedAddress,
		constants.GiftRequestStatusReadyForPickup,
		constants.TimelineEventReadyForPickup,
		map[string]interface{}{"pickup_details": details},
	)
	if err != nil {
		return nil, err
	}

	s.notify(NotificationEnqueueInput{
		Type:      constants.NotificationTypeGiftReady,
		UserID:    updated.CreatorID,
		RequestNo: updated.RequestNo,
		Body:      fmt.Sprintf("Gift request #%s is ready for pickup", updated.RequestNo),
	})
	return updated, nil
}

// MarkPickedUp 物流标记已取件
func (s *GiftRequestService) MarkPickedUp(ctx context.Context, actor Actor, requestNo string, input MarkPickedUpInput) (*models.GiftRequest, error) {
	if actor.Role != constants.RoleLogistics {
		return nil, ErrForbidden
	}
	request, err := s.getByRequestNo(requestNo)
	if err != nil {
		return nil, err
	}

	logistics := request.Logistics
	if input.Weight > 0 {
		logistics.Weight = input.Weight
	}
	if trimmed := strings.TrimSpace(input.TrackingNumber); trimmed != "" {
		logistics.TrackingNumber = trimmed
	}

	updated, err := s.transition(request,
		constants.GiftRequestStatusReadyForPickup,
		constants.GiftRequestStatusPickedUp,
		constants.TimelineEventPickedUp,
		map[string]interface{}{"logistics": logistics},
	)
	if err != nil {
		return nil, err
	}

	s.notify(NotificationEnqueueInput{
		Type:      constants.NotificationTypeGiftPickedUp,
		UserID:    updated.FanID,
		RequestNo: updated.RequestNo,
	})
	return updated, nil
}

// MarkDelivered 物流标记已送达
func (s *GiftRequestService) MarkDelivered(ctx context.Context, actor Actor, requestNo string) (*models.GiftRequest, error) {
	if actor.Role != constants.RoleLogistics {
		return nil, ErrForbidden
	}
	request, err := s.getByRequestNo(requestNo)
	if err != nil {
		return nil, err
	}

	updated, err := s.transition(request,
		constants.GiftRequestStatusPickedUp,
		constants.GiftRequestStatusDelivered,
		constants.TimelineEventDelivered,
		nil,
	)
	if err != nil {
		return nil, err
	}

	s.notify(NotificationEnqueueInput{
		Type:      constants.NotificationTypeGiftDelivered,
		UserID:    updated.FanID,
		RequestNo: updated.RequestNo,
	})
	return updated, nil
}

// UpdateItemDetails 粉丝修改礼物信息，仅待处理状态允许
func (s *GiftRequestService) UpdateItemDetails(actor Actor, requestNo string, input GiftItemDetailsInput) (*models.GiftRequest, error) {
	if actor.Role != constants.RoleFan {
		return nil, ErrForbidden
	}
	request, err := s.getByRequestNo(requestNo)
	if err != nil {
		return nil, err
	}
	if request.FanID != actor.ID {
		return nil, ErrForbidden
	}
	if request.Status != constants.GiftRequestStatusPending {
		return nil, ErrInvalidTransition
	}

	item, err := normalizeItemDetails(input)
	if err != nil {
		return nil, err
	}

	// 状态守卫写入：接受后的并发修改会因状态不再是 pending 而落空
	ok, err := s.giftRequestRepo.UpdateStatusFrom(request.ID,
		constants.GiftRequestStatusPending,
		constants.GiftRequestStatusPending,
		map[string]interface{}{"item_details": item},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGiftRequestUpdateFailed, err)
	}
	if !ok {
		return nil, ErrInvalidTransition
	}
	return s.getByRequestNo(requestNo)
}

// Get 按角色获取单个请求的投影视图
func (s *GiftRequestService) Get(actor Actor, requestNo string) (interface{}, error) {
	request, err := s.getByRequestNo(requestNo)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeRead(actor, request); err != nil {
		return nil, err
	}
	return ProjectGiftRequestForRole(request, actor.Role), nil
}

// List 按角色列出请求（自动限定可见范围并投影）
func (s *GiftRequestService) List(actor Actor, input ListGiftRequestInput) ([]interface{}, int64, error) {
	filter := repository.GiftRequestListFilter{
		Page:         input.Page,
		PageSize:     input.PageSize,
		Status:       strings.TrimSpace(input.Status),
		Search:       strings.TrimSpace(input.Search),
		PendingFirst: input.PendingFirst,
	}
	switch actor.Role {
	case constants.RoleFan:
		filter.FanID = actor.ID
	case constants.RoleCreator:
		filter.CreatorID = actor.ID
	case constants.RoleLogistics:
		// 物流只关心进入履约链路的请求
		if filter.Status == "" {
			filter.Statuses = []string{
				constants.GiftRequestStatusReadyForPickup,
				constants.GiftRequestStatusPickedUp,
				constants.GiftRequestStatusDelivered,
			}
		}
	case constants.RoleAdmin:
	default:
		return nil, 0, ErrForbidden
	}

	requests, total, err := s.giftRequestRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrGiftRequestFetchFailed, err)
	}
	return ProjectGiftRequestListForRole(requests, actor.Role), total, nil
}

// CountByStatus 状态分布统计（管理端看板）
func (s *GiftRequestService) CountByStatus(actor Actor) (map[string]int64, error) {
	if actor.Role != constants.RoleAdmin {
		return nil, ErrForbidden
	}
	return s.giftRequestRepo.CountByStatus()
}

// AdminUpdate 管理端覆盖写：可强制任意字段，状态变更仍补记时间线
func (s *GiftRequestService) AdminUpdate(actor Actor, requestNo string, input AdminUpdateGiftRequestInput) (*models.GiftRequest, error) {
	if actor.Role != constants.RoleAdmin {
		return nil, ErrForbidden
	}
	request, err := s.getByRequestNo(requestNo)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if input.Item != nil {
		item, itemErr := normalizeItemDetails(*input.Item)
		if itemErr != nil {
			return nil, itemErr
		}
		updates["item_details"] = item
	}
	if input.PickupDetails != nil {
		details, detailsErr := buildPickupDetails(*input.PickupDetails)
		if detailsErr != nil {
			return nil, detailsErr
		}
		updates["pickup_details"] = details
	}
	if input.Logistics != nil {
		logistics := request.Logistics
		if input.Logistics.Weight > 0 {
			logistics.Weight = input.Logistics.Weight
		}
		if trimmed := strings.TrimSpace(input.Logistics.TrackingNumber); trimmed != "" {
			logistics.TrackingNumber = trimmed
		}
		updates["logistics"] = logistics
	}
	if input.Status != nil {
		toStatus := strings.TrimSpace(*input.Status)
		if !isGiftRequestStatus(toStatus) {
			return nil, NewValidationError("status")
		}
		if toStatus != request.Status {
			timeline := cloneTimeline(request.Timeline)
			if event := timelineEventForStatus(toStatus); event != "" && !timeline.Stamped(event) {
				timeline[event] = time.Now()
			}
			updates["status"] = toStatus
			updates["timeline"] = timeline
		}
	}

	if len(updates) == 0 {
		return request, nil
	}
	if err := s.giftRequestRepo.UpdateFields(request.ID, updates); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGiftRequestUpdateFailed, err)
	}
	return s.getByRequestNo(requestNo)
}

// AdminDelete 管理端删除请求（破坏性覆盖，正常流程从不删除）
func (s *GiftRequestService) AdminDelete(actor Actor, requestNo string) error {
	if actor.Role != constants.RoleAdmin {
		return ErrForbidden
	}
	request, err := s.getByRequestNo(requestNo)
	if err != nil {
		return err
	}
	if err := s.giftRequestRepo.Delete(request.ID); err != nil {
		return fmt.Errorf("%w: %v", ErrGiftRequestUpdateFailed, err)
	}
	return nil
}

// transition 统一的条件状态流转：校验流转表、CAS 写入、追加时间线
func (s *GiftRequestService) transition(request *models.GiftRequest, fromStatus, toStatus, timelineEvent string, extraUpdates map[string]interface{}) (*models.GiftRequest, error) {
	if request.Status != fromStatus {
		logger.Warnw("gift_request_transition_conflict",
			"request_no", request.RequestNo,
			"expected_status", fromStatus,
			"actual_status", request.Status,
			"to_status", toStatus,
		)
		return nil, ErrInvalidTransition
	}
	if !isGiftTransitionAllowed(fromStatus, toStatus) {
		return nil, ErrInvalidTransition
	}

	timeline := cloneTimeline(request.Timeline)
	if !timeline.Stamped(timelineEvent) {
		timeline[timelineEvent] = time.Now()
	}

	updates := map[string]interface{}{"timeline": timeline}
	for key, value := range extraUpdates {
		updates[key] = value
	}

	ok, err := s.giftRequestRepo.UpdateStatusFrom(request.ID, fromStatus, toStatus, updates)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGiftRequestUpdateFailed, err)
	}
	if !ok {
		// 并发竞争或前置状态已变化，按非法流转处理
		logger.Warnw("gift_request_transition_conflict",
			"request_no", request.RequestNo,
			"expected_status", fromStatus,
			"to_status", toStatus,
			"cas_miss", true,
		)
		return nil, ErrInvalidTransition
	}
	return s.getByRequestNo(request.RequestNo)
}

func (s *GiftRequestService) getByRequestNo(requestNo string) (*models.GiftRequest, error) {
	requestNo = strings.TrimSpace(requestNo)
	if requestNo == "" {
		return nil, ErrGiftRequestNotFound
	}
	request, err := s.giftRequestRepo.GetByRequestNo(requestNo)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGiftRequestFetchFailed, err)
	}
	if request == nil {
		return nil, ErrGiftRequestNotFound
	}
	return request, nil
}

func (s *GiftRequestService) authorizeRead(actor Actor, request *models.GiftRequest) error {
	switch actor.Role {
	case constants.RoleFan:
		if request.FanID != actor.ID {
			return ErrForbidden
		}
	case constants.RoleCreator:
		if request.CreatorID != actor.ID {
			return ErrForbidden
		}
	case constants.RoleLogistics, constants.RoleAdmin:
	default:
		return ErrForbidden
	}
	return nil
}

// resolvePickupDetails 校验提交的地址，缺省时回退粉丝默认地址
func (s *GiftRequestService) resolvePickupDetails(fanID uint, input SubmitPickupAddressInput) (*models.PickupDetails, error) {
	if input.Address == nil {
		fan, err := s.userRepo.GetByID(fanID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrGiftRequestUpdateFailed, err)
		}
		if fan != nil {
			settings := fanSettingsFromJSON(fan.FanSettingsJSON)
			if settings.DefaultPickupAddress != nil {
				input.Address = &PickupAddressInput{
					Street:  settings.DefaultPickupAddress.Street,
					City:    settings.DefaultPickupAddress.City,
					State:   settings.DefaultPickupAddress.State,
					Zip:     settings.DefaultPickupAddress.Zip,
					Country: settings.DefaultPickupAddress.Country,
				}
			}
		}
	}
	return buildPickupDetails(input)
}

func buildPickupDetails(input SubmitPickupAddressInput) (*models.PickupDetails, error) {
	if input.Address == nil {
		return nil, NewValidationError("pickup_details.address")
	}
	address := models.PickupAddress{
		Street:  strings.TrimSpace(input.Address.Street),
		City:    strings.TrimSpace(input.Address.City),
		State:   strings.TrimSpace(input.Address.State),
		Zip:     strings.TrimSpace(input.Address.Zip),
		Country: strings.TrimSpace(input.Address.Country),
	}
	switch {
	case address.Street == "":
		return nil, NewValidationError("pickup_details.address.street")
	case address.City == "":
		return nil, NewValidationError("pickup_details.address.city")
	case address.State == "":
		return nil, NewValidationError("pickup_details.address.state")
	case address.Zip == "":
		return nil, NewValidationError("pickup_details.address.zip")
	case address.Country == "":
		return nil, NewValidationError("pickup_details.address.country")
	}
	phone := strings.TrimSpace(input.ContactPhone)
	if phone == "" {
		return nil, NewValidationError("pickup_details.contact_phone")
	}
	return &models.PickupDetails{
		Address:      address,
		ContactPhone: phone,
		Instructions: strings.TrimSpace(input.Instructions),
	}, nil
}

func normalizeItemDetails(input GiftItemDetailsInput) (models.GiftItemDetails, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return models.GiftItemDetails{}, NewValidationError("item_details.name")
	}
	return models.GiftItemDetails{
		Name:             name,
		Description:      strings.TrimSpace(input.Description),
		ApproxValue:      coerceApproxValue(input.ApproxValue),
		Category:         strings.TrimSpace(input.Category),
		Packing:          normalizePackingType(input.Packing),
		Note:             strings.TrimSpace(input.Note),
		SensitiveContent: input.SensitiveContent,
	}, nil
}

// coerceApproxValue 金额输入容错：缺失、非法、负数一律按 0
func coerceApproxValue(raw interface{}) models.Money {
	zero := models.ZeroMoney()
	if raw == nil {
		return zero
	}
	var value decimal.Decimal
	switch v := raw.(type) {
	case float64:
		value = decimal.NewFromFloat(v)
	case float32:
		value = decimal.NewFromFloat(float64(v))
	case int:
		value = decimal.NewFromInt(int64(v))
	case int64:
		value = decimal.NewFromInt(v)
	case uint:
		value = decimal.NewFromInt(int64(v))
	case json.Number:
		parsed, err := decimal.NewFromString(v.String())
		if err != nil {
			return zero
		}
		value = parsed
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return zero
		}
		parsed, err := decimal.NewFromString(trimmed)
		if err != nil {
			return zero
		}
		value = parsed
	case models.Money:
		value = v.Decimal
	case decimal.Decimal:
		value = v
	default:
		return zero
	}
	if value.IsNegative() {
		return zero
	}
	return models.NewMoneyFromDecimal(value)
}

func normalizePackingType(packing string) string {
	switch strings.ToLower(strings.TrimSpace(packing)) {
	case constants.PackingTypeGift:
		return constants.PackingTypeGift
	case constants.PackingTypeDiscreet:
		return constants.PackingTypeDiscreet
	default:
		return constants.PackingTypeStandard
	}
}

// dailySentCount 当日已发送数：优先缓存，未命中回源数据库并回填
func (s *GiftRequestService) dailySentCount(ctx context.Context, fanID uint) (int64, error) {
	day := time.Now().UTC()
	count, hit, err := cache.GetDailySentCount(ctx, fanID, day)
	if err != nil {
		logger.Warnw("gift_quota_read_failed", "fan_id", fanID, "error", err)
	}
	if err == nil && hit {
		return count, nil
	}

	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	count, err = s.giftRequestRepo.CountCreatedSince(fanID, dayStart)
	if err != nil {
		return 0, err
	}
	if cacheErr := cache.SetDailySentCount(ctx, fanID, day, count); cacheErr != nil {
		logger.Warnw("gift_quota_backfill_failed", "fan_id", fanID, "error", cacheErr)
	}
	return count, nil
}

// notify 通知入队失败只记日志，不影响主流程
func (s *GiftRequestService) notify(input NotificationEnqueueInput) {
	if s.notificationService == nil {
		return
	}
	if err := s.notificationService.Enqueue(input); err != nil {
		logger.Warnw("gift_notification_enqueue_failed",
			"type", input.Type,
			"user_id", input.UserID,
			"request_no", input.RequestNo,
			"error", err,
		)
	}
}

func isGiftTransitionAllowed(current, target string) bool {
	nexts, ok := giftRequestTransitions[current]
	if !ok {
		return false
	}
	return nexts[target]
}

func isGiftRequestStatus(status string) bool {
	switch status {
	case constants.GiftRequestStatusPending,
		constants.GiftRequestStatusAcceptedNeedAddress,
		constants.GiftRequestStatusReadyForPickup,
		constants.GiftRequestStatusPickedUp,
		constants.GiftRequestStatusDelivered,
		constants.GiftRequestStatusRejected:
		return true
	default:
		return false
	}
}

func timelineEventForStatus(status string) string {
	switch status {
	case constants.GiftRequestStatusPending:
		return constants.TimelineEventCreated
	case constants.GiftRequestStatusAcceptedNeedAddress:
		return constants.TimelineEventAccepted
	case constants.GiftRequestStatusReadyForPickup:
		return constants.TimelineEventReadyForPickup
	case constants.GiftRequestStatusPickedUp:
		return constants.TimelineEventPickedUp
	case constants.GiftRequestStatusDelivered:
		return constants.TimelineEventDelivered
	case constants.GiftRequestStatusRejected:
		return constants.TimelineEventRejected
	default:
		return ""
	}
}

func cloneTimeline(timeline models.Timeline) models.Timeline {
	result := make(models.Timeline, len(timeline)+1)
	for event, at := range timeline {
		result[event] = at
	}
	return result
}

func userDisplayName(user *models.User) string {
	if user == nil {
		return ""
	}
	if name := strings.TrimSpace(user.DisplayName); name != "" {
		return name
	}
	full := strings.TrimSpace(strings.TrimSpace(user.FirstName) + " " + strings.TrimSpace(user.LastName))
	if full != "" {
		return full
	}
	return "User " + strconv.FormatUint(uint64(user.ID), 10)
}

func generateGiftRequestNo() string {
	now := time.Now().Format("20060102150405")
	return fmt.Sprintf("GF%s%s", now, randNumeric(6))
}

func randNumeric(length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteString("0")
			continue
		}
		b.WriteString(fmt.Sprintf("%d", n.Int64()))
	}
	return b.String()
}
