package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/giftify-next/internal/constants"
	"github.com/giftify-next/internal/logger"
	"github.com/giftify-next/internal/models"
	"github.com/giftify-next/internal/queue"
	"github.com/giftify-next/internal/repository"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// NotificationEnqueueInput 通知入队参数
type NotificationEnqueueInput struct {
	Type      string
	UserID    uint
	RequestNo string
	Title     string
	Body      string
}

// NotificationListInput 通知列表查询参数
type NotificationListInput struct {
	UserID     uint
	Type       string
	OnlyUnread bool
	Page       int
	PageSize   int
}

// NotificationService 站内通知服务
// 状态流转成功后异步写入，投递失败只记日志不回滚业务
type NotificationService struct {
	notificationRepo repository.NotificationRepository
	userRepo         repository.UserRepository
	queueClient      *queue.Client
}

// NewNotificationService 创建站内通知服务
func NewNotificationService(notificationRepo repository.NotificationRepository, userRepo repository.UserRepository, queueClient *queue.Client) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		queueClient:      queueClient,
	}
}

// Enqueue 入队通知任务
func (s *NotificationService) Enqueue(input NotificationEnqueueInput) error {
	notificationType := strings.ToLower(strings.TrimSpace(input.Type))
	if !isNotificationTypeSupported(notificationType) {
		return ErrNotificationTypeInvalid
	}
	if input.UserID == 0 {
		return ErrNotificationTypeInvalid
	}
	if s == nil || s.queueClient == nil {
		return nil
	}

	title := strings.TrimSpace(input.Title)
	body := strings.TrimSpace(input.Body)
	if title == "" {
		title = defaultNotificationTitle(notificationType)
	}
	if body == "" {
		body = defaultNotificationBody(notificationType, input.RequestNo)
	}

	payload := queue.NotificationDispatchPayload{
		Type:      notificationType,
		UserID:    input.UserID,
		RequestNo: strings.TrimSpace(input.RequestNo),
		Title:     title,
		Body:      body,
	}
	return s.queueClient.EnqueueNotificationDispatch(payload, asynq.MaxRetry(5))
}

// Dispatch 处理通知分发任务：按用户偏好落库
func (s *NotificationService) Dispatch(ctx context.Context, payload queue.NotificationDispatchPayload) error {
	if s == nil || s.notificationRepo == nil {
		return nil
	}
	notificationType := strings.ToLower(strings.TrimSpace(payload.Type))
	if !isNotificationTypeSupported(notificationType) {
		return ErrNotificationTypeInvalid
	}

	user, err := s.userRepo.GetByID(payload.UserID)
	if err != nil {
		return err
	}
	if user == nil || user.Status != constants.UserStatusActive {
		return nil
	}
	if user.Role == constants.RoleFan && !fanWantsNotification(fanSettingsFromJSON(user.FanSettingsJSON), notificationType) {
		logger.Debugw("notification_skipped_by_prefs",
			"user_id", user.ID,
			"type", notificationType,
		)
		return nil
	}

	notification := &models.Notification{
		NotificationNo: uuid.NewString(),
		UserID:         user.ID,
		Type:           notificationType,
		Title:          payload.Title,
		Body:           payload.Body,
		RequestNo:      payload.RequestNo,
	}
	return s.notificationRepo.Create(notification)
}

// List 本人通知列表
func (s *NotificationService) List(input NotificationListInput) ([]models.Notification, int64, error) {
	if input.UserID == 0 {
		return nil, 0, ErrNotFound
	}
	return s.notificationRepo.List(repository.NotificationListFilter{
		UserID:     input.UserID,
		Type:       strings.TrimSpace(input.Type),
		OnlyUnread: input.OnlyUnread,
		Page:       input.Page,
		PageSize:   input.PageSize,
	})
}

// UnreadCount 本人未读数
func (s *NotificationService) UnreadCount(userID uint) (int64, error) {
	if userID == 0 {
		return 0, ErrNotFound
	}
	return s.notificationRepo.CountUnread(userID)
}

// MarkRead 标记本人通知已读
func (s *NotificationService) MarkRead(notificationNo string, userID uint) error {
	notificationNo = strings.TrimSpace(notificationNo)
	if notificationNo == "" || userID == 0 {
		return ErrNotificationNotFound
	}
	ok, err := s.notificationRepo.MarkRead(notificationNo, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead 标记本人全部通知已读
func (s *NotificationService) MarkAllRead(userID uint) error {
	if userID == 0 {
		return ErrNotificationNotFound
	}
	return s.notificationRepo.MarkAllRead(userID)
}

func isNotificationTypeSupported(notificationType string) bool {
	switch notificationType {
	case constants.NotificationTypeGiftReceived,
		constants.NotificationTypeGiftAccepted,
		constants.NotificationTypeGiftRejected,
		constants.NotificationTypeGiftReady,
		constants.NotificationTypeGiftPickedUp,
		constants.NotificationTypeGiftDelivered:
		return true
	default:
		return false
	}
}

// fanWantsNotification 按粉丝偏好过滤通知类型
func fanWantsNotification(settings models.FanSettings, notificationType string) bool {
	prefs := settings.Notifications
	switch notificationType {
	case constants.NotificationTypeGiftAccepted, constants.NotificationTypeGiftRejected:
		return prefs.Approval
	case constants.NotificationTypeGiftReady, constants.NotificationTypeGiftPickedUp:
		return prefs.Pickup
	case constants.NotificationTypeGiftDelivered:
		return prefs.Delivery
	default:
		return true
	}
}

func defaultNotificationTitle(notificationType string) string {
	switch notificationType {
	case constants.NotificationTypeGiftReceived:
		return "New gift request"
	case constants.NotificationTypeGiftAccepted:
		return "Gift request accepted"
	case constants.NotificationTypeGiftRejected:
		return "Gift request declined"
	case constants.NotificationTypeGiftReady:
		return "Gift ready for pickup"
	case constants.NotificationTypeGiftPickedUp:
		return "Gift picked up"
	case constants.NotificationTypeGiftDelivered:
		return "Gift delivered"
	default:
		return "Notification"
	}
}

func defaultNotificationBody(notificationType, requestNo string) string {
	requestNo = strings.TrimSpace(requestNo)
	if requestNo == "" {
		return defaultNotificationTitle(notificationType)
	}
	return fmt.Sprintf("%s (#%s)", defaultNotificationTitle(notificationType), requestNo)
}

// defaultFanSettings 粉丝设置默认值：通知全部开启
func defaultFanSettings() models.FanSettings {
	return models.FanSettings{
		Notifications: models.FanNotificationPrefs{
			Approval: true,
			Pickup:   true,
			Delivery: true,
			ThankYou: true,
		},
	}
}

// fanSettingsFromJSON 解析用户表中的粉丝设置，空值回退默认
func fanSettingsFromJSON(raw models.JSON) models.FanSettings {
	if len(raw) == 0 {
		return defaultFanSettings()
	}
	bytes, err := json.Marshal(raw)
	if err != nil {
		return defaultFanSettings()
	}
	settings := defaultFanSettings()
	if err := json.Unmarshal(bytes, &settings); err != nil {
		return defaultFanSettings()
	}
	return settings
}

// fanSettingsToJSON 序列化粉丝设置
func fanSettingsToJSON(settings models.FanSettings) models.JSON {
	bytes, err := json.Marshal(settings)
	if err != nil {
		return models.JSON{}
	}
	var result models.JSON
	if err := json.Unmarshal(bytes, &result); err != nil {
		return models.JSON{}
	}
	return result
}
