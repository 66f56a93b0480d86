package queue

import (
	"encoding/json"

	"github.com/giftify-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskNotificationDispatch 通知分发任务
	TaskNotificationDispatch = constants.TaskNotificationDispatch
)

// NotificationDispatchPayload 通知分发任务载荷
type NotificationDispatchPayload struct {
	Type      string `json:"type"`
	UserID    uint   `json:"user_id"`
	RequestNo string `json:"request_no"`
	Title     string `json:"title"`
	Body      string `json:"body"`
}

// NewNotificationDispatchTask 创建通知分发任务
func NewNotificationDispatchTask(payload NotificationDispatchPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNotificationDispatch, body), nil
}
