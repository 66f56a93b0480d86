package worker

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/giftify-next/internal/provider"
	"github.com/giftify-next/internal/queue"

	"github.com/hibiken/asynq"
)

func TestHandleNotificationDispatchInvalidPayload(t *testing.T) {
	consumer := NewConsumer(&provider.Container{})
	task := asynq.NewTask(queue.TaskNotificationDispatch, []byte("{not json"))

	if err := consumer.handleNotificationDispatch(context.Background(), task); err == nil {
		t.Fatal("expected unmarshal error for malformed payload")
	}
}

func TestHandleNotificationDispatchSkipZeroUserID(t *testing.T) {
	consumer := NewConsumer(&provider.Container{})
	body, err := json.Marshal(queue.NotificationDispatchPayload{Type: "request_accepted"})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	task := asynq.NewTask(queue.TaskNotificationDispatch, body)

	if err := consumer.handleNotificationDispatch(context.Background(), task); err != nil {
		t.Fatalf("expected nil for payload without user id, got %v", err)
	}
}

func TestHandleNotificationDispatchSkipNilService(t *testing.T) {
	consumer := NewConsumer(&provider.Container{})
	body, err := json.Marshal(queue.NotificationDispatchPayload{
		Type:      "request_accepted",
		UserID:    7,
		RequestNo: "GR-20260831-000001",
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	task := asynq.NewTask(queue.TaskNotificationDispatch, body)

	if err := consumer.handleNotificationDispatch(context.Background(), task); err != nil {
		t.Fatalf("expected nil when notification service missing, got %v", err)
	}
}

func TestHandleNotificationDispatchNilTask(t *testing.T) {
	consumer := NewConsumer(&provider.Container{})
	if err := consumer.handleNotificationDispatch(context.Background(), nil); err != nil {
		t.Fatalf("expected nil for nil task, got %v", err)
	}
}
