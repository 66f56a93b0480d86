package public

import (
	"strconv"
	"strings"

	"github.com/giftify-next/internal/http/response"
	"github.com/giftify-next/internal/service"

	"github.com/gin-gonic/gin"
)

// ListMyNotifications 当前用户的站内通知
func (h *Handler) ListMyNotifications(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	notifications, total, err := h.NotificationService.List(service.NotificationListInput{
		UserID:     uid,
		Type:       strings.TrimSpace(c.Query("type")),
		OnlyUnread: c.DefaultQuery("unread", "false") == "true",
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		respondNotificationError(c, err)
		return
	}

	response.SuccessWithPage(c, notifications, response.BuildPagination(page, pageSize, total))
}

// GetMyUnreadCount 未读通知计数
func (h *Handler) GetMyUnreadCount(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	count, err := h.NotificationService.UnreadCount(uid)
	if err != nil {
		respondNotificationError(c, err)
		return
	}
	response.Success(c, gin.H{"unread": count})
}

// MarkNotificationRead 标记单条通知已读
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	notificationNo := strings.TrimSpace(c.Param("notification_no"))
	if notificationNo == "" {
		respondError(c, response.CodeBadRequest, "notification no required", nil)
		return
	}

	if err := h.NotificationService.MarkRead(notificationNo, uid); err != nil {
		respondNotificationError(c, err)
		return
	}
	response.Success(c, gin.H{"read": true})
}

// MarkAllNotificationsRead 标记全部通知已读
func (h *Handler) MarkAllNotificationsRead(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	if err := h.NotificationService.MarkAllRead(uid); err != nil {
		respondNotificationError(c, err)
		return
	}
	response.Success(c, gin.H{"read": true})
}
