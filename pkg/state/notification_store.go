package state

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/LENAX/quant-board/pkg/core/stream"
	"github.com/LENAX/quant-board/pkg/storage"
)

// NotificationStore 通知状态Store（对外导出）
// 追加即落库；挂了总线时同步发布notification.created事件推给前端
type NotificationStore struct {
	repo storage.DashboardRepository
	bus  *stream.Bus
}

// NewNotificationStore 创建通知Store（对外导出）
func NewNotificationStore(repo storage.DashboardRepository, bus *stream.Bus) *NotificationStore {
	return &NotificationStore{repo: repo, bus: bus}
}

// Append 追加一条通知
func (s *NotificationStore) Append(ctx context.Context, level, title, body, source string) (*storage.Notification, error) {
	n := &storage.Notification{
		ID:        uuid.New().String(),
		Level:     level,
		Title:     title,
		Body:      body,
		Source:    source,
		Read:      false,
		CreatedAt: time.Now(),
	}
	if err := s.repo.SaveNotification(ctx, n); err != nil {
		return nil, fmt.Errorf("追加通知失败: %w", err)
	}

	if s.bus != nil {
		if err := s.bus.Publish(stream.TopicNotificationCreated, n); err != nil {
			// 事件只是推送加速，落库已成功，不上抛
			log.Printf("⚠️ [通知] 发布事件失败: %v", err)
		}
	}
	return n, nil
}

// List 列出通知
func (s *NotificationStore) List(ctx context.Context, unreadOnly bool, limit int) ([]*storage.Notification, error) {
	return s.repo.ListNotifications(ctx, unreadOnly, limit)
}

// MarkRead 标记单条已读
func (s *NotificationStore) MarkRead(ctx context.Context, id string) error {
	return s.repo.MarkNotificationRead(ctx, id)
}

// MarkAllRead 全部标记已读
func (s *NotificationStore) MarkAllRead(ctx context.Context) error {
	return s.repo.MarkAllNotificationsRead(ctx)
}

// PurgeRead 清理早于cutoff的已读通知，夜间清理任务用
func (s *NotificationStore) PurgeRead(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.repo.PurgeReadNotifications(ctx, cutoff)
}
