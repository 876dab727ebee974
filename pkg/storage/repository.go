package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound 记录不存在（对外导出）
var ErrNotFound = errors.New("记录不存在")

// DashboardRepository 面板持久化聚合接口（对外导出）
// 状态Store层通过此接口读写，不感知具体数据库
type DashboardRepository interface {
	// ========== 会话 ==========

	// SaveChatSession 新建或更新会话
	SaveChatSession(ctx context.Context, session *ChatSession) error
	// GetChatSession 按ID查询会话
	GetChatSession(ctx context.Context, id string) (*ChatSession, error)
	// ListChatSessions 列出用户的会话，按更新时间倒序
	ListChatSessions(ctx context.Context, userID string) ([]*ChatSession, error)
	// DeleteChatSession 删除会话及其全部消息
	DeleteChatSession(ctx context.Context, id string) error
	// DeleteChatSessionsBefore 删除更新时间早于cutoff的会话，返回删除数
	DeleteChatSessionsBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// SaveChatMessage 追加消息
	SaveChatMessage(ctx context.Context, msg *ChatMessage) error
	// ListChatMessages 列出会话的消息，按创建时间正序
	ListChatMessages(ctx context.Context, sessionID string) ([]*ChatMessage, error)

	// ========== 偏好 ==========

	// SetPreference 写入单条用户偏好
	SetPreference(ctx context.Context, userID, key, value string) error
	// GetPreferences 读取用户全部偏好键值
	GetPreferences(ctx context.Context, userID string) (map[string]string, error)

	// ========== 通知 ==========

	// SaveNotification 追加通知
	SaveNotification(ctx context.Context, n *Notification) error
	// ListNotifications 列出通知，按创建时间倒序；unreadOnly只看未读
	ListNotifications(ctx context.Context, unreadOnly bool, limit int) ([]*Notification, error)
	// MarkNotificationRead 标记单条已读
	MarkNotificationRead(ctx context.Context, id string) error
	// MarkAllNotificationsRead 全部标记已读
	MarkAllNotificationsRead(ctx context.Context) error
	// PurgeReadNotifications 清理早于cutoff的已读通知，返回删除数
	PurgeReadNotifications(ctx context.Context, cutoff time.Time) (int64, error)

	// ========== 告警规则 ==========

	// SaveAlertRule 新建或更新规则
	SaveAlertRule(ctx context.Context, rule *AlertRule) error
	// GetAlertRule 按ID查询规则
	GetAlertRule(ctx context.Context, id string) (*AlertRule, error)
	// ListAlertRules 列出规则；enabledOnly只看启用的
	ListAlertRules(ctx context.Context, enabledOnly bool) ([]*AlertRule, error)
	// DeleteAlertRule 删除规则
	DeleteAlertRule(ctx context.Context, id string) error

	// Close 关闭底层连接
	Close() error
}

// Dialect 数据库方言（对外导出）
// 各数据库包提供建表DDL与连接配置，CRUD逻辑共用
type Dialect interface {
	// Name 方言名称
	Name() string
	// Schema 建表DDL语句组（CREATE TABLE IF NOT EXISTS）
	Schema() []string
	// ConfigureDB 连接初始化语句组（PRAGMA等，可为空）
	ConfigureDB() []string
}
