// Package state 提供面板的共享应用状态。
// 会话、偏好、通知这些跨视图共享的状态不做环境全局单例，
// 而是聚合成一个显式的AppState对象在组合根注入；
// 每个Store是存储层之上的薄门面，持久化边界清晰可见。
package state

import (
	"github.com/LENAX/quant-board/pkg/core/stream"
	"github.com/LENAX/quant-board/pkg/storage"
)

// AppState 应用状态聚合（对外导出）
type AppState struct {
	Chat          *ChatStore
	Preferences   *PreferenceStore
	Notifications *NotificationStore
}

// New 创建应用状态聚合（对外导出）
// bus可为nil，此时通知产生不发事件
func New(repo storage.DashboardRepository, bus *stream.Bus) *AppState {
	return &AppState{
		Chat:          NewChatStore(repo),
		Preferences:   NewPreferenceStore(repo),
		Notifications: NewNotificationStore(repo, bus),
	}
}
