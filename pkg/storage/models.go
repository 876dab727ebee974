// Package storage 定义面板持久化数据的模型与Repository接口。
// 面板侧只持久化客户端状态：会话、偏好、通知、告警规则；
// 任务链与策略数据全部是上游引擎的瞬态快照，不落库。
package storage

import "time"

// ChatSession 对话会话（对外导出）
type ChatSession struct {
	ID        string    `json:"id"`         // 会话ID
	UserID    string    `json:"user_id"`    // 归属用户
	Title     string    `json:"title"`      // 会话标题
	CreatedAt time.Time `json:"created_at"` // 创建时间
	UpdatedAt time.Time `json:"updated_at"` // 最近一条消息时间
}

// 消息角色（对外导出）
const (
	RoleUser      = "user"      // 用户输入
	RoleAssistant = "assistant" // 助手回复
	RoleSystem    = "system"    // 系统提示
)

// ChatMessage 会话中的一条消息（对外导出）
type ChatMessage struct {
	ID        string    `json:"id"`         // 消息ID
	SessionID string    `json:"session_id"` // 归属会话
	Role      string    `json:"role"`       // 角色
	Content   string    `json:"content"`    // 消息内容
	CreatedAt time.Time `json:"created_at"` // 创建时间
}

// 通知级别（对外导出）
const (
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelError   = "error"
)

// Notification 面板通知（对外导出）
// 拉取失败、告警命中、链路状态变化都以通知形式进横幅
type Notification struct {
	ID        string    `json:"id"`         // 通知ID
	Level     string    `json:"level"`      // 级别
	Title     string    `json:"title"`      // 标题
	Body      string    `json:"body"`       // 正文
	Source    string    `json:"source"`     // 来源组件
	Read      bool      `json:"read"`       // 是否已读
	CreatedAt time.Time `json:"created_at"` // 创建时间
}

// AlertRule 告警规则（对外导出）
// Condition是一条对事件载荷求值的布尔表达式，
// 例如 status == "failed" && progress < 0.5
type AlertRule struct {
	ID        string    `json:"id"`         // 规则ID
	Name      string    `json:"name"`       // 规则名称
	Event     string    `json:"event"`      // 订阅的事件主题
	Condition string    `json:"condition"`  // 布尔表达式，空串恒真
	Channel   string    `json:"channel"`    // 触达通道（email/webhook）
	Enabled   bool      `json:"enabled"`    // 是否启用
	CreatedAt time.Time `json:"created_at"` // 创建时间
	UpdatedAt time.Time `json:"updated_at"` // 更新时间
}
