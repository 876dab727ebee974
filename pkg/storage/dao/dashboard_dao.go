// Package dao 定义数据库行结构与领域模型的互转。
package dao

import (
	"time"

	"github.com/LENAX/quant-board/pkg/storage"
)

// ChatSessionDAO chat_session表行结构（对外导出）
type ChatSessionDAO struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Title     string    `db:"title"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// ToModel 转换为领域模型
func (d *ChatSessionDAO) ToModel() *storage.ChatSession {
	return &storage.ChatSession{
		ID:        d.ID,
		UserID:    d.UserID,
		Title:     d.Title,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// FromChatSession 从领域模型构建行结构（对外导出）
func FromChatSession(m *storage.ChatSession) *ChatSessionDAO {
	return &ChatSessionDAO{
		ID:        m.ID,
		UserID:    m.UserID,
		Title:     m.Title,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// ChatMessageDAO chat_message表行结构（对外导出）
type ChatMessageDAO struct {
	ID        string    `db:"id"`
	SessionID string    `db:"session_id"`
	Role      string    `db:"role"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
}

// ToModel 转换为领域模型
func (d *ChatMessageDAO) ToModel() *storage.ChatMessage {
	return &storage.ChatMessage{
		ID:        d.ID,
		SessionID: d.SessionID,
		Role:      d.Role,
		Content:   d.Content,
		CreatedAt: d.CreatedAt,
	}
}

// FromChatMessage 从领域模型构建行结构（对外导出）
func FromChatMessage(m *storage.ChatMessage) *ChatMessageDAO {
	return &ChatMessageDAO{
		ID:        m.ID,
		SessionID: m.SessionID,
		Role:      m.Role,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}

// PreferenceDAO user_preference表行结构（对外导出）
type PreferenceDAO struct {
	UserID    string    `db:"user_id"`
	PrefKey   string    `db:"pref_key"`
	PrefValue string    `db:"pref_value"`
	UpdatedAt time.Time `db:"updated_at"`
}

// NotificationDAO notification表行结构（对外导出）
type NotificationDAO struct {
	ID        string    `db:"id"`
	Level     string    `db:"level"`
	Title     string    `db:"title"`
	Body      string    `db:"body"`
	Source    string    `db:"source"`
	Read      bool      `db:"read_flag"`
	CreatedAt time.Time `db:"created_at"`
}

// ToModel 转换为领域模型
func (d *NotificationDAO) ToModel() *storage.Notification {
	return &storage.Notification{
		ID:        d.ID,
		Level:     d.Level,
		Title:     d.Title,
		Body:      d.Body,
		Source:    d.Source,
		Read:      d.Read,
		CreatedAt: d.CreatedAt,
	}
}

// FromNotification 从领域模型构建行结构（对外导出）
func FromNotification(m *storage.Notification) *NotificationDAO {
	return &NotificationDAO{
		ID:        m.ID,
		Level:     m.Level,
		Title:     m.Title,
		Body:      m.Body,
		Source:    m.Source,
		Read:      m.Read,
		CreatedAt: m.CreatedAt,
	}
}

// AlertRuleDAO alert_rule表行结构（对外导出）
type AlertRuleDAO struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Event     string    `db:"event"`
	Condition string    `db:"condition_expr"`
	Channel   string    `db:"channel"`
	Enabled   bool      `db:"enabled"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// ToModel 转换为领域模型
func (d *AlertRuleDAO) ToModel() *storage.AlertRule {
	return &storage.AlertRule{
		ID:        d.ID,
		Name:      d.Name,
		Event:     d.Event,
		Condition: d.Condition,
		Channel:   d.Channel,
		Enabled:   d.Enabled,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// FromAlertRule 从领域模型构建行结构（对外导出）
func FromAlertRule(m *storage.AlertRule) *AlertRuleDAO {
	return &AlertRuleDAO{
		ID:        m.ID,
		Name:      m.Name,
		Event:     m.Event,
		Condition: m.Condition,
		Channel:   m.Channel,
		Enabled:   m.Enabled,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
