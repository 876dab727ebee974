// Package mocks 提供测试用的内存版面板存储。
package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/LENAX/quant-board/pkg/storage"
)

// MockDashboardRepository DashboardRepository的内存实现（对外导出）
type MockDashboardRepository struct {
	mu            sync.RWMutex
	sessions      map[string]*storage.ChatSession
	messages      map[string][]*storage.ChatMessage // sessionID -> 消息
	preferences   map[string]map[string]string      // userID -> key -> value
	notifications map[string]*storage.Notification
	rules         map[string]*storage.AlertRule
}

var _ storage.DashboardRepository = (*MockDashboardRepository)(nil)

// NewMockDashboardRepository 创建内存存储（对外导出）
func NewMockDashboardRepository() *MockDashboardRepository {
	return &MockDashboardRepository{
		sessions:      make(map[string]*storage.ChatSession),
		messages:      make(map[string][]*storage.ChatMessage),
		preferences:   make(map[string]map[string]string),
		notifications: make(map[string]*storage.Notification),
		rules:         make(map[string]*storage.AlertRule),
	}
}

// ========== 会话 ==========

func (m *MockDashboardRepository) SaveChatSession(ctx context.Context, session *storage.ChatSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *session
	m.sessions[session.ID] = &cp
	return nil
}

func (m *MockDashboardRepository) GetChatSession(ctx context.Context, id string) (*storage.ChatSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *MockDashboardRepository) ListChatSessions(ctx context.Context, userID string) ([]*storage.ChatSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var list []*storage.ChatSession
	for _, s := range m.sessions {
		if s.UserID == userID {
			cp := *s
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].UpdatedAt.After(list[j].UpdatedAt) })
	return list, nil
}

func (m *MockDashboardRepository) DeleteChatSession(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	delete(m.messages, id)
	return nil
}

func (m *MockDashboardRepository) DeleteChatSessionsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for id, s := range m.sessions {
		if s.UpdatedAt.Before(cutoff) {
			delete(m.sessions, id)
			delete(m.messages, id)
			count++
		}
	}
	return count, nil
}

func (m *MockDashboardRepository) SaveChatMessage(ctx context.Context, msg *storage.ChatMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *msg
	m.messages[msg.SessionID] = append(m.messages[msg.SessionID], &cp)
	if s, ok := m.sessions[msg.SessionID]; ok {
		s.UpdatedAt = msg.CreatedAt
	}
	return nil
}

func (m *MockDashboardRepository) ListChatMessages(ctx context.Context, sessionID string) ([]*storage.ChatMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	msgs := make([]*storage.ChatMessage, 0, len(m.messages[sessionID]))
	for _, msg := range m.messages[sessionID] {
		cp := *msg
		msgs = append(msgs, &cp)
	}
	return msgs, nil
}

// ========== 偏好 ==========

func (m *MockDashboardRepository) SetPreference(ctx context.Context, userID, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.preferences[userID] == nil {
		m.preferences[userID] = make(map[string]string)
	}
	m.preferences[userID][key] = value
	return nil
}

func (m *MockDashboardRepository) GetPreferences(ctx context.Context, userID string) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	kv := make(map[string]string, len(m.preferences[userID]))
	for k, v := range m.preferences[userID] {
		kv[k] = v
	}
	return kv, nil
}

// ========== 通知 ==========

func (m *MockDashboardRepository) SaveNotification(ctx context.Context, n *storage.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *n
	m.notifications[n.ID] = &cp
	return nil
}

func (m *MockDashboardRepository) ListNotifications(ctx context.Context, unreadOnly bool, limit int) ([]*storage.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if limit <= 0 {
		limit = 100
	}
	var list []*storage.Notification
	for _, n := range m.notifications {
		if unreadOnly && n.Read {
			continue
		}
		cp := *n
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	if len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (m *MockDashboardRepository) MarkNotificationRead(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notifications[id]
	if !ok {
		return storage.ErrNotFound
	}
	n.Read = true
	return nil
}

func (m *MockDashboardRepository) MarkAllNotificationsRead(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.notifications {
		n.Read = true
	}
	return nil
}

func (m *MockDashboardRepository) PurgeReadNotifications(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for id, n := range m.notifications {
		if n.Read && n.CreatedAt.Before(cutoff) {
			delete(m.notifications, id)
			count++
		}
	}
	return count, nil
}

// ========== 告警规则 ==========

func (m *MockDashboardRepository) SaveAlertRule(ctx context.Context, rule *storage.AlertRule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *rule
	m.rules[rule.ID] = &cp
	return nil
}

func (m *MockDashboardRepository) GetAlertRule(ctx context.Context, id string) (*storage.AlertRule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rules[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *MockDashboardRepository) ListAlertRules(ctx context.Context, enabledOnly bool) ([]*storage.AlertRule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var list []*storage.AlertRule
	for _, r := range m.rules {
		if enabledOnly && !r.Enabled {
			continue
		}
		cp := *r
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	return list, nil
}

func (m *MockDashboardRepository) DeleteAlertRule(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rules[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.rules, id)
	return nil
}

// Close 关闭（内存实现为空操作）
func (m *MockDashboardRepository) Close() error {
	return nil
}
