package state

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/LENAX/quant-board/pkg/storage"
)

// ChatStore 会话状态Store（对外导出）
// 读写直达存储层；活跃会话指针保存在内存并随偏好持久化
type ChatStore struct {
	repo storage.DashboardRepository

	mu     sync.RWMutex
	active map[string]string // userID -> 活跃会话ID
}

// NewChatStore 创建会话Store（对外导出）
func NewChatStore(repo storage.DashboardRepository) *ChatStore {
	return &ChatStore{
		repo:   repo,
		active: make(map[string]string),
	}
}

// CreateSession 新建会话并设为活跃
func (s *ChatStore) CreateSession(ctx context.Context, userID, title string) (*storage.ChatSession, error) {
	if title == "" {
		title = "新对话"
	}
	now := time.Now()
	session := &storage.ChatSession{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.SaveChatSession(ctx, session); err != nil {
		return nil, fmt.Errorf("创建会话失败: %w", err)
	}

	s.SetActiveSession(userID, session.ID)
	return session, nil
}

// GetSession 查询会话
func (s *ChatStore) GetSession(ctx context.Context, id string) (*storage.ChatSession, error) {
	return s.repo.GetChatSession(ctx, id)
}

// ListSessions 列出用户的会话
func (s *ChatStore) ListSessions(ctx context.Context, userID string) ([]*storage.ChatSession, error) {
	return s.repo.ListChatSessions(ctx, userID)
}

// DeleteSession 删除会话；若是活跃会话则清空指针
func (s *ChatStore) DeleteSession(ctx context.Context, userID, id string) error {
	if err := s.repo.DeleteChatSession(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	if s.active[userID] == id {
		delete(s.active, userID)
	}
	s.mu.Unlock()
	return nil
}

// AppendMessage 向会话追加消息
func (s *ChatStore) AppendMessage(ctx context.Context, sessionID, role, content string) (*storage.ChatMessage, error) {
	msg := &storage.ChatMessage{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := s.repo.SaveChatMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("追加消息失败: %w", err)
	}
	return msg, nil
}

// Messages 列出会话的全部消息
func (s *ChatStore) Messages(ctx context.Context, sessionID string) ([]*storage.ChatMessage, error) {
	return s.repo.ListChatMessages(ctx, sessionID)
}

// SetActiveSession 设置用户的活跃会话指针
func (s *ChatStore) SetActiveSession(userID, sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active[userID] = sessionID
}

// ActiveSession 读取用户的活跃会话指针
func (s *ChatStore) ActiveSession(userID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.active[userID]
	return id, ok
}

// PurgeBefore 清理更新时间早于cutoff的会话，夜间清理任务用
func (s *ChatStore) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.repo.DeleteChatSessionsBefore(ctx, cutoff)
}
