// Package assistant 提供对话助手的会话编排。
// 真正的补全在上游引擎侧完成，这里负责：落用户消息 -> 带历史调引擎 ->
// 落助手回复，以及聊天里贴链接时的预览卡片抓取。
package assistant

import (
	"context"
	"fmt"
	"log"

	"github.com/LENAX/quant-board/pkg/state"
	"github.com/LENAX/quant-board/pkg/storage"
	"github.com/LENAX/quant-board/pkg/upstream"
)

// historyLimit 带给引擎的最大历史轮数
const historyLimit = 20

// Service 助手服务（对外导出）
type Service struct {
	chat   *state.ChatStore
	engine *upstream.Client
}

// NewService 创建助手服务（对外导出）
func NewService(chat *state.ChatStore, engine *upstream.Client) *Service {
	return &Service{
		chat:   chat,
		engine: engine,
	}
}

// Ask 处理一轮提问（对外导出）
// 编排顺序：持久化用户消息 -> 调上游助手 -> 持久化回复。
// 上游失败时用户消息已落库，重新提问不会丢上下文
func (s *Service) Ask(ctx context.Context, userID, sessionID, prompt string) (*storage.ChatMessage, error) {
	if prompt == "" {
		return nil, fmt.Errorf("提问内容不能为空")
	}

	// 没有会话就开一个，标题取提问前缀
	if sessionID == "" {
		title := prompt
		if len([]rune(title)) > 20 {
			title = string([]rune(title)[:20])
		}
		session, err := s.chat.CreateSession(ctx, userID, title)
		if err != nil {
			return nil, err
		}
		sessionID = session.ID
	} else {
		if _, err := s.chat.GetSession(ctx, sessionID); err != nil {
			return nil, fmt.Errorf("会话不存在: %w", err)
		}
	}

	history, err := s.buildHistory(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if _, err := s.chat.AppendMessage(ctx, sessionID, storage.RoleUser, prompt); err != nil {
		return nil, err
	}

	reply, err := s.engine.AskAssistant(ctx, sessionID, prompt, history)
	if err != nil {
		return nil, fmt.Errorf("调用助手失败: %w", err)
	}

	msg, err := s.chat.AppendMessage(ctx, sessionID, storage.RoleAssistant, reply.Content)
	if err != nil {
		return nil, err
	}

	log.Printf("💬 [助手] 会话 %s 完成一轮问答", sessionID)
	return msg, nil
}

// buildHistory 取会话近historyLimit条消息作为上下文
func (s *Service) buildHistory(ctx context.Context, sessionID string) ([]upstream.ChatTurn, error) {
	msgs, err := s.chat.Messages(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("读取会话历史失败: %w", err)
	}
	if len(msgs) > historyLimit {
		msgs = msgs[len(msgs)-historyLimit:]
	}

	history := make([]upstream.ChatTurn, 0, len(msgs))
	for _, m := range msgs {
		history = append(history, upstream.ChatTurn{
			Role:    m.Role,
			Content: m.Content,
		})
	}
	return history, nil
}
