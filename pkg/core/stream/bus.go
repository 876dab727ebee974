// Package stream 提供网关内部事件总线与面向前端的WebSocket推送。
// 总线基于watermill的进程内gochannel实现，轮询层发布快照更新事件，
// 告警评估器与WebSocket Hub各自订阅消费。
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// 事件主题（对外导出）
const (
	TopicGraphUpdated        = "graph.updated"         // 任务链图快照更新
	TopicChainStatusChanged  = "chain.status_changed"  // 任务链状态变化
	TopicStrategiesUpdated   = "strategies.updated"    // 策略快照更新
	TopicNotificationCreated = "notification.created"  // 新通知产生
)

// Event 总线事件载荷（对外导出）
type Event struct {
	Topic     string          `json:"topic"`            // 事件主题
	Payload   json.RawMessage `json:"payload"`          // 业务载荷
	Timestamp time.Time       `json:"timestamp"`        // 发布时间
}

// Bus 进程内事件总线（对外导出）
type Bus struct {
	pubsub *gochannel.GoChannel
	logger watermill.LoggerAdapter
}

// NewBus 创建事件总线（对外导出）
func NewBus(debug bool) *Bus {
	logger := watermill.NewStdLogger(debug, false)
	pubsub := gochannel.NewGoChannel(
		gochannel.Config{
			Persistent:                     false,
			BlockPublishUntilSubscriberAck: false,
		},
		logger,
	)
	return &Bus{
		pubsub: pubsub,
		logger: logger,
	}
}

// Publish 发布事件到指定主题
// payload会被序列化为JSON；序列化失败视为调用方bug，直接返回错误
func (b *Bus) Publish(topic string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("序列化事件载荷失败: topic=%s, %w", topic, err)
	}

	msg := message.NewMessage(uuid.New().String(), data)
	msg.Metadata.Set("topic", topic)
	msg.Metadata.Set("published_at", time.Now().Format(time.RFC3339Nano))

	if err := b.pubsub.Publish(topic, msg); err != nil {
		return fmt.Errorf("发布事件失败: topic=%s, %w", topic, err)
	}
	return nil
}

// Subscribe 订阅主题，返回消息通道
func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	ch, err := b.pubsub.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("订阅主题失败: topic=%s, %w", topic, err)
	}
	return ch, nil
}

// Close 关闭总线
func (b *Bus) Close() error {
	return b.pubsub.Close()
}

// DecodeEvent 把总线消息还原为事件结构（对外导出）
func DecodeEvent(msg *message.Message) Event {
	ts, _ := time.Parse(time.RFC3339Nano, msg.Metadata.Get("published_at"))
	return Event{
		Topic:     msg.Metadata.Get("topic"),
		Payload:   json.RawMessage(msg.Payload),
		Timestamp: ts,
	}
}
