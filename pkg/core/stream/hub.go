package stream

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second // 单次写超时
	pongWait       = 60 * time.Second // pong等待超时
	pingPeriod     = 54 * time.Second // ping周期，须小于pongWait
	clientBufSize  = 32               // 每连接发送缓冲
	maxMessageSize = 4096             // 客户端消息上限
)

// client 单个前端连接
type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub WebSocket连接中枢（对外导出）
// 订阅总线主题，把事件扇出给所有已连接的前端；
// 发送缓冲写满的慢连接直接断开，不阻塞其它连接
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]struct{}
}

// NewHub 创建连接中枢（对外导出）
func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// 面板与网关可能不同源，放开Origin校验交给上层auth
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// Start 订阅总线主题并开始扇出（对外导出）
// 每个主题一个消费协程，ctx取消后随总线关闭退出
func (h *Hub) Start(ctx context.Context, bus *Bus, topics ...string) error {
	for _, topic := range topics {
		ch, err := bus.Subscribe(ctx, topic)
		if err != nil {
			return err
		}
		go h.consume(topic, ch)
	}
	return nil
}

// consume 消费单个主题并广播
func (h *Hub) consume(topic string, ch <-chan *message.Message) {
	for msg := range ch {
		event := DecodeEvent(msg)
		data, err := json.Marshal(event)
		if err != nil {
			log.Printf("⚠️ [推送中枢] 事件序列化失败: topic=%s, %v", topic, err)
			msg.Ack()
			continue
		}
		h.broadcast(data)
		msg.Ack()
	}
}

// broadcast 把数据写入所有连接的发送缓冲
func (h *Hub) broadcast(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			// 发送缓冲已满：慢连接，异步摘除
			go h.drop(c)
		}
	}
}

// drop 摘除并关闭连接
func (h *Hub) drop(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	h.mu.Unlock()

	close(c.send)
	c.conn.Close()
	log.Printf("🔌 [推送中枢] 连接已断开, 当前连接数=%d", h.Count())
}

// Count 当前连接数（对外导出）
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeWS 处理WebSocket升级请求（对外导出）
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("⚠️ [推送中枢] WebSocket升级失败: %v", err)
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, clientBufSize),
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	log.Printf("🔗 [推送中枢] 新连接接入, 当前连接数=%d", h.Count())

	go h.writePump(c)
	go h.readPump(c)
}

// writePump 连接写循环：发送缓冲 + ping保活
func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.drop(c)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.drop(c)
				return
			}
		}
	}
}

// readPump 连接读循环：只用于感知关闭与pong
func (h *Hub) readPump(c *client) {
	defer h.drop(c)

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
