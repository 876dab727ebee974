// Package plugin 提供告警触达通道插件。
// 告警规则命中后由评估器按规则配置的通道取插件执行；
// 插件只负责送达，不参与规则求值。
package plugin

import (
	"fmt"
	"sync"
	"time"
)

// AlertData 传递给插件的告警数据（对外导出）
type AlertData struct {
	RuleID    string         `json:"rule_id"`    // 命中的规则ID
	RuleName  string         `json:"rule_name"`  // 规则名称
	Event     string         `json:"event"`      // 触发的事件主题
	Payload   map[string]any `json:"payload"`    // 事件载荷
	FiredAt   time.Time      `json:"fired_at"`   // 命中时间
}

// Plugin 触达通道插件接口（对外导出）
type Plugin interface {
	// Name 插件名称（对外导出）
	Name() string
	// Init 初始化插件（对外导出）
	Init(params map[string]string) error
	// Execute 发送告警（对外导出）
	Execute(data AlertData) error
}

// Manager 插件注册表（对外导出）
type Manager struct {
	mu      sync.RWMutex
	plugins map[string]Plugin
}

// NewManager 创建插件注册表（对外导出）
func NewManager() *Manager {
	return &Manager{
		plugins: make(map[string]Plugin),
	}
}

// Register 注册插件
func (m *Manager) Register(p Plugin) error {
	if p == nil {
		return fmt.Errorf("插件不能为空")
	}
	name := p.Name()
	if name == "" {
		return fmt.Errorf("插件名称不能为空")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.plugins[name]; exists {
		return fmt.Errorf("插件 %s 已注册", name)
	}
	m.plugins[name] = p
	return nil
}

// RegisterWithInit 注册并初始化插件
func (m *Manager) RegisterWithInit(p Plugin, params map[string]string) error {
	if err := m.Register(p); err != nil {
		return err
	}
	if err := p.Init(params); err != nil {
		m.mu.Lock()
		delete(m.plugins, p.Name())
		m.mu.Unlock()
		return fmt.Errorf("插件 %s 初始化失败: %w", p.Name(), err)
	}
	return nil
}

// Get 获取已注册的插件
func (m *Manager) Get(name string) (Plugin, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.plugins[name]
	return p, ok
}

// List 列出所有已注册的插件名称
func (m *Manager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.plugins))
	for name := range m.plugins {
		names = append(names, name)
	}
	return names
}

// Dispatch 按通道名发送告警
func (m *Manager) Dispatch(channel string, data AlertData) error {
	p, ok := m.Get(channel)
	if !ok {
		return fmt.Errorf("触达通道 %s 未注册", channel)
	}
	if err := p.Execute(data); err != nil {
		return fmt.Errorf("通道 %s 发送失败: %w", channel, err)
	}
	return nil
}
