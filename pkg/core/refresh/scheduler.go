// Package refresh 提供面板的定时维护任务。
// 轮询器负责高频快照刷新；这里挂低频的cron作业：
// 夜间清理过期会话与已读通知，以及可配置的快照强刷。
package refresh

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"
)

// Scheduler 定时任务调度器（对外导出）
type Scheduler struct {
	cron    *cron.Cron
	entries map[string]cron.EntryID // 任务名 -> cron.EntryID映射
	mu      sync.Mutex
}

// NewScheduler 创建调度器（对外导出）
// 支持秒级精度的cron表达式
func NewScheduler() *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		entries: make(map[string]cron.EntryID),
	}
}

// Register 注册定时任务（对外导出）
// spec为带秒位的cron表达式；任务名重复视为错误
func (s *Scheduler) Register(name, spec string, job func(ctx context.Context)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[name]; exists {
		return fmt.Errorf("任务 %s 已注册", name)
	}

	// 验证表达式（使用Parser支持秒级精度）
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(spec); err != nil {
		return fmt.Errorf("任务 %s 的cron表达式无效: %w", name, err)
	}

	entryID, err := s.cron.AddFunc(spec, func() {
		log.Printf("🕐 [定时任务] %s 开始执行", name)
		job(context.Background())
	})
	if err != nil {
		return fmt.Errorf("添加定时任务失败: %w", err)
	}

	s.entries[name] = entryID
	log.Printf("✅ [定时任务] 已注册: name=%s, spec=%s", name, spec)
	return nil
}

// Unregister 移除定时任务（对外导出）
func (s *Scheduler) Unregister(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entryID, exists := s.entries[name]
	if !exists {
		return fmt.Errorf("任务 %s 未注册", name)
	}
	s.cron.Remove(entryID)
	delete(s.entries, name)
	return nil
}

// Start 启动调度器（对外导出）
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Println("🚀 [定时任务] 调度器已启动")
}

// Stop 停止调度器并等待在途任务结束（对外导出）
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("🛑 [定时任务] 调度器已停止")
}

// Names 列出已注册的任务名（对外导出）
func (s *Scheduler) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	return names
}
