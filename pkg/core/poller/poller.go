package poller

import (
	"context"
	"log"
	"sync"
	"time"
)

// FetchFunc 单次拉取函数（对外导出）
// 执行完整的"拉取+重算"周期并返回快照值；不做增量更新
type FetchFunc func(ctx context.Context) (any, error)

// Poller 固定间隔轮询器（对外导出）
// 每个tick重跑完整拉取周期；拉取失败只通知错误回调，等待下一个tick，
// 不做重试也不做退避
type Poller struct {
	name     string
	key      string
	interval time.Duration
	fetch    FetchFunc
	store    *SnapshotStore

	onUpdate func(key string, snap Snapshot) // 快照更新后回调（发事件）
	onError  func(name string, err error)    // 拉取失败回调（发通知）
}

// PollerOption 轮询器可选配置（对外导出）
type PollerOption func(*Poller)

// WithUpdateHook 设置快照更新回调
func WithUpdateHook(fn func(key string, snap Snapshot)) PollerOption {
	return func(p *Poller) { p.onUpdate = fn }
}

// WithErrorHook 设置拉取失败回调
func WithErrorHook(fn func(name string, err error)) PollerOption {
	return func(p *Poller) { p.onError = fn }
}

// NewPoller 创建轮询器（对外导出）
// interval建议5~30秒，按视图配置
func NewPoller(name, key string, interval time.Duration, store *SnapshotStore, fetch FetchFunc, opts ...PollerOption) *Poller {
	p := &Poller{
		name:     name,
		key:      key,
		interval: interval,
		fetch:    fetch,
		store:    store,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run 运行轮询循环直到ctx取消（对外导出）
// 启动后先立即执行一次，再按固定间隔tick
func (p *Poller) Run(ctx context.Context) {
	log.Printf("🔄 [轮询器] %s 启动: key=%s, interval=%s", p.name, p.key, p.interval)

	p.tick(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("🛑 [轮询器] %s 停止", p.name)
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

// tick 执行一次完整的拉取周期
func (p *Poller) tick(ctx context.Context) {
	gen := p.store.Begin(p.key)

	value, err := p.fetch(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return // 关停中，不算失败
		}
		log.Printf("⚠️ [轮询器] %s 拉取失败: %v", p.name, err)
		if p.onError != nil {
			p.onError(p.name, err)
		}
		return
	}

	if !p.store.Complete(p.key, gen, value) {
		// 已被更新的拉取取代，丢弃本次结果
		return
	}

	if p.onUpdate != nil {
		snap, _ := p.store.Get(p.key)
		p.onUpdate(p.key, snap)
	}
}

// Group 轮询器组（对外导出）
// 统一启动/等待一组轮询器，组合根用
type Group struct {
	pollers []*Poller
	wg      sync.WaitGroup
}

// NewGroup 创建轮询器组
func NewGroup(pollers ...*Poller) *Group {
	return &Group{pollers: pollers}
}

// Add 添加轮询器
func (g *Group) Add(p *Poller) {
	g.pollers = append(g.pollers, p)
}

// Start 并发启动组内所有轮询器
func (g *Group) Start(ctx context.Context) {
	for _, p := range g.pollers {
		p := p
		g.wg.Add(1)
		go func() {
			defer g.wg.Done()
			p.Run(ctx)
		}()
	}
}

// Wait 等待所有轮询器退出
func (g *Group) Wait() {
	g.wg.Wait()
}
