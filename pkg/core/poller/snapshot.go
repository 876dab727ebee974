// Package poller 提供定时轮询循环与最新值快照存储。
// 浏览器端的轮询是"后完成者覆盖"的隐式竞态；网关侧轮询是真并发，
// 因此快照单元用单调递增的代号做守卫，过期的完成结果直接丢弃。
package poller

import (
	"sync"
	"time"
)

// Snapshot 一次拉取的快照值（对外导出）
type Snapshot struct {
	Value     any       `json:"value"`      // 拉取结果
	UpdatedAt time.Time `json:"updated_at"` // 写入时间
}

// cell 单个视图键的快照单元
type cell struct {
	nextGen uint64 // 已分配的最大代号
	applied uint64 // 已写入的代号
	value   any
	updated time.Time
}

// SnapshotStore 按视图键组织的最新值快照存储（对外导出）
type SnapshotStore struct {
	mu    sync.Mutex
	cells map[string]*cell
}

// NewSnapshotStore 创建快照存储（对外导出）
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{
		cells: make(map[string]*cell),
	}
}

// Begin 开始一次拉取，返回本次拉取的代号
func (s *SnapshotStore) Begin(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cells[key]
	if c == nil {
		c = &cell{}
		s.cells[key] = c
	}
	c.nextGen++
	return c.nextGen
}

// Complete 提交拉取结果
// 仅当代号新于已写入的代号时才生效；返回false表示本次结果已被更新的拉取取代
func (s *SnapshotStore) Complete(key string, gen uint64, value any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cells[key]
	if c == nil || gen <= c.applied {
		return false
	}
	c.applied = gen
	c.value = value
	c.updated = time.Now()
	return true
}

// Get 读取视图键的最新快照
func (s *SnapshotStore) Get(key string) (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cells[key]
	if c == nil || c.applied == 0 {
		return Snapshot{}, false
	}
	return Snapshot{Value: c.value, UpdatedAt: c.updated}, true
}

// Keys 列出所有已有快照的视图键
func (s *SnapshotStore) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.cells))
	for k, c := range s.cells {
		if c.applied > 0 {
			keys = append(keys, k)
		}
	}
	return keys
}
