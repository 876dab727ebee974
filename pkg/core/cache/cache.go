// Package cache 提供带TTL的内存缓存，链接预览等短命派生数据用。
package cache

import (
	"sync"
	"time"
)

// Cache TTL缓存接口（对外导出）
type Cache interface {
	// Set 设置缓存值
	// key: 缓存键
	// value: 缓存数据
	// ttl: 缓存有效期
	Set(key string, value interface{}, ttl time.Duration) error

	// Get 获取缓存值
	// key: 缓存键
	// 返回: 缓存数据和是否存在
	Get(key string) (interface{}, bool)

	// Delete 删除缓存值
	Delete(key string) error

	// Clear 清空所有缓存
	Clear() error
}

// entry 缓存条目（内部使用）
type entry struct {
	value      interface{}
	expireTime time.Time
}

// MemoryCache 内存缓存实现（对外导出）
type MemoryCache struct {
	mu    sync.RWMutex
	items map[string]*entry
}

// NewMemoryCache 创建内存缓存实例（对外导出）
func NewMemoryCache() *MemoryCache {
	c := &MemoryCache{
		items: make(map[string]*entry),
	}
	// 启动清理协程，定期清理过期条目
	go c.cleanupExpired()
	return c
}

// Set 设置缓存值
func (c *MemoryCache) Set(key string, value interface{}, ttl time.Duration) error {
	if key == "" {
		return nil // 空key，忽略
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = &entry{
		value:      value,
		expireTime: time.Now().Add(ttl),
	}
	return nil
}

// Get 获取缓存值
// 过期条目视为不存在，交由清理协程回收
func (c *MemoryCache) Get(key string) (interface{}, bool) {
	if key == "" {
		return nil, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	e, exists := c.items[key]
	if !exists || time.Now().After(e.expireTime) {
		return nil, false
	}
	return e.value, true
}

// Delete 删除缓存值
func (c *MemoryCache) Delete(key string) error {
	if key == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
	return nil
}

// Clear 清空所有缓存
func (c *MemoryCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*entry)
	return nil
}

// cleanupExpired 清理过期条目（内部方法）
func (c *MemoryCache) cleanupExpired() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		now := time.Now()
		for key, e := range c.items {
			if now.After(e.expireTime) {
				delete(c.items, key)
			}
		}
		c.mu.Unlock()
	}
}
