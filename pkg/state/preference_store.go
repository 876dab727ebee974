package state

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/LENAX/quant-board/pkg/storage"
)

// 偏好键
const (
	prefKeyTheme        = "theme"
	prefKeyPollInterval = "poll_interval_seconds"
	prefKeyPinnedChains = "pinned_chains"
)

// Preferences 用户偏好（对外导出）
type Preferences struct {
	Theme               string   `json:"theme"`                 // 界面主题
	PollIntervalSeconds int      `json:"poll_interval_seconds"` // 前端轮询间隔（秒）
	PinnedChains        []string `json:"pinned_chains"`         // 置顶的任务链ID
}

// DefaultPreferences 默认偏好（对外导出）
func DefaultPreferences() Preferences {
	return Preferences{
		Theme:               "light",
		PollIntervalSeconds: 10,
		PinnedChains:        []string{},
	}
}

// PreferenceStore 偏好状态Store（对外导出）
// 偏好按键值逐条落库，读取时装配成类型化结构；缺失键回退默认值
type PreferenceStore struct {
	repo storage.DashboardRepository
}

// NewPreferenceStore 创建偏好Store（对外导出）
func NewPreferenceStore(repo storage.DashboardRepository) *PreferenceStore {
	return &PreferenceStore{repo: repo}
}

// Get 读取用户偏好，缺失键填默认值
func (s *PreferenceStore) Get(ctx context.Context, userID string) (Preferences, error) {
	prefs := DefaultPreferences()

	kv, err := s.repo.GetPreferences(ctx, userID)
	if err != nil {
		return prefs, fmt.Errorf("读取偏好失败: %w", err)
	}

	if v, ok := kv[prefKeyTheme]; ok && v != "" {
		prefs.Theme = v
	}
	if v, ok := kv[prefKeyPollInterval]; ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			prefs.PollIntervalSeconds = n
		}
	}
	if v, ok := kv[prefKeyPinnedChains]; ok && v != "" {
		var pinned []string
		if err := json.Unmarshal([]byte(v), &pinned); err == nil {
			prefs.PinnedChains = pinned
		}
	}

	return prefs, nil
}

// Put 整体写入用户偏好
func (s *PreferenceStore) Put(ctx context.Context, userID string, prefs Preferences) error {
	if err := s.repo.SetPreference(ctx, userID, prefKeyTheme, prefs.Theme); err != nil {
		return err
	}
	if err := s.repo.SetPreference(ctx, userID, prefKeyPollInterval, strconv.Itoa(prefs.PollIntervalSeconds)); err != nil {
		return err
	}

	pinned, err := json.Marshal(prefs.PinnedChains)
	if err != nil {
		return fmt.Errorf("序列化置顶链失败: %w", err)
	}
	return s.repo.SetPreference(ctx, userID, prefKeyPinnedChains, string(pinned))
}
