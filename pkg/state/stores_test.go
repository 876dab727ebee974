package state

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LENAX/quant-board/pkg/storage"
	"github.com/LENAX/quant-board/test/mocks"
)

func TestChatStoreSessionLifecycle(t *testing.T) {
	repo := mocks.NewMockDashboardRepository()
	store := NewChatStore(repo)
	ctx := context.Background()

	session, err := store.CreateSession(ctx, "alice", "调仓讨论")
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, "调仓讨论", session.Title)

	// 新建会话自动设为活跃
	active, ok := store.ActiveSession("alice")
	assert.True(t, ok)
	assert.Equal(t, session.ID, active)

	// 消息追加后能按会话读回
	_, err = store.AppendMessage(ctx, session.ID, storage.RoleUser, "今天的回撤怎么样")
	require.NoError(t, err)
	_, err = store.AppendMessage(ctx, session.ID, storage.RoleAssistant, "最大回撤2.1%")
	require.NoError(t, err)

	messages, err := store.Messages(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, storage.RoleUser, messages[0].Role)

	// 删除活跃会话后指针被清空
	require.NoError(t, store.DeleteSession(ctx, "alice", session.ID))
	_, ok = store.ActiveSession("alice")
	assert.False(t, ok)

	_, err = store.GetSession(ctx, session.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestChatStoreDefaultTitle(t *testing.T) {
	store := NewChatStore(mocks.NewMockDashboardRepository())

	session, err := store.CreateSession(context.Background(), "alice", "")
	require.NoError(t, err)
	assert.Equal(t, "新对话", session.Title)
}

func TestChatStoreListIsScopedToUser(t *testing.T) {
	store := NewChatStore(mocks.NewMockDashboardRepository())
	ctx := context.Background()

	_, err := store.CreateSession(ctx, "alice", "a1")
	require.NoError(t, err)
	_, err = store.CreateSession(ctx, "bob", "b1")
	require.NoError(t, err)

	sessions, err := store.ListSessions(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "a1", sessions[0].Title)
}

func TestPreferenceStoreDefaultsWhenEmpty(t *testing.T) {
	store := NewPreferenceStore(mocks.NewMockDashboardRepository())

	prefs, err := store.Get(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "light", prefs.Theme)
	assert.Equal(t, 10, prefs.PollIntervalSeconds)
	assert.Empty(t, prefs.PinnedChains)
}

func TestPreferenceStoreRoundtrip(t *testing.T) {
	store := NewPreferenceStore(mocks.NewMockDashboardRepository())
	ctx := context.Background()

	want := Preferences{
		Theme:               "dark",
		PollIntervalSeconds: 5,
		PinnedChains:        []string{"chain-1", "chain-2"},
	}
	require.NoError(t, store.Put(ctx, "alice", want))

	got, err := store.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// 其他用户不受影响
	other, err := store.Get(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, "light", other.Theme)
}

func TestPreferenceStoreIgnoresBadStoredValues(t *testing.T) {
	repo := mocks.NewMockDashboardRepository()
	store := NewPreferenceStore(repo)
	ctx := context.Background()

	// 手工写入坏值，读取时应回退默认
	require.NoError(t, repo.SetPreference(ctx, "alice", "poll_interval_seconds", "not-a-number"))
	require.NoError(t, repo.SetPreference(ctx, "alice", "pinned_chains", "{broken"))

	prefs, err := store.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 10, prefs.PollIntervalSeconds)
	assert.Empty(t, prefs.PinnedChains)
}

func TestNotificationStoreAppendAndRead(t *testing.T) {
	repo := mocks.NewMockDashboardRepository()
	store := NewNotificationStore(repo, nil)
	ctx := context.Background()

	n, err := store.Append(ctx, storage.LevelWarning, "回撤告警", "策略A回撤超过阈值", "alert")
	require.NoError(t, err)
	assert.NotEmpty(t, n.ID)
	assert.False(t, n.Read)

	_, err = store.Append(ctx, storage.LevelInfo, "拉取恢复", "任务链列表恢复正常", "poller")
	require.NoError(t, err)

	unread, err := store.List(ctx, true, 10)
	require.NoError(t, err)
	assert.Len(t, unread, 2)

	require.NoError(t, store.MarkRead(ctx, n.ID))
	unread, err = store.List(ctx, true, 10)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.NotEqual(t, n.ID, unread[0].ID)

	require.NoError(t, store.MarkAllRead(ctx))
	unread, err = store.List(ctx, true, 10)
	require.NoError(t, err)
	assert.Empty(t, unread)
}

func TestNotificationStorePurgeReadKeepsUnread(t *testing.T) {
	repo := mocks.NewMockDashboardRepository()
	store := NewNotificationStore(repo, nil)
	ctx := context.Background()

	read, err := store.Append(ctx, storage.LevelInfo, "旧通知", "", "api")
	require.NoError(t, err)
	require.NoError(t, store.MarkRead(ctx, read.ID))

	_, err = store.Append(ctx, storage.LevelError, "未读通知", "", "api")
	require.NoError(t, err)

	// cutoff在未来，已读的都该被清掉
	n, err := store.PurgeRead(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	all, err := store.List(ctx, false, 10)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "未读通知", all[0].Title)
}
