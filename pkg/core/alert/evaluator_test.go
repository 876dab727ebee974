package alert

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LENAX/quant-board/pkg/plugin"
	"github.com/LENAX/quant-board/pkg/state"
	"github.com/LENAX/quant-board/pkg/storage"
	"github.com/LENAX/quant-board/test/mocks"
)

// capturePlugin 捕获发送的告警数据
type capturePlugin struct {
	fired []plugin.AlertData
}

func (c *capturePlugin) Name() string                         { return "capture" }
func (c *capturePlugin) Init(params map[string]string) error  { return nil }
func (c *capturePlugin) Execute(data plugin.AlertData) error {
	c.fired = append(c.fired, data)
	return nil
}

func TestValidateCondition(t *testing.T) {
	assert.NoError(t, ValidateCondition(""))
	assert.NoError(t, ValidateCondition(`status == "failed" && progress < 0.5`))
	assert.Error(t, ValidateCondition(`status ==`), "语法错误")
	assert.Error(t, ValidateCondition(`1 + 1`), "非布尔结果")
}

func newTestEvaluator(t *testing.T, rules ...*storage.AlertRule) (*Evaluator, *capturePlugin, *mocks.MockDashboardRepository) {
	t.Helper()

	repo := mocks.NewMockDashboardRepository()
	for _, rule := range rules {
		require.NoError(t, repo.SaveAlertRule(context.Background(), rule))
	}

	cap := &capturePlugin{}
	notifiers := plugin.NewManager()
	require.NoError(t, notifiers.Register(cap))

	notifications := state.NewNotificationStore(repo, nil)

	ev := NewEvaluator(repo, notifiers, notifications)
	require.NoError(t, ev.Reload(context.Background()))
	return ev, cap, repo
}

func TestEvaluateFiresOnMatch(t *testing.T) {
	now := time.Now()
	ev, cap, repo := newTestEvaluator(t, &storage.AlertRule{
		ID:        "r1",
		Name:      "链路失败",
		Event:     "chain.status_changed",
		Condition: `status == "failed"`,
		Channel:   "capture",
		Enabled:   true,
		CreatedAt: now,
		UpdatedAt: now,
	})

	ev.Evaluate(context.Background(), "chain.status_changed", map[string]any{"status": "failed", "chain_id": "c1"})

	require.Len(t, cap.fired, 1)
	assert.Equal(t, "r1", cap.fired[0].RuleID)
	assert.Equal(t, "chain.status_changed", cap.fired[0].Event)

	// 命中同时落一条面板通知
	list, err := repo.ListNotifications(context.Background(), true, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, storage.LevelWarning, list[0].Level)
}

func TestEvaluateSkipsOnMiss(t *testing.T) {
	now := time.Now()
	ev, cap, _ := newTestEvaluator(t, &storage.AlertRule{
		ID:        "r1",
		Name:      "链路失败",
		Event:     "chain.status_changed",
		Condition: `status == "failed"`,
		Channel:   "capture",
		Enabled:   true,
		CreatedAt: now,
		UpdatedAt: now,
	})

	ev.Evaluate(context.Background(), "chain.status_changed", map[string]any{"status": "completed"})
	assert.Empty(t, cap.fired)
}

func TestEvaluateEmptyConditionAlwaysFires(t *testing.T) {
	now := time.Now()
	ev, cap, _ := newTestEvaluator(t, &storage.AlertRule{
		ID:        "r2",
		Name:      "任何策略更新",
		Event:     "strategies.updated",
		Condition: "",
		Channel:   "capture",
		Enabled:   true,
		CreatedAt: now,
		UpdatedAt: now,
	})

	ev.Evaluate(context.Background(), "strategies.updated", map[string]any{"count": 3})
	assert.Len(t, cap.fired, 1)
}

func TestReloadSkipsDisabledRules(t *testing.T) {
	now := time.Now()
	ev, cap, _ := newTestEvaluator(t, &storage.AlertRule{
		ID:        "r3",
		Name:      "已停用",
		Event:     "chain.status_changed",
		Condition: "",
		Channel:   "capture",
		Enabled:   false,
		CreatedAt: now,
		UpdatedAt: now,
	})

	ev.Evaluate(context.Background(), "chain.status_changed", map[string]any{})
	assert.Empty(t, cap.fired)
}

func TestEvaluateUndefinedVariableMiss(t *testing.T) {
	now := time.Now()
	// progress字段缺失：AllowUndefinedVariables下取nil，比较不命中
	ev, cap, _ := newTestEvaluator(t, &storage.AlertRule{
		ID:        "r4",
		Name:      "低进度失败",
		Event:     "chain.status_changed",
		Condition: `status == "failed" && progress != nil && progress < 0.5`,
		Channel:   "capture",
		Enabled:   true,
		CreatedAt: now,
		UpdatedAt: now,
	})

	ev.Evaluate(context.Background(), "chain.status_changed", map[string]any{"status": "failed"})
	assert.Empty(t, cap.fired)

	ev.Evaluate(context.Background(), "chain.status_changed", map[string]any{"status": "failed", "progress": 0.2})
	assert.Len(t, cap.fired, 1)
}
