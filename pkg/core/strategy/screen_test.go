package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LENAX/quant-board/pkg/upstream"
)

func snapshots() []upstream.StrategySummary {
	return []upstream.StrategySummary{
		{ID: "s1", Name: "动量轮动", Style: []string{"momentum"}, Sharpe: 2.1, MaxDrawdown: 0.12, ReturnRate: 0.35, Status: "live"},
		{ID: "s2", Name: "均值回归", Style: []string{"reversion"}, Sharpe: 1.2, MaxDrawdown: 0.25, ReturnRate: 0.18, Status: "live"},
		{ID: "s3", Name: "打新底仓", Style: []string{"arbitrage"}, Sharpe: 0.8, MaxDrawdown: 0.05, ReturnRate: 0.06, Status: "paused"},
	}
}

func TestScreenByNumericCondition(t *testing.T) {
	got, err := Screen(snapshots(), `sharpe > 1.5 && max_drawdown < 0.2`)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "s1", got[0].ID)
}

func TestScreenKeepsInputOrder(t *testing.T) {
	got, err := Screen(snapshots(), `status == "live"`)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "s1", got[0].ID)
	assert.Equal(t, "s2", got[1].ID)
}

func TestScreenEmptyExpressionReturnsAll(t *testing.T) {
	in := snapshots()
	got, err := Screen(in, "  ")
	require.NoError(t, err)
	assert.Equal(t, in, got)
}

func TestScreenStyleMembership(t *testing.T) {
	got, err := Screen(snapshots(), `"momentum" in style`)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "s1", got[0].ID)
}

func TestScreenInvalidExpression(t *testing.T) {
	_, err := Screen(snapshots(), `sharpe >`)
	assert.Error(t, err)

	assert.Error(t, ValidateExpression(`sharpe >`))
	assert.NoError(t, ValidateExpression(``))
	assert.NoError(t, ValidateExpression(`sharpe > 1`))
}
