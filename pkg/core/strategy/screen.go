// Package strategy 提供策略视图的筛选逻辑。
// 策略快照来自上游引擎，网关不做任何因子或风险计算；
// Screen用一条布尔表达式在快照集合上做本地过滤，服务策略列表页的筛选框。
package strategy

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/LENAX/quant-board/pkg/upstream"
)

// ValidateExpression 校验筛选表达式（对外导出）
// 空表达式合法（不过滤）
func ValidateExpression(expression string) error {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil
	}
	if _, err := compile(expression); err != nil {
		return fmt.Errorf("筛选表达式无效: %w", err)
	}
	return nil
}

// compile 编译筛选表达式
func compile(expression string) (*vm.Program, error) {
	return expr.Compile(expression, expr.AsBool(), expr.AllowUndefinedVariables())
}

// env 单个策略快照的求值环境
// 字段名与前端筛选框提示保持一致
func env(s upstream.StrategySummary) map[string]any {
	return map[string]any{
		"id":            s.ID,
		"name":          s.Name,
		"style":         s.Style,
		"nav":           s.NAV,
		"return_rate":   s.ReturnRate,
		"annual_return": s.AnnualReturn,
		"max_drawdown":  s.MaxDrawdown,
		"sharpe":        s.Sharpe,
		"positions":     s.Positions,
		"status":        s.Status,
	}
}

// Screen 按表达式筛选策略快照（对外导出）
// 表达式对单个快照求值，例如 sharpe > 1.5 && max_drawdown < 0.2；
// 结果保持输入顺序；空表达式原样返回
func Screen(snapshots []upstream.StrategySummary, expression string) ([]upstream.StrategySummary, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return snapshots, nil
	}

	prog, err := compile(expression)
	if err != nil {
		return nil, fmt.Errorf("筛选表达式无效: %w", err)
	}

	matched := make([]upstream.StrategySummary, 0, len(snapshots))
	for _, s := range snapshots {
		out, err := expr.Run(prog, env(s))
		if err != nil {
			return nil, fmt.Errorf("筛选求值失败: strategy=%s, %w", s.ID, err)
		}
		hit, ok := out.(bool)
		if !ok {
			return nil, fmt.Errorf("筛选表达式结果必须是布尔值，实际为 %T", out)
		}
		if hit {
			matched = append(matched, s)
		}
	}
	return matched, nil
}
