package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/LENAX/quant-board/pkg/api/dto"
	"github.com/LENAX/quant-board/pkg/cli/output"
	"github.com/LENAX/quant-board/pkg/cli/qboard"
	"github.com/LENAX/quant-board/pkg/upstream"
)

// strategyCmd strategy子命令
var strategyCmd = &cobra.Command{
	Use:   "strategy",
	Short: "策略查看命令",
	Long:  `查看策略列表，支持表达式筛选。`,
}

// strategyListCmd 列出策略
var strategyListCmd = &cobra.Command{
	Use:   "list",
	Short: "列出策略",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := qboard.New(gatewayURL, authToken)
		result, err := client.ListStrategies()
		if err != nil {
			output.Error("查询失败: %v", err)
			return err
		}
		return renderStrategies(result)
	},
}

// strategyScreenCmd 表达式筛选策略
var strategyScreenCmd = &cobra.Command{
	Use:   "screen <expression>",
	Short: "按表达式筛选策略",
	Long: `在策略快照上对布尔表达式求值，保留命中的策略。

示例：
  quant-board strategy screen 'sharpe > 1.5 && max_drawdown < 0.2'
  quant-board strategy screen '"momentum" in style'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := qboard.New(gatewayURL, authToken)
		result, err := client.ScreenStrategies(args[0])
		if err != nil {
			output.Error("筛选失败: %v", err)
			return err
		}
		return renderStrategies(result)
	},
}

// renderStrategies 策略列表输出
func renderStrategies(result *dto.ListResponse[upstream.StrategySummary]) error {
	if outputJSON {
		return output.PrintJSON(result)
	}

	if len(result.Items) == 0 {
		output.Info("暂无策略")
		return nil
	}

	table := output.NewTable([]string{"STRATEGY_ID", "NAME", "STYLE", "NAV", "ANNUAL", "DRAWDOWN", "SHARPE", "STATUS"})
	for _, s := range result.Items {
		table.AddRow([]string{
			s.ID,
			s.Name,
			strings.Join(s.Style, ","),
			fmt.Sprintf("%.4f", s.NAV),
			fmt.Sprintf("%.2f%%", s.AnnualReturn*100),
			fmt.Sprintf("%.2f%%", s.MaxDrawdown*100),
			fmt.Sprintf("%.2f", s.Sharpe),
			formatStatus(s.Status),
		})
	}
	table.Render()
	fmt.Printf("\n总计: %d 条\n", result.Total)
	return nil
}

func init() {
	strategyCmd.AddCommand(strategyListCmd)
	strategyCmd.AddCommand(strategyScreenCmd)
}
