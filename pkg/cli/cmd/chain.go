package cmd

import (
	"fmt"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/LENAX/quant-board/pkg/cli/output"
	"github.com/LENAX/quant-board/pkg/cli/qboard"
)

var (
	chainStatus string
	chainLimit  int
)

// chainCmd chain子命令
var chainCmd = &cobra.Command{
	Use:   "chain",
	Short: "任务链管理命令",
	Long:  `查看任务链列表、图、执行计划，并下发控制指令。`,
}

// chainListCmd 列出任务链
var chainListCmd = &cobra.Command{
	Use:   "list",
	Short: "列出任务链",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := qboard.New(gatewayURL, authToken)
		result, err := client.ListChains(chainStatus, chainLimit, 0)
		if err != nil {
			output.Error("查询失败: %v", err)
			return err
		}

		if outputJSON {
			return output.PrintJSON(result)
		}

		if len(result.Items) == 0 {
			output.Info("暂无任务链")
			return nil
		}

		table := output.NewTable([]string{"CHAIN_ID", "NAME", "TASKS", "STATUS", "CRON", "CREATED"})
		for _, chain := range result.Items {
			cron := "-"
			if chain.CronEnabled && chain.CronExpr != "" {
				cron = chain.CronExpr
			}
			table.AddRow([]string{
				chain.ID,
				chain.Name,
				fmt.Sprintf("%d", chain.TaskCount),
				formatStatus(chain.Status),
				cron,
				chain.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}
		table.Render()
		fmt.Printf("\n总计: %d 条\n", result.Total)
		return nil
	},
}

// chainGraphCmd 查看任务链图
var chainGraphCmd = &cobra.Command{
	Use:   "graph <chain-id>",
	Short: "查看任务链图（渲染描述符）",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := qboard.New(gatewayURL, authToken)

		sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		sp.Suffix = " 拉取任务链图..."
		sp.Start()
		graph, err := client.GetChainGraph(args[0])
		sp.Stop()
		if err != nil {
			output.Error("查询失败: %v", err)
			return err
		}

		if outputJSON {
			return output.PrintJSON(graph)
		}

		table := output.NewTable([]string{"NODE_ID", "LABEL", "TYPE", "STATUS", "X", "Y"})
		for _, n := range graph.Nodes {
			table.AddRow([]string{
				n.ID,
				n.Data.Label,
				n.Data.TaskType,
				formatStatus(string(n.Data.Status)),
				fmt.Sprintf("%.0f", n.Position.X),
				fmt.Sprintf("%.0f", n.Position.Y),
			})
		}
		table.Render()
		fmt.Printf("\n节点: %d  边: %d\n", len(graph.Nodes), len(graph.Edges))
		return nil
	},
}

// chainPlanCmd 查看执行计划
var chainPlanCmd = &cobra.Command{
	Use:   "plan <chain-id>",
	Short: "查看任务链执行计划（拓扑分批）",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := qboard.New(gatewayURL, authToken)

		sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		sp.Suffix = " 计算执行计划..."
		sp.Start()
		plan, err := client.GetChainPlan(args[0])
		sp.Stop()
		if err != nil {
			output.Error("查询失败: %v", err)
			return err
		}

		if outputJSON {
			return output.PrintJSON(plan)
		}

		for i, stage := range plan.Stages {
			fmt.Printf("Stage %d:\n", i+1)
			for _, node := range stage {
				fmt.Printf("  - %s\n", node)
			}
		}
		fmt.Printf("\n阶段数: %d  最大并行度: %d\n", plan.Depth, plan.Width)
		return nil
	},
}

// chainDotCmd DOT导出
var chainDotCmd = &cobra.Command{
	Use:   "dot <chain-id>",
	Short: "导出任务链图为DOT格式",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := qboard.New(gatewayURL, authToken)
		result, err := client.GetChainDot(args[0])
		if err != nil {
			output.Error("导出失败: %v", err)
			return err
		}

		if outputJSON {
			return output.PrintJSON(result)
		}
		fmt.Println(result.Dot)
		return nil
	},
}

// newControlCmd 控制指令命令工厂
func newControlCmd(action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   action + " <chain-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := qboard.New(gatewayURL, authToken)
			if err := client.ControlChain(args[0], action); err != nil {
				output.Error("指令下发失败: %v", err)
				return err
			}
			output.Success("指令已下发: %s %s", action, args[0])
			return nil
		},
	}
}

// formatStatus 状态着色
func formatStatus(status string) string {
	switch status {
	case "success", "Success":
		return "✅ " + status
	case "failed", "Failed":
		return "❌ " + status
	case "running", "Running":
		return "🔄 " + status
	case "paused", "Paused":
		return "⏸️  " + status
	case "pending", "Pending":
		return "⏳ " + status
	case "cancelled", "Cancelled":
		return "🛑 " + status
	default:
		return status
	}
}

func init() {
	chainListCmd.Flags().StringVar(&chainStatus, "status", "", "按状态过滤")
	chainListCmd.Flags().IntVar(&chainLimit, "limit", 50, "返回条数上限")

	chainCmd.AddCommand(chainListCmd)
	chainCmd.AddCommand(chainGraphCmd)
	chainCmd.AddCommand(chainPlanCmd)
	chainCmd.AddCommand(chainDotCmd)
	chainCmd.AddCommand(newControlCmd("start", "启动任务链"))
	chainCmd.AddCommand(newControlCmd("pause", "暂停任务链"))
	chainCmd.AddCommand(newControlCmd("resume", "恢复任务链"))
	chainCmd.AddCommand(newControlCmd("cancel", "取消任务链"))
}
