package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	// 全局变量
	gatewayURL string
	authToken  string
	outputJSON bool
)

// rootCmd 根命令
var rootCmd = &cobra.Command{
	Use:   "quant-board",
	Short: "Quant Board CLI - 量化面板网关命令行工具",
	Long: `Quant Board CLI 是量化任务面板网关的命令行工具。

支持的功能：
  - 查看任务链（列表、图、执行计划、DOT导出）
  - 下发任务链控制指令（启动、暂停、恢复、取消）
  - 查看与筛选策略
  - 查看面板通知
  - 启动网关HTTP服务

使用示例：
  # 登录换取令牌
  quant-board login -u admin

  # 列出任务链
  quant-board chain list --token <token>

  # 查看任务链执行计划
  quant-board chain plan <chain-id> --token <token>

  # 启动网关服务
  quant-board server start --config ./configs/quant-board.yaml`,
}

// Execute 执行根命令
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// 全局参数；令牌也可用QUANT_BOARD_TOKEN环境变量注入
	rootCmd.PersistentFlags().StringVarP(&gatewayURL, "gateway", "g", "http://localhost:8090", "网关服务地址")
	rootCmd.PersistentFlags().StringVarP(&authToken, "token", "t", os.Getenv("QUANT_BOARD_TOKEN"), "访问令牌")
	rootCmd.PersistentFlags().BoolVarP(&outputJSON, "json", "j", false, "使用JSON格式输出")

	// 添加子命令
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(chainCmd)
	rootCmd.AddCommand(strategyCmd)
	rootCmd.AddCommand(notifyCmd)
	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(versionCmd)
}
