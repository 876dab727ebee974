package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/LENAX/quant-board/internal/app"
	"github.com/LENAX/quant-board/pkg/cli/output"
)

var configPath string

// serverCmd server子命令
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "服务管理命令",
	Long:  `管理Quant Board网关HTTP服务。`,
}

// serverStartCmd 启动服务
var serverStartCmd = &cobra.Command{
	Use:   "start",
	Short: "启动网关HTTP服务",
	Long: `启动Quant Board网关HTTP服务。

示例：
  # 使用默认配置启动
  quant-board server start

  # 指定配置文件启动
  quant-board server start --config ./configs/quant-board.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// 检查配置文件
		if configPath == "" {
			defaultPaths := []string{
				"./configs/quant-board.yaml",
				"./config/quant-board.yaml",
				"./quant-board.yaml",
			}
			for _, p := range defaultPaths {
				if _, err := os.Stat(p); err == nil {
					configPath = p
					break
				}
			}
			if configPath == "" {
				output.Error("未找到配置文件，请使用 --config 指定")
				return fmt.Errorf("config file not found")
			}
		}

		output.Info("使用配置文件: %s", configPath)

		if err := app.Run(configPath); err != nil {
			output.Error("服务退出: %v", err)
			return err
		}
		return nil
	},
}

func init() {
	serverStartCmd.Flags().StringVarP(&configPath, "config", "c", "", "配置文件路径")

	serverCmd.AddCommand(serverStartCmd)
}
