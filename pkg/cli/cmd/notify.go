package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/LENAX/quant-board/pkg/cli/output"
	"github.com/LENAX/quant-board/pkg/cli/qboard"
)

var (
	notifyUnread bool
	notifyLimit  int
)

// notifyCmd notify子命令
var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "面板通知命令",
	Long:  `查看面板通知，标记已读。`,
}

// notifyListCmd 列出通知
var notifyListCmd = &cobra.Command{
	Use:   "list",
	Short: "列出通知",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := qboard.New(gatewayURL, authToken)
		result, err := client.ListNotifications(notifyUnread, notifyLimit)
		if err != nil {
			output.Error("查询失败: %v", err)
			return err
		}

		if outputJSON {
			return output.PrintJSON(result)
		}

		if len(result.Items) == 0 {
			output.Info("暂无通知")
			return nil
		}

		table := output.NewTable([]string{"ID", "LEVEL", "TITLE", "SOURCE", "READ", "CREATED"})
		for _, n := range result.Items {
			read := " "
			if n.Read {
				read = "✓"
			}
			table.AddRow([]string{
				n.ID,
				formatLevel(n.Level),
				n.Title,
				n.Source,
				read,
				n.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}
		table.Render()
		fmt.Printf("\n总计: %d 条\n", result.Total)
		return nil
	},
}

// notifyReadCmd 标记已读
var notifyReadCmd = &cobra.Command{
	Use:   "read <id>",
	Short: "标记通知已读",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := qboard.New(gatewayURL, authToken)
		if err := client.MarkNotificationRead(args[0]); err != nil {
			output.Error("标记失败: %v", err)
			return err
		}
		output.Success("已标记已读: %s", args[0])
		return nil
	},
}

// formatLevel 级别着色
func formatLevel(level string) string {
	switch level {
	case "error":
		return "❌ error"
	case "warning":
		return "⚠️  warning"
	case "info":
		return "ℹ️  info"
	default:
		return level
	}
}

func init() {
	notifyListCmd.Flags().BoolVar(&notifyUnread, "unread", false, "只看未读")
	notifyListCmd.Flags().IntVar(&notifyLimit, "limit", 50, "返回条数上限")

	notifyCmd.AddCommand(notifyListCmd)
	notifyCmd.AddCommand(notifyReadCmd)
}
