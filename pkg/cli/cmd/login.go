package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/LENAX/quant-board/pkg/cli/output"
	"github.com/LENAX/quant-board/pkg/cli/qboard"
)

var (
	loginUser     string
	loginPassword string
)

// loginCmd 登录命令
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "登录网关换取访问令牌",
	RunE: func(cmd *cobra.Command, args []string) error {
		password := loginPassword
		if password == "" {
			// 口令不在命令行明文传递时从stdin读
			fmt.Print("Password: ")
			reader := bufio.NewReader(os.Stdin)
			line, err := reader.ReadString('\n')
			if err != nil {
				return err
			}
			password = strings.TrimSpace(line)
		}

		client := qboard.New(gatewayURL, "")
		token, err := client.Login(loginUser, password)
		if err != nil {
			output.Error("登录失败: %v", err)
			return err
		}

		if outputJSON {
			return output.PrintJSON(token)
		}

		output.Success("登录成功，令牌有效期至 %s", token.ExpiresAt)
		fmt.Println(token.Token)
		output.Info("可导出环境变量复用: export QUANT_BOARD_TOKEN=<token>")
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginUser, "user", "u", "admin", "用户名")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "口令（留空则从stdin读取）")
}
