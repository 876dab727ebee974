package main

import (
	"github.com/LENAX/quant-board/pkg/cli/cmd"
)

// CLI工具入口
func main() {
	cmd.Execute()
}
