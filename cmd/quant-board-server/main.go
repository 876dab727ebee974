package main

import (
	"flag"
	"log"

	"github.com/LENAX/quant-board/internal/app"
)

func main() {
	// 命令行参数
	configPath := flag.String("config", "./configs/quant-board.yaml", "网关配置文件路径")
	flag.Parse()

	log.Printf("Quant Board Gateway v%s", app.Version)
	log.Printf("配置文件: %s", *configPath)

	if err := app.Run(*configPath); err != nil {
		log.Fatalf("服务启动失败: %v", err)
	}
}
