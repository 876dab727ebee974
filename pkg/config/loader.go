package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// 环境变量覆盖键
const (
	envAuthSecret    = "QUANT_BOARD_AUTH_SECRET"
	envAdminPassword = "QUANT_BOARD_ADMIN_PASSWORD"
	envUpstreamToken = "QUANT_BOARD_UPSTREAM_TOKEN"
	envDatabaseDSN   = "QUANT_BOARD_DATABASE_DSN"
)

// Load 加载配置文件（对外导出）
// 先加载.env（不存在则忽略），再读yaml，最后用环境变量覆盖敏感项；
// 配置文件不存在时返回纯默认配置
func Load(path string) (*DashboardConfig, error) {
	// .env不存在不是错误
	_ = godotenv.Load()

	cfg := &DashboardConfig{}

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("解析配置文件失败: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	applyEnvOverrides(cfg)
	cfg.ApplyDefaults()
	return cfg, nil
}

// applyEnvOverrides 敏感配置项优先取环境变量
func applyEnvOverrides(cfg *DashboardConfig) {
	if v := os.Getenv(envAuthSecret); v != "" {
		cfg.Auth.Secret = v
	}
	if v := os.Getenv(envAdminPassword); v != "" {
		cfg.Auth.AdminPassword = v
	}
	if v := os.Getenv(envUpstreamToken); v != "" {
		cfg.Upstream.Token = v
	}
	if v := os.Getenv(envDatabaseDSN); v != "" {
		cfg.Storage.Database.DSN = v
	}
}
