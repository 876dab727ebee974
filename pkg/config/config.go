// Package config 提供面板网关的配置结构与加载。
package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration 配置时长（对外导出）
// YAML里写"30s"/"12h"这类时间字符串；裸数字按秒解释
type Duration time.Duration

// UnmarshalYAML 实现yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, perr := time.ParseDuration(s)
		if perr != nil {
			return fmt.Errorf("无法解析时长%q: %w", s, perr)
		}
		*d = Duration(parsed)
		return nil
	}

	var n int64
	if err := value.Decode(&n); err != nil {
		return fmt.Errorf("无法解析时长: %w", err)
	}
	*d = Duration(time.Duration(n) * time.Second)
	return nil
}

// Std 转为time.Duration（对外导出）
func (d Duration) Std() time.Duration { return time.Duration(d) }

// DashboardConfig 面板网关配置（对外导出）
type DashboardConfig struct {
	Server struct {
		Host         string        `yaml:"host"`
		Port         int           `yaml:"port"`
		ReadTimeout  Duration `yaml:"read_timeout"`
		WriteTimeout Duration `yaml:"write_timeout"`
	} `yaml:"server"`

	Upstream struct {
		BaseURL string        `yaml:"base_url"` // 引擎API地址
		Token   string        `yaml:"token"`    // 引擎访问令牌（可选）
		Timeout Duration      `yaml:"timeout"`  // 单次请求超时
	} `yaml:"upstream"`

	Storage struct {
		Database struct {
			Type string `yaml:"type"` // sqlite/mysql/postgres
			DSN  string `yaml:"dsn"`
		} `yaml:"database"`
	} `yaml:"storage"`

	Polling struct {
		Chains     Duration `yaml:"chains"`     // 任务链列表轮询间隔
		Strategies Duration `yaml:"strategies"` // 策略快照轮询间隔
		Knowledge  Duration `yaml:"knowledge"`  // 知识图谱轮询间隔
	} `yaml:"polling"`

	Auth struct {
		Secret        string        `yaml:"secret"`         // JWT签名密钥
		TokenTTL      Duration `yaml:"token_ttl"`      // 令牌有效期
		AdminUser     string        `yaml:"admin_user"`     // 管理员用户名
		AdminPassword string        `yaml:"admin_password"` // 管理员口令
	} `yaml:"auth"`

	Alerts struct {
		Enabled  bool                         `yaml:"enabled"`  // 是否启用告警评估
		Channels map[string]map[string]string `yaml:"channels"` // 通道名 -> 插件初始化参数
	} `yaml:"alerts"`

	Cleanup struct {
		CronExpr              string        `yaml:"cron_expr"`              // 清理任务cron表达式（带秒位）
		ChatRetention         Duration `yaml:"chat_retention"`         // 会话保留时长
		NotificationRetention Duration `yaml:"notification_retention"` // 已读通知保留时长
	} `yaml:"cleanup"`

	Layout struct {
		HSpacing float64 `yaml:"h_spacing"` // 层间水平间距
		VSpacing float64 `yaml:"v_spacing"` // 层内垂直间距
		BaseX    float64 `yaml:"base_x"`    // 水平基准偏移
		BaseY    float64 `yaml:"base_y"`    // 垂直基准偏移
	} `yaml:"layout"`
}

// ApplyDefaults 应用默认值（对外导出）
func (c *DashboardConfig) ApplyDefaults() {
	// Server默认值
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port <= 0 {
		c.Server.Port = 8090
	}
	if c.Server.ReadTimeout <= 0 {
		c.Server.ReadTimeout = Duration(30 * time.Second)
	}
	if c.Server.WriteTimeout <= 0 {
		c.Server.WriteTimeout = Duration(30 * time.Second)
	}

	// Upstream默认值
	if c.Upstream.BaseURL == "" {
		c.Upstream.BaseURL = "http://localhost:8080"
	}
	if c.Upstream.Timeout <= 0 {
		c.Upstream.Timeout = Duration(30 * time.Second)
	}

	// Storage默认值
	if c.Storage.Database.Type == "" {
		c.Storage.Database.Type = "sqlite"
	}
	if c.Storage.Database.DSN == "" {
		c.Storage.Database.DSN = "./quant-board.db"
	}

	// Polling默认值（5~30秒区间，按视图区分）
	if c.Polling.Chains <= 0 {
		c.Polling.Chains = Duration(5 * time.Second)
	}
	if c.Polling.Strategies <= 0 {
		c.Polling.Strategies = Duration(15 * time.Second)
	}
	if c.Polling.Knowledge <= 0 {
		c.Polling.Knowledge = Duration(30 * time.Second)
	}

	// Auth默认值
	if c.Auth.TokenTTL <= 0 {
		c.Auth.TokenTTL = Duration(12 * time.Hour)
	}
	if c.Auth.AdminUser == "" {
		c.Auth.AdminUser = "admin"
	}

	// Cleanup默认值
	if c.Cleanup.CronExpr == "" {
		c.Cleanup.CronExpr = "0 0 3 * * *" // 每天凌晨3点
	}
	if c.Cleanup.ChatRetention <= 0 {
		c.Cleanup.ChatRetention = Duration(30 * 24 * time.Hour)
	}
	if c.Cleanup.NotificationRetention <= 0 {
		c.Cleanup.NotificationRetention = Duration(7 * 24 * time.Hour)
	}

	// Layout默认值
	if c.Layout.HSpacing <= 0 {
		c.Layout.HSpacing = 250
	}
	if c.Layout.VSpacing <= 0 {
		c.Layout.VSpacing = 120
	}
	if c.Layout.BaseX <= 0 {
		c.Layout.BaseX = 50
	}
	if c.Layout.BaseY <= 0 {
		c.Layout.BaseY = 50
	}
}

// Validate 校验配置（对外导出）
func (c *DashboardConfig) Validate() error {
	switch c.Storage.Database.Type {
	case "sqlite", "mysql", "postgres", "postgresql":
	default:
		return fmt.Errorf("不支持的数据库类型: %s", c.Storage.Database.Type)
	}

	if c.Auth.Secret == "" {
		return fmt.Errorf("auth.secret 不能为空（可用 QUANT_BOARD_AUTH_SECRET 环境变量注入）")
	}
	if c.Auth.AdminPassword == "" {
		return fmt.Errorf("auth.admin_password 不能为空")
	}

	if c.Upstream.BaseURL == "" {
		return fmt.Errorf("upstream.base_url 不能为空")
	}
	return nil
}
