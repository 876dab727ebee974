package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &DashboardConfig{}
	cfg.ApplyDefaults()

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8090, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Storage.Database.Type)
	assert.Equal(t, 5*time.Second, cfg.Polling.Chains.Std())
	assert.Equal(t, 30*time.Second, cfg.Polling.Knowledge.Std())
	assert.Equal(t, float64(250), cfg.Layout.HSpacing)
	assert.Equal(t, "admin", cfg.Auth.AdminUser)
}

func TestValidateRequiresSecrets(t *testing.T) {
	cfg := &DashboardConfig{}
	cfg.ApplyDefaults()
	assert.Error(t, cfg.Validate(), "缺少secret应报错")

	cfg.Auth.Secret = "s3cret"
	assert.Error(t, cfg.Validate(), "缺少admin_password应报错")

	cfg.Auth.AdminPassword = "p4ss"
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsUnknownDatabase(t *testing.T) {
	cfg := &DashboardConfig{}
	cfg.ApplyDefaults()
	cfg.Auth.Secret = "s"
	cfg.Auth.AdminPassword = "p"
	cfg.Storage.Database.Type = "oracle"
	assert.Error(t, cfg.Validate())
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quant-board.yaml")
	content := `
server:
  port: 9001
upstream:
  base_url: http://engine:8080
  timeout: 10s
storage:
  database:
    type: sqlite
    dsn: /tmp/board.db
polling:
  chains: 8s
auth:
  secret: from-file
  admin_password: pw
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9001, cfg.Server.Port)
	assert.Equal(t, "http://engine:8080", cfg.Upstream.BaseURL)
	assert.Equal(t, 8*time.Second, cfg.Polling.Chains.Std())
	// 未配置的项应回填默认值
	assert.Equal(t, 15*time.Second, cfg.Polling.Strategies.Std())
	assert.NoError(t, cfg.Validate())
}

func TestDurationUnmarshal(t *testing.T) {
	var cfg struct {
		TTL Duration `yaml:"ttl"`
	}

	require.NoError(t, yaml.Unmarshal([]byte("ttl: 90m"), &cfg))
	assert.Equal(t, 90*time.Minute, cfg.TTL.Std())

	// 裸数字按秒解释
	require.NoError(t, yaml.Unmarshal([]byte("ttl: 45"), &cfg))
	assert.Equal(t, 45*time.Second, cfg.TTL.Std())

	assert.Error(t, yaml.Unmarshal([]byte("ttl: 很快"), &cfg))
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8090, cfg.Server.Port)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("QUANT_BOARD_AUTH_SECRET", "env-secret")
	t.Setenv("QUANT_BOARD_DATABASE_DSN", "/data/override.db")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "env-secret", cfg.Auth.Secret)
	assert.Equal(t, "/data/override.db", cfg.Storage.Database.DSN)
}
