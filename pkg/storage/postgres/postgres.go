// Package postgres 提供面板存储的PostgreSQL方言与构造入口。
package postgres

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/LENAX/quant-board/pkg/storage/sqldb"
)

// Dialect PostgreSQL方言（对外导出）
type Dialect struct{}

// Name 返回方言名称
func (d Dialect) Name() string {
	return "postgres"
}

// ConfigureDB PostgreSQL无需连接初始化语句
func (d Dialect) ConfigureDB() []string {
	return nil
}

// Schema 返回建表DDL
func (d Dialect) Schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS chat_session (
			id VARCHAR(64) PRIMARY KEY,
			user_id VARCHAR(64) NOT NULL,
			title VARCHAR(255) NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_chat_session_user ON chat_session(user_id, updated_at);`,
		`CREATE TABLE IF NOT EXISTS chat_message (
			id VARCHAR(64) PRIMARY KEY,
			session_id VARCHAR(64) NOT NULL,
			role VARCHAR(16) NOT NULL,
			content TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_chat_message_session ON chat_message(session_id, created_at);`,
		`CREATE TABLE IF NOT EXISTS user_preference (
			user_id VARCHAR(64) NOT NULL,
			pref_key VARCHAR(64) NOT NULL,
			pref_value TEXT NOT NULL DEFAULT '',
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (user_id, pref_key)
		);`,
		`CREATE TABLE IF NOT EXISTS notification (
			id VARCHAR(64) PRIMARY KEY,
			level VARCHAR(16) NOT NULL DEFAULT 'info',
			title VARCHAR(255) NOT NULL DEFAULT '',
			body TEXT NOT NULL DEFAULT '',
			source VARCHAR(64) NOT NULL DEFAULT '',
			read_flag BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_notification_read ON notification(read_flag, created_at);`,
		`CREATE TABLE IF NOT EXISTS alert_rule (
			id VARCHAR(64) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			event VARCHAR(64) NOT NULL,
			condition_expr TEXT NOT NULL DEFAULT '',
			channel VARCHAR(32) NOT NULL DEFAULT '',
			enabled BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
	}
}

// New 通过DSN创建PostgreSQL面板存储（对外导出）
func New(dsn string) (*sqldb.Repo, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("打开数据库失败: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(2 * time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("数据库连接失败: %w", err)
	}
	return sqldb.New(db, Dialect{})
}
