// Package mysql 提供面板存储的MySQL方言与构造入口。
package mysql

import (
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/LENAX/quant-board/pkg/storage/sqldb"
)

// Dialect MySQL方言（对外导出）
type Dialect struct{}

// Name 返回方言名称
func (d Dialect) Name() string {
	return "mysql"
}

// ConfigureDB MySQL无需连接初始化语句
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
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			INDEX idx_chat_session_user (user_id, updated_at)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,
		`CREATE TABLE IF NOT EXISTS chat_message (
			id VARCHAR(64) PRIMARY KEY,
			session_id VARCHAR(64) NOT NULL,
			role VARCHAR(16) NOT NULL,
			content TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			INDEX idx_chat_message_session (session_id, created_at)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,
		`CREATE TABLE IF NOT EXISTS user_preference (
			user_id VARCHAR(64) NOT NULL,
			pref_key VARCHAR(64) NOT NULL,
			pref_value TEXT NOT NULL,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_id, pref_key)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,
		`CREATE TABLE IF NOT EXISTS notification (
			id VARCHAR(64) PRIMARY KEY,
			level VARCHAR(16) NOT NULL DEFAULT 'info',
			title VARCHAR(255) NOT NULL DEFAULT '',
			body TEXT NOT NULL,
			source VARCHAR(64) NOT NULL DEFAULT '',
			read_flag TINYINT(1) NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			INDEX idx_notification_read (read_flag, created_at)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,
		`CREATE TABLE IF NOT EXISTS alert_rule (
			id VARCHAR(64) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			event VARCHAR(64) NOT NULL,
			condition_expr TEXT NOT NULL,
			channel VARCHAR(32) NOT NULL DEFAULT '',
			enabled TINYINT(1) NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,
	}
}

// New 通过DSN创建MySQL面板存储（对外导出）
// DSN需携带parseTime=true以正确扫描DATETIME
func New(dsn string) (*sqldb.Repo, error) {
	db, err := sqlx.Open("mysql", dsn)
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
