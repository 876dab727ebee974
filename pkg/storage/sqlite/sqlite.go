// Package sqlite 提供面板存储的SQLite方言与构造入口。
package sqlite

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/LENAX/quant-board/pkg/storage/sqldb"
)

// Dialect SQLite方言（对外导出）
type Dialect struct{}

// Name 返回方言名称
func (d Dialect) Name() string {
	return "sqlite"
}

// ConfigureDB 返回SQLite连接初始化语句
func (d Dialect) ConfigureDB() []string {
	return []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=30000;",
		"PRAGMA wal_autocheckpoint=1000;",
		"PRAGMA synchronous=NORMAL;",
	}
}

// Schema 返回建表DDL
func (d Dialect) Schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS chat_session (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE INDEX IF NOT EXISTS idx_chat_session_user ON chat_session(user_id, updated_at);`,
		`CREATE TABLE IF NOT EXISTS chat_message (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE INDEX IF NOT EXISTS idx_chat_message_session ON chat_message(session_id, created_at);`,
		`CREATE TABLE IF NOT EXISTS user_preference (
			user_id TEXT NOT NULL,
			pref_key TEXT NOT NULL,
			pref_value TEXT NOT NULL DEFAULT '',
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_id, pref_key)
		);`,
		`CREATE TABLE IF NOT EXISTS notification (
			id TEXT PRIMARY KEY,
			level TEXT NOT NULL DEFAULT 'info',
			title TEXT NOT NULL DEFAULT '',
			body TEXT NOT NULL DEFAULT '',
			source TEXT NOT NULL DEFAULT '',
			read_flag INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE INDEX IF NOT EXISTS idx_notification_read ON notification(read_flag, created_at);`,
		`CREATE TABLE IF NOT EXISTS alert_rule (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			event TEXT NOT NULL,
			condition_expr TEXT NOT NULL DEFAULT '',
			channel TEXT NOT NULL DEFAULT '',
			enabled INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
	}
}

// New 通过DSN创建SQLite面板存储（对外导出）
func New(dsn string) (*sqldb.Repo, error) {
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("打开数据库失败: %w", err)
	}
	// SQLite单写者，多连接只会换来SQLITE_BUSY；内存DSN更是每个连接一个库
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("数据库连接失败: %w", err)
	}
	return sqldb.New(db, Dialect{})
}
