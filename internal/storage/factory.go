// Package storage 提供按配置选择数据库实现的工厂。
package storage

import (
	"fmt"

	"github.com/LENAX/quant-board/pkg/storage"
	"github.com/LENAX/quant-board/pkg/storage/mysql"
	"github.com/LENAX/quant-board/pkg/storage/postgres"
	"github.com/LENAX/quant-board/pkg/storage/sqlite"
)

// NewDashboardRepository 按数据库类型创建面板存储（内部方法）
// dbType: 数据库类型（sqlite/mysql/postgres）
// dsn: 数据库连接字符串
func NewDashboardRepository(dbType, dsn string) (storage.DashboardRepository, error) {
	switch dbType {
	case "sqlite":
		return sqlite.New(dsn)
	case "mysql":
		return mysql.New(dsn)
	case "postgres", "postgresql":
		return postgres.New(dsn)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", dbType)
	}
}
