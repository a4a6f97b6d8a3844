//go:build !no_sqlite && cgo

package db

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yeisme/xianshiji/pkg/configs"
)

// createSQLiteDialector 使用 mattn/go-sqlite3，巡检与请求并发写时等待锁而不是立即失败.
func createSQLiteDialector(dsn string) gorm.Dialector {
	return sqlite.Open(withSQLiteParam(dsn, "_busy_timeout=5000&_foreign_keys=on"))
}

func init() {
	RegisterDialectorFactory(configs.SQLite, createSQLiteDialector)
}
