//go:build !no_sqlite && !cgo

package db

import (
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/yeisme/xianshiji/pkg/configs"
)

// createSQLiteDialector 使用纯 Go 驱动，pragma 通过 DSN 传入.
func createSQLiteDialector(dsn string) gorm.Dialector {
	return sqlite.Open(withSQLiteParam(dsn, "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"))
}

func init() {
	RegisterDialectorFactory(configs.SQLite, createSQLiteDialector)
}
