//go:build !no_sqlite

package db

import "strings"

// withSQLiteParam 向 file: DSN 追加查询参数.
func withSQLiteParam(dsn, params string) string {
	if strings.Contains(dsn, "?") {
		return dsn + "&" + params
	}

	return dsn + "?" + params
}
