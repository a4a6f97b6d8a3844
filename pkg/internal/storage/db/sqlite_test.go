//go:build !no_sqlite

package db

import "testing"

func TestWithSQLiteParam(t *testing.T) {
	cases := map[string]string{
		"file:xianshiji.db":          "file:xianshiji.db?a=1",
		"file::memory:?cache=shared": "file::memory:?cache=shared&a=1",
	}

	for in, want := range cases {
		if got := withSQLiteParam(in, "a=1"); got != want {
			t.Errorf("withSQLiteParam(%q) = %q, want %q", in, got, want)
		}
	}
}
