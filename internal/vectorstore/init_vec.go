//go:build sqlite_vec && cgo

package vectorstore

import (
	vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
)

func init() {
	// Registers the sqlite-vec extension with the mattn/go-sqlite3 driver,
	// exposing the vec_* SQL functions to builds tagged sqlite_vec.
	vec.Auto()
}
