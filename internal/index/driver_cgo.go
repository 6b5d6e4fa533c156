//go:build cgo

package index

// cgo builds use mattn/go-sqlite3, the teacher's primary driver, and
// initialize sqlite-vec so the vec0 virtual table is available without a
// runtime extension-load step.
import (
	_ "github.com/mattn/go-sqlite3"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
)

const driverName = "sqlite3"

func init() {
	sqlite_vec.Auto()
}
