//go:build !cgo

package index

// Non-cgo builds use modernc.org/sqlite, the teacher's pure-Go fallback
// driver. sqlite-vec's vec0 virtual table requires the cgo extension, so
// this path always falls back to the brute-force cosine search in
// store.go; Store.vectorExt is never set under this build.
import (
	_ "modernc.org/sqlite"
)

const driverName = "sqlite"
