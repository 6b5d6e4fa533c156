// Package hash computes a stable, non-cryptographic content digest used
// for change detection across the indexer and vector store. It is not a
// security primitive: collision resistance is "good enough to detect
// edits", not cryptographic.
package hash

import (
	"fmt"
	"hash/fnv"
	"io"
	"os"

	"swissarmyhammer/internal/errs"
)

// Bytes returns a stable hex digest of content. Deterministic across
// processes and restarts for identical input.
func Bytes(content []byte) string {
	h := fnv.New128a()
	h.Write(content)
	return fmt.Sprintf("%x", h.Sum(nil))
}

// File hashes the content of the file at path. Fails only on I/O error.
func File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errs.Wrap(errs.IO, "hash.File", err).WithPath(path)
	}
	defer f.Close()

	h := fnv.New128a()
	if _, err := io.Copy(h, f); err != nil {
		return "", errs.Wrap(errs.IO, "hash.File", err).WithPath(path)
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}
