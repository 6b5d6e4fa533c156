// Package builtin bundles the lowest-precedence, highest-reliability
// prompt layer directly into the binary via go:embed, per §4.8's "bundled
// with the binary" builtin root.
package builtin

import "embed"

//go:embed prompts/*.md
var FS embed.FS
