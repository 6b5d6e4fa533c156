package template

import (
	"os"
	"regexp"
	"strings"

	"github.com/osteele/liquid/render"

	"swissarmyhammer/internal/errs"
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// registerFilters adds the fixed set of custom filters named in §4.7:
// string-case conversions, slugification, line-count, and a gated "env"
// filter that can observe the process environment.
func (e *Engine) registerFilters() {
	e.liquid.RegisterFilter("slugify", slugify)
	e.liquid.RegisterFilter("line_count", lineCount)
	e.liquid.RegisterFilter("snakecase", snakeCase)
	e.liquid.RegisterFilter("camelcase", camelCase)
	e.liquid.RegisterFilter("titlecase", titleCase)
	e.liquid.RegisterFilter("env", gatedEnvFilter)
}

func slugify(s string) string {
	lower := strings.ToLower(strings.TrimSpace(s))
	slug := nonSlugChars.ReplaceAllString(lower, "-")
	return strings.Trim(slug, "-")
}

func lineCount(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}

func snakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r - 'A' + 'a')
		} else if r == ' ' || r == '-' {
			b.WriteByte('_')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func camelCase(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool { return r == '_' || r == '-' || r == ' ' })
	var b strings.Builder
	for i, w := range words {
		if w == "" {
			continue
		}
		if i == 0 {
			b.WriteString(strings.ToLower(w[:1]) + w[1:])
		} else {
			b.WriteString(strings.ToUpper(w[:1]) + strings.ToLower(w[1:]))
		}
	}
	return b.String()
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}

// gatedEnvFilter is trust-boundary gated: liquid injects the render
// Context as the final argument when a filter's last parameter has that
// type, letting the filter read the per-render "__trusted" binding set
// by Engine.Render and refuse to run for untrusted templates, per the
// UntrustedFilter{name} contract in §4.7/§7.
func gatedEnvFilter(name string, ctx render.Context) (string, error) {
	trusted, _ := ctx.Bindings()["__trusted"].(bool)
	if !trusted {
		return "", errs.New(errs.Untrusted, "template.env").WithID("env").
			WithHint("untrusted templates may not read environment variables")
	}
	return os.Getenv(name), nil
}
