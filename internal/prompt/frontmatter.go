package prompt

import (
	"strings"

	"gopkg.in/yaml.v3"

	"swissarmyhammer/internal/errs"
)

// frontMatter is the YAML document between the leading "---" fences.
type frontMatter struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Category    string         `yaml:"category"`
	Tags        []string       `yaml:"tags"`
	Arguments   []ArgumentSpec `yaml:"arguments"`
}

// parseFile splits raw file content into YAML front matter and Markdown
// body. If the content does not start with a "---" fence, it is treated
// as a prompt with no metadata whose body is the whole content (the
// caller derives the name from the file stem).
func parseFile(content string) (frontMatter, string, error) {
	const fence = "---"

	trimmed := strings.TrimLeft(content, "﻿ \t\r\n")
	if !strings.HasPrefix(trimmed, fence) {
		return frontMatter{}, content, nil
	}

	rest := trimmed[len(fence):]
	// Skip the rest of the fence's own line.
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[nl+1:]
	} else {
		return frontMatter{}, content, nil
	}

	end := strings.Index(rest, "\n"+fence)
	if end < 0 {
		return frontMatter{}, "", errs.New(errs.Parse, "prompt.parseFile").
			WithHint("unterminated YAML front matter (missing closing ---)")
	}

	yamlBlock := rest[:end]
	body := rest[end+len("\n"+fence):]
	body = strings.TrimPrefix(body, "\r\n")
	body = strings.TrimPrefix(body, "\n")

	var fm frontMatter
	if err := yaml.Unmarshal([]byte(yamlBlock), &fm); err != nil {
		return frontMatter{}, "", errs.Wrap(errs.Parse, "prompt.parseFile yaml", err)
	}
	return fm, body, nil
}
