// Package issue implements the filesystem-backed Issue Store (§4.14):
// numbered Markdown issues that move between a pending and a complete
// directory, with git branch helpers for the work/merge lifecycle.
// Grounded on the teacher's exec.CommandContext git idiom
// (internal/world/git_scanner.go) and os.ReadFile/WriteFile-based file
// stores elsewhere in the pack (internal/core/predicate_corpus.go).
package issue

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"swissarmyhammer/internal/errs"
	"swissarmyhammer/internal/logging"
)

// Issue is one numbered work item.
type Issue struct {
	Number      int
	Slug        string
	Title       string
	Body        string
	Completed   bool
	FilePath    string
	CreatedAt   time.Time
	CompletedAt time.Time
}

// BranchName is the git branch this issue works on, per the work/merge
// lifecycle (§6's CLI surface).
func (i *Issue) BranchName() string {
	if i.Slug != "" {
		return fmt.Sprintf("issue-%06d-%s", i.Number, i.Slug)
	}
	return fmt.Sprintf("issue-%06d", i.Number)
}

var filenameRe = regexp.MustCompile(`^(\d{6})(?:_(.+))?\.md$`)

func parseFilename(name string) (number int, slug string, ok bool) {
	m := filenameRe.FindStringSubmatch(name)
	if m == nil {
		return 0, "", false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, "", false
	}
	return n, m[2], true
}

func slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	var b strings.Builder
	lastDash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash && b.Len() > 0 {
				b.WriteRune('-')
				lastDash = true
			}
		}
	}
	out := strings.Trim(b.String(), "-")
	if len(out) > 40 {
		out = out[:40]
	}
	return out
}

func loadIssue(path string, completed bool) (*Issue, error) {
	name := filepath.Base(path)
	number, slug, ok := parseFilename(name)
	if !ok {
		return nil, errs.New(errs.Parse, "issue.loadIssue").WithPath(path).WithHint("unrecognized issue filename")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.IO, "issue.loadIssue", err).WithPath(path)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, errs.Wrap(errs.IO, "issue.loadIssue", err).WithPath(path)
	}

	body := string(data)
	title := firstHeading(body)

	iss := &Issue{
		Number:    number,
		Slug:      slug,
		Title:     title,
		Body:      body,
		Completed: completed,
		FilePath:  path,
		CreatedAt: info.ModTime(),
	}
	if completed {
		iss.CompletedAt = info.ModTime()
	}
	return iss, nil
}

func firstHeading(body string) string {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "#") {
			return strings.TrimSpace(strings.TrimLeft(line, "#"))
		}
		if line != "" {
			return line
		}
	}
	return ""
}

// disambiguate returns a short uuid-derived suffix appended to a slug
// when two issues would otherwise collide on the same number+slug, which
// cannot happen under monotone numbering but is kept for titles that
// collapse to an empty slug.
func disambiguate() string {
	return uuid.New().String()[:8]
}

func init() {
	logging.IssueDebug("issue: store package initialized")
}
