package issue

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"swissarmyhammer/internal/errs"
	"swissarmyhammer/internal/logging"
)

// Store manages issues under <repoRoot>/.swissarmyhammer/issues and its
// issues/complete subdirectory.
type Store struct {
	mu   sync.Mutex
	root string // .swissarmyhammer/issues
}

// NewStore builds a Store rooted at repoRoot's .swissarmyhammer/issues.
func NewStore(repoRoot string) *Store {
	return &Store{root: filepath.Join(repoRoot, ".swissarmyhammer", "issues")}
}

func (s *Store) completeDir() string { return filepath.Join(s.root, "complete") }

// Create assigns the next monotone issue number and writes a new pending
// issue file named NNNNNN[_slug].md.
func (s *Store) Create(title, body string) (*Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.root, 0755); err != nil {
		return nil, errs.Wrap(errs.IO, "issue.Create", err).WithPath(s.root)
	}
	if err := os.MkdirAll(s.completeDir(), 0755); err != nil {
		return nil, errs.Wrap(errs.IO, "issue.Create", err).WithPath(s.completeDir())
	}

	next, err := s.nextNumber()
	if err != nil {
		return nil, err
	}

	slug := slugify(title)
	name := fmt.Sprintf("%06d.md", next)
	if slug != "" {
		name = fmt.Sprintf("%06d_%s.md", next, slug)
	}
	path := filepath.Join(s.root, name)

	content := body
	if !strings.HasPrefix(strings.TrimSpace(body), "#") {
		content = fmt.Sprintf("# %s\n\n%s", title, body)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return nil, errs.Wrap(errs.IO, "issue.Create", err).WithPath(path)
	}

	logging.Issue("issue: created #%06d %q", next, title)
	return loadIssue(path, false)
}

func (s *Store) nextNumber() (int, error) {
	max := 0
	for _, dir := range []string{s.root, s.completeDir()} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return 0, errs.Wrap(errs.IO, "issue.nextNumber", err).WithPath(dir)
		}
		for _, e := range entries {
			if n, _, ok := parseFilename(e.Name()); ok && n > max {
				max = n
			}
		}
	}
	return max + 1, nil
}

// Get loads one issue by number, checking the pending directory first,
// then complete.
func (s *Store) Get(number int) (*Issue, error) {
	if path, ok := s.findPending(number); ok {
		return loadIssue(path, false)
	}
	if path, ok := s.findComplete(number); ok {
		return loadIssue(path, true)
	}
	return nil, errs.New(errs.NotFound, "issue.Get").WithID(fmt.Sprintf("%06d", number))
}

func (s *Store) findPending(number int) (string, bool) { return findByNumber(s.root, number) }
func (s *Store) findComplete(number int) (string, bool) { return findByNumber(s.completeDir(), number) }

func findByNumber(dir string, number int) (string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	for _, e := range entries {
		if n, _, ok := parseFilename(e.Name()); ok && n == number {
			return filepath.Join(dir, e.Name()), true
		}
	}
	return "", false
}

// Update overwrites the body of a pending issue.
func (s *Store) Update(number int, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, ok := s.findPending(number)
	if !ok {
		return errs.New(errs.NotFound, "issue.Update").WithID(fmt.Sprintf("%06d", number))
	}
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		return errs.Wrap(errs.IO, "issue.Update", err).WithPath(path)
	}
	return nil
}

// List returns every pending issue, sorted by number.
func (s *Store) List() ([]*Issue, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errs.Wrap(errs.IO, "issue.List", err).WithPath(s.root)
	}
	var out []*Issue
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, _, ok := parseFilename(e.Name()); !ok {
			continue
		}
		iss, err := loadIssue(filepath.Join(s.root, e.Name()), false)
		if err != nil {
			logging.Get(logging.CategoryIssue).Warn("issue: skipping unreadable %s: %v", e.Name(), err)
			continue
		}
		out = append(out, iss)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

// AllComplete reports whether there are no pending issues left.
func (s *Store) AllComplete() (bool, error) {
	pending, err := s.List()
	if err != nil {
		return false, err
	}
	return len(pending) == 0, nil
}

// Complete moves a pending issue's file into the complete directory.
func (s *Store) Complete(number int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, ok := s.findPending(number)
	if !ok {
		return errs.New(errs.NotFound, "issue.Complete").WithID(fmt.Sprintf("%06d", number))
	}
	dest := filepath.Join(s.completeDir(), filepath.Base(path))
	if err := os.MkdirAll(s.completeDir(), 0755); err != nil {
		return errs.Wrap(errs.IO, "issue.Complete", err).WithPath(s.completeDir())
	}
	if err := os.Rename(path, dest); err != nil {
		return errs.Wrap(errs.IO, "issue.Complete", err).WithPath(path)
	}
	logging.Issue("issue: completed #%06d", number)
	return nil
}

// Next returns the lowest-numbered pending issue, if any.
func (s *Store) Next() (*Issue, bool, error) {
	pending, err := s.List()
	if err != nil {
		return nil, false, err
	}
	if len(pending) == 0 {
		return nil, false, nil
	}
	return pending[0], true, nil
}
