// Package memo implements the filesystem-backed Memo Store (§4.15): one
// Markdown file per memo, named after its title, with full-text search
// over titles and bodies. Grounded on internal/issue's file-store idiom
// (same teacher precedent: os.ReadFile/WriteFile + directory listing);
// the JSON-to-Markdown backward-compatibility rule is this spec's own
// design note (§9), not present in the teacher.
package memo

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"swissarmyhammer/internal/errs"
	"swissarmyhammer/internal/logging"
)

// Memo is one discovered memo.
type Memo struct {
	Title      string
	Body       string
	FilePath   string
	CreatedAt  time.Time
	ModifiedAt time.Time
}

// legacyMemo is the historical on-disk JSON shape (§9 Design Note:
// "Memos were historically serialized as JSON files").
type legacyMemo struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

var unsafeFilenameRe = regexp.MustCompile(`[/\\:*?"<>|]`)

func filenameFor(title string) string {
	safe := unsafeFilenameRe.ReplaceAllString(strings.TrimSpace(title), "_")
	if safe == "" {
		safe = "untitled"
	}
	return safe + ".md"
}

// Store manages memos under <repoRoot>/.swissarmyhammer/memos.
type Store struct {
	mu   sync.Mutex
	root string
}

// NewStore builds a Store rooted at repoRoot's .swissarmyhammer/memos.
func NewStore(repoRoot string) *Store {
	return &Store{root: filepath.Join(repoRoot, ".swissarmyhammer", "memos")}
}

// Create writes a new memo file. It fails with Validation if a memo by
// that title already exists (use Update to modify one).
func (s *Store) Create(title, body string) (*Memo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.root, 0755); err != nil {
		return nil, errs.Wrap(errs.IO, "memo.Create", err).WithPath(s.root)
	}
	path := filepath.Join(s.root, filenameFor(title))
	if _, err := os.Stat(path); err == nil {
		return nil, errs.New(errs.Validation, "memo.Create").WithID(title).WithHint("memo already exists")
	}
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		return nil, errs.Wrap(errs.IO, "memo.Create", err).WithPath(path)
	}
	logging.Memo("memo: created %q", title)
	return s.loadPath(path)
}

// Get loads one memo by title, reading either the current Markdown
// format or (for not-yet-migrated files) the legacy JSON format.
func (s *Store) Get(title string) (*Memo, error) {
	path := filepath.Join(s.root, filenameFor(title))
	if m, err := s.loadPath(path); err == nil {
		return m, nil
	}
	if m, ok := s.loadLegacyJSON(title); ok {
		return m, nil
	}
	return nil, errs.New(errs.NotFound, "memo.Get").WithID(title)
}

func (s *Store) loadPath(path string) (*Memo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.IO, "memo.loadPath", err).WithPath(path)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, errs.Wrap(errs.IO, "memo.loadPath", err).WithPath(path)
	}
	title := strings.TrimSuffix(filepath.Base(path), ".md")
	return &Memo{
		Title:      title,
		Body:       string(data),
		FilePath:   path,
		ModifiedAt: info.ModTime(),
		CreatedAt:  info.ModTime(),
	}, nil
}

// loadLegacyJSON reads a pre-Markdown memo stored as <title>.json, per
// the read-both/write-Markdown-only compatibility rule.
func (s *Store) loadLegacyJSON(title string) (*Memo, bool) {
	path := filepath.Join(s.root, unsafeFilenameRe.ReplaceAllString(title, "_")+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	var lm legacyMemo
	if err := json.Unmarshal(data, &lm); err != nil {
		return nil, false
	}
	info, _ := os.Stat(path)
	m := &Memo{Title: lm.Title, Body: lm.Body, FilePath: path}
	if info != nil {
		m.ModifiedAt = info.ModTime()
		m.CreatedAt = info.ModTime()
	}
	return m, true
}

// Update overwrites a memo's body, always writing the current Markdown
// format regardless of which format it was read from.
func (s *Store) Update(title, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	path := filepath.Join(s.root, filenameFor(title))
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		return errs.Wrap(errs.IO, "memo.Update", err).WithPath(path)
	}
	return nil
}

// Delete removes a memo's file.
func (s *Store) Delete(title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	path := filepath.Join(s.root, filenameFor(title))
	if err := os.Remove(path); err != nil {
		return errs.Wrap(errs.IO, "memo.Delete", err).WithPath(path)
	}
	return nil
}

// List returns every memo, sorted by title.
func (s *Store) List() ([]*Memo, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errs.Wrap(errs.IO, "memo.List", err).WithPath(s.root)
	}
	var out []*Memo
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		m, err := s.loadPath(filepath.Join(s.root, e.Name()))
		if err != nil {
			logging.Get(logging.CategoryMemo).Warn("memo: skipping unreadable %s: %v", e.Name(), err)
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

// Search performs a case-insensitive substring match over titles and
// bodies.
func (s *Store) Search(query string) ([]*Memo, error) {
	all, err := s.List()
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(query)
	var out []*Memo
	for _, m := range all {
		if strings.Contains(strings.ToLower(m.Title), q) || strings.Contains(strings.ToLower(m.Body), q) {
			out = append(out, m)
		}
	}
	return out, nil
}

// AllContext concatenates every memo's body, for the memo/get_all_context tool
// that hands the full memo corpus to a caller in one shot.
func (s *Store) AllContext() (string, error) {
	all, err := s.List()
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, m := range all {
		b.WriteString("## ")
		b.WriteString(m.Title)
		b.WriteString("\n\n")
		b.WriteString(m.Body)
		b.WriteString("\n\n")
	}
	return b.String(), nil
}
