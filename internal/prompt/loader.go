package prompt

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"swissarmyhammer/internal/errs"
	"swissarmyhammer/internal/logging"
	"swissarmyhammer/internal/prompt/builtin"
)

// Loader discovers prompts from the builtin (embedded), user
// (~/.swissarmyhammer/prompts), and local (<repo_root>/.swissarmyhammer/prompts)
// roots and resolves same-name collisions by precedence: local > user >
// builtin.
type Loader struct {
	mu sync.RWMutex

	userRoot  string
	localRoot string

	byLayer   map[Layer]map[string]*Prompt
	effective map[string]*Prompt
}

// NewLoader builds a Loader for the given user and local roots. Call
// LoadAll to perform the initial scan.
func NewLoader(userRoot, localRoot string) *Loader {
	return &Loader{
		userRoot:  userRoot,
		localRoot: localRoot,
		byLayer: map[Layer]map[string]*Prompt{
			Builtin: {},
			User:    {},
			Local:   {},
		},
		effective: make(map[string]*Prompt),
	}
}

// LoadAll scans all three roots from scratch.
func (l *Loader) LoadAll() error {
	builtinPrompts, err := loadFS(builtin.FS, "prompts", Builtin, "")
	if err != nil {
		return err
	}
	userPrompts, err := loadDir(l.userRoot, User)
	if err != nil {
		return err
	}
	localPrompts, err := loadDir(l.localRoot, Local)
	if err != nil {
		return err
	}

	l.mu.Lock()
	l.byLayer[Builtin] = builtinPrompts
	l.byLayer[User] = userPrompts
	l.byLayer[Local] = localPrompts
	l.recompute()
	l.mu.Unlock()

	logging.Prompt("prompt: loaded %d builtin, %d user, %d local prompts (%d effective)",
		len(builtinPrompts), len(userPrompts), len(localPrompts), len(l.effective))
	return nil
}

// Reload re-scans a single layer's root (used by the File Watcher after a
// debounced change notification) without disturbing the other two layers.
func (l *Loader) Reload(layer Layer) error {
	var prompts map[string]*Prompt
	var err error
	switch layer {
	case Builtin:
		prompts, err = loadFS(builtin.FS, "prompts", Builtin, "")
	case User:
		prompts, err = loadDir(l.userRoot, User)
	case Local:
		prompts, err = loadDir(l.localRoot, Local)
	}
	if err != nil {
		return err
	}

	l.mu.Lock()
	l.byLayer[layer] = prompts
	l.recompute()
	l.mu.Unlock()

	logging.PromptDebug("prompt: reloaded layer %s (%d prompts)", layer, len(prompts))
	return nil
}

// recompute rebuilds the effective (precedence-resolved) map. Caller must
// hold l.mu.
func (l *Loader) recompute() {
	effective := make(map[string]*Prompt)
	for _, layer := range []Layer{Builtin, User, Local} {
		for name, p := range l.byLayer[layer] {
			effective[name] = p
		}
	}
	l.effective = effective
}

// Get returns the effective-precedence prompt for name, or (nil, false).
func (l *Loader) Get(name string) (*Prompt, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.effective[name]
	return p, ok
}

// List returns every effective prompt, deduplicated by precedence,
// sorted by name.
func (l *Loader) List() []*Prompt {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*Prompt, 0, len(l.effective))
	for _, p := range l.effective {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Search performs a full-text match over name, description, and content.
func (l *Loader) Search(query string) []*Prompt {
	q := strings.ToLower(query)
	var out []*Prompt
	for _, p := range l.List() {
		if strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Description), q) ||
			strings.Contains(strings.ToLower(p.Body), q) {
			out = append(out, p)
		}
	}
	return out
}

// Resolve implements template.PartialResolver: it looks up name at the
// same layered precedence as Get and reports whether that layer is
// trusted (everything except Local).
func (l *Loader) Resolve(name string) (body string, trusted bool, ok bool) {
	p, found := l.Get(name)
	if !found {
		return "", false, false
	}
	return p.Body, p.Layer != Local, true
}

func loadDir(root string, layer Layer) (map[string]*Prompt, error) {
	out := make(map[string]*Prompt)
	if root == "" {
		return out, nil
	}
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return out, nil
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !isPromptFile(d.Name()) {
			return nil
		}
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			logging.Get(logging.CategoryPrompt).Warn("prompt: failed to read %s: %v", path, readErr)
			return nil
		}
		p, parseErr := buildPrompt(path, d.Name(), string(data), layer)
		if parseErr != nil {
			logging.Get(logging.CategoryPrompt).Warn("prompt: failed to parse %s: %v", path, parseErr)
			return nil
		}
		out[p.Name] = p
		return nil
	})
	if err != nil {
		return nil, errs.Wrap(errs.IO, "prompt.loadDir", err).WithPath(root)
	}
	return out, nil
}

func loadFS(fsys fs.FS, root string, layer Layer, _ string) (map[string]*Prompt, error) {
	out := make(map[string]*Prompt)
	err := fs.WalkDir(fsys, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() || !isPromptFile(d.Name()) {
			return nil
		}
		data, readErr := fs.ReadFile(fsys, path)
		if readErr != nil {
			return nil
		}
		p, parseErr := buildPrompt(path, d.Name(), string(data), layer)
		if parseErr != nil {
			logging.Get(logging.CategoryPrompt).Warn("prompt: failed to parse builtin %s: %v", path, parseErr)
			return nil
		}
		out[p.Name] = p
		return nil
	})
	if err != nil {
		return nil, errs.Wrap(errs.IO, "prompt.loadFS", err)
	}
	return out, nil
}

func isPromptFile(name string) bool {
	return strings.HasSuffix(name, ".md") || strings.HasSuffix(name, ".md.liquid")
}

func buildPrompt(path, filename, content string, layer Layer) (*Prompt, error) {
	fm, body, err := parseFile(content)
	if err != nil {
		return nil, err
	}

	name := fm.Name
	if name == "" {
		name = strings.TrimSuffix(strings.TrimSuffix(filename, ".liquid"), ".md")
	}

	for _, a := range fm.Arguments {
		if a.Required && a.Default != nil {
			return nil, errs.New(errs.Validation, "prompt.buildPrompt").WithID(a.Name).
				WithHint("required argument must not declare a default")
		}
	}

	return &Prompt{
		Name:        name,
		Description: fm.Description,
		Category:    fm.Category,
		Tags:        fm.Tags,
		Arguments:   fm.Arguments,
		Body:        body,
		Layer:       layer,
		SourcePath:  path,
	}, nil
}
