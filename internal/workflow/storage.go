package workflow

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"swissarmyhammer/internal/errs"
	"swissarmyhammer/internal/logging"
	"swissarmyhammer/internal/prompt"
)

// Store discovers workflow definitions from the builtin, user, and local
// layers and resolves same-name collisions by the same local > user >
// builtin precedence as the Prompt Loader (§9's layered-precedence rule,
// generalized from prompts to workflows).
type Store struct {
	mu sync.RWMutex

	userRoot  string
	localRoot string

	byLayer   map[prompt.Layer]map[string]*Graph
	effective map[string]*Graph
}

// NewStore builds a Store for the given user and local roots. Call
// LoadAll to perform the initial scan.
func NewStore(userRoot, localRoot string) *Store {
	return &Store{
		userRoot:  userRoot,
		localRoot: localRoot,
		byLayer: map[prompt.Layer]map[string]*Graph{
			prompt.Builtin: {},
			prompt.User:    {},
			prompt.Local:   {},
		},
		effective: make(map[string]*Graph),
	}
}

// LoadAll scans the user and local roots from scratch. There is no
// embedded builtin workflow set (unlike prompts): the builtin layer
// exists structurally for precedence symmetry but is always empty.
func (s *Store) LoadAll() error {
	userWorkflows, err := loadWorkflowDir(s.userRoot, prompt.User)
	if err != nil {
		return err
	}
	localWorkflows, err := loadWorkflowDir(s.localRoot, prompt.Local)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.byLayer[prompt.User] = userWorkflows
	s.byLayer[prompt.Local] = localWorkflows
	s.recompute()
	s.mu.Unlock()

	logging.Workflow("workflow: loaded %d user, %d local workflow definitions (%d effective)",
		len(userWorkflows), len(localWorkflows), len(s.effective))
	return nil
}

// Reload re-scans a single layer, for the File Watcher's debounced
// notifications.
func (s *Store) Reload(layer prompt.Layer) error {
	if layer == prompt.Builtin {
		return nil
	}
	root := s.localRoot
	if layer == prompt.User {
		root = s.userRoot
	}
	workflows, err := loadWorkflowDir(root, layer)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.byLayer[layer] = workflows
	s.recompute()
	s.mu.Unlock()
	return nil
}

func (s *Store) recompute() {
	effective := make(map[string]*Graph)
	for _, layer := range []prompt.Layer{prompt.Builtin, prompt.User, prompt.Local} {
		for name, g := range s.byLayer[layer] {
			effective[name] = g
		}
	}
	s.effective = effective
}

// Get returns the effective-precedence workflow graph for name.
func (s *Store) Get(name string) (*Graph, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.effective[name]
	return g, ok
}

// List returns every effective workflow, sorted by name.
func (s *Store) List() []*Graph {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Graph, 0, len(s.effective))
	for _, g := range s.effective {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func loadWorkflowDir(root string, layer prompt.Layer) (map[string]*Graph, error) {
	out := make(map[string]*Graph)
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
		if d.IsDir() || !isWorkflowFile(d.Name()) {
			return nil
		}
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			logging.Get(logging.CategoryWorkflow).Warn("workflow: failed to read %s: %v", path, readErr)
			return nil
		}
		name := strings.TrimSuffix(strings.TrimSuffix(d.Name(), ".mermaid"), ".md")
		g, parseErr := Parse(name, string(data))
		if parseErr != nil {
			logging.Get(logging.CategoryWorkflow).Warn("workflow: failed to parse %s: %v", path, parseErr)
			return nil
		}
		out[name] = g
		return nil
	})
	if err != nil {
		return nil, errs.Wrap(errs.IO, "workflow.loadWorkflowDir", err).WithPath(root)
	}
	return out, nil
}

func isWorkflowFile(name string) bool {
	return strings.HasSuffix(name, ".md") || strings.HasSuffix(name, ".mermaid")
}
