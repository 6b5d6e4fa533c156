package workflow

import (
	"strings"
	"sync"

	"swissarmyhammer/internal/errs"
)

// visitedSet is the traversal-local cycle detector for sub-workflow
// invocation chains (§9: "no global mutable cycle table"). A fresh set
// is created for each top-level run and threaded by reference through
// every nested RunChild call.
type visitedSet struct {
	mu   sync.Mutex
	path []string
	seen map[string]bool
}

func newVisitedSet(root string) *visitedSet {
	return &visitedSet{path: []string{root}, seen: map[string]bool{root: true}}
}

// enter records name as visited, returning an error naming the full
// cycle path if name is already an ancestor on this chain.
func (v *visitedSet) enter(name string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.seen[name] {
		path := append(append([]string{}, v.path...), name)
		return errs.New(errs.Cycle, "workflow.RunChild").
			WithHint("workflow cycle: " + strings.Join(path, " -> "))
	}
	v.seen[name] = true
	v.path = append(v.path, name)
	return nil
}

// leave pops name back off the chain once its sub-workflow call returns,
// so sibling (non-ancestor) invocations of the same workflow are legal.
func (v *visitedSet) leave(name string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.path) > 0 && v.path[len(v.path)-1] == name {
		v.path = v.path[:len(v.path)-1]
		delete(v.seen, name)
	}
}
