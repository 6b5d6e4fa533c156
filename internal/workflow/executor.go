package workflow

import (
	"context"
	"crypto/rand"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"swissarmyhammer/internal/errs"
	"swissarmyhammer/internal/logging"
)

// Executor drives workflow graphs to a terminal state (§4.12).
type Executor struct {
	Store   *Store
	Runs    RunStore
	WorkDir string
	Prompts PromptRenderer
	Shell   ShellTimeouts
}

// NewExecutor builds an Executor. runs may be nil to skip persistence
// (tests construct Executors this way).
func NewExecutor(store *Store, runs RunStore, workDir string, prompts PromptRenderer, shell ShellTimeouts) *Executor {
	return &Executor{Store: store, Runs: runs, WorkDir: workDir, Prompts: prompts, Shell: shell}
}

func newRunID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

// Start begins a new top-level run of the named workflow.
func (e *Executor) Start(ctx context.Context, name string, initialVars map[string]interface{}) (*Run, error) {
	g, ok := e.Store.Get(name)
	if !ok {
		return nil, errs.New(errs.NotFound, "Executor.Start").WithID(name)
	}

	run := &Run{
		ID:           newRunID(),
		WorkflowName: name,
		Status:       StatusRunning,
		Vars:         map[string]interface{}{},
		StartedAt:    time.Now(),
	}
	e.persist(run)

	vars := RunVars{}
	for k, v := range initialVars {
		vars[k] = v
	}

	visited := newVisitedSet(name)
	final, err := e.runGraph(ctx, g, run, vars, visited, 0)
	e.finish(run, final, err)
	return run, err
}

// RunChild implements SubWorkflowRunner for SubWorkflowAction: it runs
// name in a fresh child context where only the explicitly-passed vars
// are visible, and returns that run's terminal variables (merged back
// into the parent only via the caller's named result variable).
func (e *Executor) RunChild(parentRunID string, visited *visitedSet, name string, vars RunVars) (RunVars, error) {
	if err := visited.enter(name); err != nil {
		return nil, err
	}
	defer visited.leave(name)

	g, ok := e.Store.Get(name)
	if !ok {
		return nil, errs.New(errs.NotFound, "Executor.RunChild").WithID(name)
	}

	run := &Run{
		ID:           newRunID(),
		WorkflowName: name,
		Status:       StatusRunning,
		Vars:         map[string]interface{}{},
		StartedAt:    time.Now(),
	}
	e.persist(run)

	final, err := e.runGraph(context.Background(), g, run, vars.Clone(), visited, 1)
	e.finish(run, final, err)
	if err != nil {
		return nil, err
	}
	return final, nil
}

func (e *Executor) persist(run *Run) {
	if e.Runs == nil {
		return
	}
	if err := e.Runs.Save(run); err != nil {
		logging.Get(logging.CategoryWorkflow).Warn("workflow: failed to persist run %s: %v", run.ID, err)
	}
}

func (e *Executor) finish(run *Run, final RunVars, err error) {
	run.FinishedAt = time.Now()
	if final != nil {
		run.Vars = map[string]interface{}(final)
	}
	switch {
	case err == nil:
		run.Status = StatusCompleted
	case errs.KindOf(err) == errs.Abort:
		run.Status = StatusAborted
		run.Error = err.Error()
	default:
		run.Status = StatusFailed
		run.Error = err.Error()
	}
	e.persist(run)
}

func (e *Executor) newRunContext(run *Run, vars RunVars, visited *visitedSet, depth int) *RunContext {
	return &RunContext{
		Vars:    vars,
		WorkDir: e.WorkDir,
		Prompts: e.Prompts,
		Runner:  e,
		Shell:   e.Shell,
		RunID:   run.ID,
		Depth:   depth,
		Visited: visited,
	}
}

// runGraph drives g from its initial state to a terminal ([*]) target,
// recording history into run and returning the final variable set.
func (e *Executor) runGraph(ctx context.Context, g *Graph, run *Run, vars RunVars, visited *visitedSet, depth int) (RunVars, error) {
	current := g.Initial
	for {
		if err := ctx.Err(); err != nil {
			return vars, err
		}

		s, ok := g.State(current)
		if !ok {
			return vars, errs.New(errs.Internal, "Executor.runGraph").WithID(current).WithHint("state vanished mid-run")
		}

		if s.Kind == StateFork {
			merged, err := e.runFork(ctx, g, run, s, vars, visited, depth)
			if err != nil {
				return vars, err
			}
			for k, v := range merged {
				vars[k] = v
			}
			current = s.JoinName
			continue
		}

		if s.Action != "" {
			act, err := ParseAction(s.Action)
			if err != nil {
				return vars, err
			}
			rc := e.newRunContext(run, vars, visited, depth)
			run.History = append(run.History, HistoryEntry{State: s.Name, Action: act.Describe(), EnteredAt: time.Now()})
			if err := act.Execute(ctx, rc); err != nil {
				return vars, err
			}
		} else {
			run.History = append(run.History, HistoryEntry{State: s.Name, EnteredAt: time.Now()})
		}

		next, matched := chooseTransition(s, vars)
		if !matched {
			return vars, errs.New(errs.Internal, "Executor.runGraph").WithID(s.Name).
				WithHint("no transition matched post-action variables")
		}
		run.History[len(run.History)-1].Transition = next
		if next == terminalMarker {
			return vars, nil
		}
		current = next
	}
}

// branchResult is one parallel branch's outcome at a fork barrier.
type branchResult struct {
	declared map[string]interface{}
	success  bool
	err      error
}

// runFork drives every branch of a fork state to its matching join in
// parallel, each over an independent variable snapshot, then merges only
// each branch's declared outputs (§4.12's union policy).
func (e *Executor) runFork(ctx context.Context, g *Graph, run *Run, fork *State, vars RunVars, visited *visitedSet, depth int) (RunVars, error) {
	branches := fork.Transitions
	results := make([]branchResult, len(branches))

	var wg sync.WaitGroup
	for i, t := range branches {
		wg.Add(1)
		go func(i int, target string) {
			defer wg.Done()
			results[i] = e.runBranch(ctx, g, run, target, fork.JoinName, vars.Clone(), visited, depth+1)
		}(i, t.Target)
	}
	wg.Wait()

	merged := RunVars{}
	allSucceeded := true
	for _, r := range results {
		if r.err != nil {
			return nil, r.err
		}
		if !r.success {
			allSucceeded = false
		}
		for k, v := range r.declared {
			merged[k] = v
		}
	}
	merged["success"] = allSucceeded
	merged["failure"] = !allSucceeded

	logging.WorkflowDebug("workflow: fork %s joined at %s, success=%v", fork.Name, fork.JoinName, allSucceeded)
	return merged, nil
}

// runBranch executes states starting at start until the chosen
// transition targets joinName, returning the branch's declared outputs
// without entering the join itself.
func (e *Executor) runBranch(ctx context.Context, g *Graph, run *Run, start, joinName string, vars RunVars, visited *visitedSet, depth int) branchResult {
	declared := map[string]interface{}{}
	success := true
	current := start

	for {
		if err := ctx.Err(); err != nil {
			return branchResult{err: err}
		}
		s, ok := g.State(current)
		if !ok {
			return branchResult{err: errs.New(errs.Internal, "Executor.runBranch").WithID(current)}
		}

		if s.Action != "" {
			act, err := ParseAction(s.Action)
			if err != nil {
				return branchResult{err: err}
			}
			rc := e.newRunContext(run, vars, visited, depth)
			if err := act.Execute(ctx, rc); err != nil {
				return branchResult{err: err}
			}
			recordDeclared(act, vars, declared)
			if b, ok := vars["success"].(bool); ok {
				success = success && b
			}
		}

		next, matched := chooseTransition(s, vars)
		if !matched {
			return branchResult{err: errs.New(errs.Internal, "Executor.runBranch").WithID(s.Name)}
		}
		if next == joinName {
			return branchResult{declared: declared, success: success}
		}
		current = next
	}
}

// recordDeclared tracks which variable an action explicitly targeted, so
// fork/join merging can discard everything else.
func recordDeclared(act Action, vars RunVars, declared map[string]interface{}) {
	switch a := act.(type) {
	case *SetVariableAction:
		declared[a.Name] = vars[a.Name]
	case *ShellAction:
		if a.ResultVar != "" {
			declared[a.ResultVar] = vars[a.ResultVar]
		}
	case *PromptAction:
		declared[a.ResultVar] = vars[a.ResultVar]
	case *SubWorkflowAction:
		if a.ResultVar != "" {
			declared[a.ResultVar] = vars[a.ResultVar]
		}
	}
}

// chooseTransition picks the first transition out of s whose guard
// matches vars, in declaration order.
func chooseTransition(s *State, vars RunVars) (string, bool) {
	for _, t := range s.Transitions {
		if evalGuard(t, vars) {
			return t.Target, true
		}
	}
	return "", false
}

func evalGuard(t Transition, vars RunVars) bool {
	switch t.Guard {
	case GuardAlways:
		return true
	case GuardOnSuccess:
		return vars.Bool("success")
	case GuardOnFailure:
		return !vars.Bool("success")
	case GuardPredicate:
		return evalPredicate(t.Predicate, vars)
	default:
		return false
	}
}

var predicateCmpRe = regexp.MustCompile(`^\s*([a-zA-Z_][a-zA-Z0-9_]*)\s*(==|!=)\s*(.+?)\s*$`)

// evalPredicate supports `var == value`, `var != value`, and bare `var`
// truthiness checks, which covers the conditional-transition forms
// exercised by the retry/guard workflow patterns in practice.
func evalPredicate(predicate string, vars RunVars) bool {
	predicate = strings.TrimSpace(predicate)
	if m := predicateCmpRe.FindStringSubmatch(predicate); m != nil {
		actual := vars.String(m[1])
		want := strings.Trim(m[3], `"`)
		if m[2] == "==" {
			return actual == want
		}
		return actual != want
	}
	val, ok := vars[predicate]
	if !ok {
		return false
	}
	switch v := val.(type) {
	case bool:
		return v
	case string:
		return v != ""
	default:
		return fmt.Sprintf("%v", v) != ""
	}
}
