package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"swissarmyhammer/internal/errs"
)

func newTestRunContext() *RunContext {
	return &RunContext{
		Vars:    RunVars{},
		WorkDir: ".",
		Shell:   ShellTimeouts{Default: 5 * time.Second, Ceiling: 10 * time.Second},
	}
}

func TestShellActionExecuteSuccess(t *testing.T) {
	a := &ShellAction{Command: `echo -n hello`, ResultVar: "out"}
	rc := newTestRunContext()
	if err := a.Execute(context.Background(), rc); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if rc.Vars["out"] != "hello" {
		t.Errorf("out = %q, want hello", rc.Vars["out"])
	}
	if rc.Vars["exit_code"] != 0 {
		t.Errorf("exit_code = %v, want 0", rc.Vars["exit_code"])
	}
	if rc.Vars["success"] != true {
		t.Errorf("success = %v, want true", rc.Vars["success"])
	}
}

func TestShellActionExecuteNonZeroExit(t *testing.T) {
	a := &ShellAction{Command: "exit 3"}
	rc := newTestRunContext()
	if err := a.Execute(context.Background(), rc); err != nil {
		t.Fatalf("Execute should not itself error on nonzero exit: %v", err)
	}
	if rc.Vars["exit_code"] != 3 {
		t.Errorf("exit_code = %v, want 3", rc.Vars["exit_code"])
	}
	if rc.Vars["success"] != false {
		t.Errorf("success = %v, want false", rc.Vars["success"])
	}
	if rc.Vars["failure"] != true {
		t.Errorf("failure = %v, want true", rc.Vars["failure"])
	}
}

func TestShellActionSubstitutesCommand(t *testing.T) {
	a := &ShellAction{Command: `echo -n ${greeting}`, ResultVar: "out"}
	rc := newTestRunContext()
	rc.Vars["greeting"] = "hi-there"
	if err := a.Execute(context.Background(), rc); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if rc.Vars["out"] != "hi-there" {
		t.Errorf("out = %q, want hi-there", rc.Vars["out"])
	}
}

func TestShellActionTimeout(t *testing.T) {
	a := &ShellAction{Command: "sleep 2", Timeout: 50 * time.Millisecond}
	rc := newTestRunContext()
	err := a.Execute(context.Background(), rc)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if errs.KindOf(err) != errs.Timeout {
		t.Errorf("KindOf = %v, want Timeout", errs.KindOf(err))
	}
}

func TestShellActionRejectsTraversalWorkingDir(t *testing.T) {
	a := &ShellAction{Command: "echo hi", WorkingDir: "../escape"}
	rc := newTestRunContext()
	err := a.Execute(context.Background(), rc)
	if err == nil {
		t.Fatal("expected validation error for working_dir traversal")
	}
	if errs.KindOf(err) != errs.Validation {
		t.Errorf("KindOf = %v, want Validation", errs.KindOf(err))
	}
}

type fakePromptRenderer struct {
	rendered map[string]string
	err      error
}

func (f *fakePromptRenderer) RenderPrompt(name string, args map[string]interface{}) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.rendered[name], nil
}

func TestPromptActionExecute(t *testing.T) {
	a := &PromptAction{PromptName: "greet", Args: map[string]string{"who": "${name}"}, ResultVar: "greeting"}
	rc := newTestRunContext()
	rc.Vars["name"] = "Ada"
	rc.Prompts = &fakePromptRenderer{rendered: map[string]string{"greet": "hello Ada"}}
	if err := a.Execute(context.Background(), rc); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if rc.Vars["greeting"] != "hello Ada" {
		t.Errorf("greeting = %q", rc.Vars["greeting"])
	}
}

func TestPromptActionNoRendererConfigured(t *testing.T) {
	a := &PromptAction{PromptName: "greet", ResultVar: "out"}
	rc := newTestRunContext()
	err := a.Execute(context.Background(), rc)
	if err == nil {
		t.Fatal("expected error with no renderer configured")
	}
	if errs.KindOf(err) != errs.Internal {
		t.Errorf("KindOf = %v, want Internal", errs.KindOf(err))
	}
}

func TestLogActionNeverFails(t *testing.T) {
	a := &LogAction{Message: "hi ${name}", Level: "warn"}
	rc := newTestRunContext()
	rc.Vars["name"] = "bob"
	if err := a.Execute(context.Background(), rc); err != nil {
		t.Fatalf("LogAction should never fail: %v", err)
	}
}

func TestSetVariableActionExecute(t *testing.T) {
	a := &SetVariableAction{Name: "greeting", ValueExpr: `"hello ${name}"`}
	rc := newTestRunContext()
	rc.Vars["name"] = "Cleo"
	if err := a.Execute(context.Background(), rc); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if rc.Vars["greeting"] != "hello Cleo" {
		t.Errorf("greeting = %q", rc.Vars["greeting"])
	}
}

func TestWaitActionCompletes(t *testing.T) {
	a := &WaitAction{Duration: 10 * time.Millisecond}
	rc := newTestRunContext()
	start := time.Now()
	if err := a.Execute(context.Background(), rc); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if time.Since(start) < 10*time.Millisecond {
		t.Error("WaitAction returned before its duration elapsed")
	}
}

func TestWaitActionHonorsCancellation(t *testing.T) {
	a := &WaitAction{Duration: time.Second}
	rc := newTestRunContext()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := a.Execute(ctx, rc)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

type fakeRunner struct {
	out RunVars
	err error
}

func (f *fakeRunner) RunChild(parentRunID string, visited *visitedSet, name string, vars RunVars) (RunVars, error) {
	return f.out, f.err
}

func TestSubWorkflowActionExecute(t *testing.T) {
	a := &SubWorkflowAction{WorkflowName: "child", Args: map[string]string{"x": "1"}, ResultVar: "out"}
	rc := newTestRunContext()
	rc.Runner = &fakeRunner{out: RunVars{"result": "done"}}
	if err := a.Execute(context.Background(), rc); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	got, ok := rc.Vars["out"].(RunVars)
	if !ok || got["result"] != "done" {
		t.Errorf("out = %v", rc.Vars["out"])
	}
}

func TestSubWorkflowActionNoRunnerConfigured(t *testing.T) {
	a := &SubWorkflowAction{WorkflowName: "child"}
	rc := newTestRunContext()
	err := a.Execute(context.Background(), rc)
	if err == nil {
		t.Fatal("expected error with no runner configured")
	}
	if errs.KindOf(err) != errs.Internal {
		t.Errorf("KindOf = %v, want Internal", errs.KindOf(err))
	}
}

func TestAbortActionExecute(t *testing.T) {
	a := &AbortAction{Reason: "stop ${why}"}
	rc := newTestRunContext()
	rc.Vars["why"] = "bad input"
	err := a.Execute(context.Background(), rc)
	if err == nil {
		t.Fatal("expected AbortAction to return an error")
	}
	if errs.KindOf(err) != errs.Abort {
		t.Errorf("KindOf = %v, want Abort", errs.KindOf(err))
	}
}
