package workflow

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"swissarmyhammer/internal/errs"
	"swissarmyhammer/internal/logging"
)

var isWindows = runtime.GOOS == "windows"

// PromptAction renders a named prompt via the Template Engine and stores
// the result into a run variable.
type PromptAction struct {
	PromptName string
	Args       map[string]string
	ResultVar  string
}

func parsePromptAction(name, withClause string) (Action, error) {
	kv, _ := parseKVClause(withClause)
	result := "result"
	args := map[string]string{}
	for k, v := range kv {
		if k == "result" {
			result = v
			continue
		}
		args[k] = v
	}
	return &PromptAction{PromptName: name, Args: args, ResultVar: result}, nil
}

func (a *PromptAction) Describe() string {
	return fmt.Sprintf("Execute prompt %q", a.PromptName)
}

func (a *PromptAction) Execute(ctx context.Context, rc *RunContext) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rc.Prompts == nil {
		return errs.New(errs.Internal, "PromptAction.Execute").WithHint("no prompt renderer configured")
	}
	args := make(map[string]interface{}, len(a.Args))
	for k, v := range a.Args {
		args[k] = substitute(v, rc)
	}
	out, err := rc.Prompts.RenderPrompt(a.PromptName, args)
	if err != nil {
		return err
	}
	rc.Vars[a.ResultVar] = out
	logging.WorkflowDebug("workflow: prompt action %q -> %s (%d bytes)", a.PromptName, a.ResultVar, len(out))
	return nil
}

// ShellAction runs a command through the host shell and captures its
// outcome into well-known run variables.
type ShellAction struct {
	Command    string
	Timeout    time.Duration
	ResultVar  string
	WorkingDir string
	Env        map[string]string
}

func parseShellAction(command, withClause string) (Action, error) {
	kv, env := parseKVClause(withClause)
	a := &ShellAction{Command: command, Env: env}
	if t, ok := kv["timeout"]; ok {
		secs, err := strconv.Atoi(t)
		if err != nil {
			return nil, errs.Wrap(errs.Parse, "workflow.ShellAction", err).WithHint("invalid timeout")
		}
		a.Timeout = time.Duration(secs) * time.Second
	}
	a.ResultVar = kv["result"]
	a.WorkingDir = kv["working_dir"]
	return a, nil
}

func (a *ShellAction) Describe() string {
	return fmt.Sprintf("Shell %q", a.Command)
}

// Execute runs the command via the host shell (sh -c / cmd /C) so that
// pipes and redirection in the command text work as written. A non-zero
// exit code is captured into variables but is not itself a returned
// error; only cancellation, an invalid working_dir, spawn failure or
// timeout is.
func (a *ShellAction) Execute(ctx context.Context, rc *RunContext) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	command := substitute(a.Command, rc)
	workDir := rc.WorkDir
	if a.WorkingDir != "" {
		workDir = substitute(a.WorkingDir, rc)
		if strings.Contains(workDir, "..") {
			return errs.New(errs.Validation, "ShellAction.Execute").WithPath(workDir).
				WithHint("working_dir must not contain parent-directory components")
		}
		if info, err := os.Stat(workDir); err != nil || !info.IsDir() {
			return errs.New(errs.Validation, "ShellAction.Execute").WithPath(workDir).
				WithHint("working_dir does not exist")
		}
	}

	timeout := a.Timeout
	if timeout <= 0 {
		timeout = rc.Shell.Default
	}
	if rc.Shell.Ceiling > 0 && timeout > rc.Shell.Ceiling {
		timeout = rc.Shell.Ceiling
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	shellName, shellFlag := "sh", "-c"
	if isWindows {
		shellName, shellFlag = "cmd", "/C"
	}
	cmd := exec.CommandContext(runCtx, shellName, shellFlag, command)
	cmd.Dir = workDir
	cmd.Env = os.Environ()
	for k, v := range a.Env {
		cmd.Env = append(cmd.Env, k+"="+substitute(v, rc))
	}
	setProcessGroup(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	duration := time.Since(start)

	timedOut := runCtx.Err() == context.DeadlineExceeded
	if timedOut {
		killProcessGroup(cmd)
		stderr.WriteString("\n[timeout: process tree terminated after " + timeout.String() + "]")
	}

	exitCode := 0
	success := true
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
			success = false
		} else if timedOut {
			exitCode = -1
			success = false
		} else {
			return errs.Wrap(errs.IO, "ShellAction.Execute", err).WithHint(a.Command)
		}
	}

	rc.Vars["exit_code"] = exitCode
	rc.Vars["success"] = success
	rc.Vars["failure"] = !success
	rc.Vars["stdout"] = stdout.String()
	rc.Vars["stderr"] = stderr.String()
	rc.Vars["duration_ms"] = duration.Milliseconds()
	if a.ResultVar != "" {
		rc.Vars[a.ResultVar] = stdout.String()
	}

	logging.WorkflowDebug("workflow: shell action exit=%d success=%v duration=%s", exitCode, success, duration)
	if timedOut {
		return errs.New(errs.Timeout, "ShellAction.Execute").WithHint(a.Command)
	}
	return nil
}

// LogAction emits through the structured logger and never fails.
type LogAction struct {
	Message string
	Level   string
}

func (a *LogAction) Describe() string { return fmt.Sprintf("Log %q", a.Message) }

func (a *LogAction) Execute(ctx context.Context, rc *RunContext) error {
	msg := substitute(a.Message, rc)
	logger := logging.Get(logging.CategoryWorkflow)
	switch a.Level {
	case "warn":
		logger.Warn("%s", msg)
	case "error":
		logger.Error("%s", msg)
	default:
		logger.Info("%s", msg)
	}
	return nil
}

// SetVariableAction assigns into the run's variable map after applying
// ${var} substitution.
type SetVariableAction struct {
	Name      string
	ValueExpr string
}

func (a *SetVariableAction) Describe() string { return fmt.Sprintf("Set %s=%s", a.Name, a.ValueExpr) }

func (a *SetVariableAction) Execute(ctx context.Context, rc *RunContext) error {
	rc.Vars[a.Name] = substitute(strings.Trim(a.ValueExpr, `"`), rc)
	return nil
}

// WaitAction is a cooperative sleep honoring cancellation.
type WaitAction struct {
	Duration time.Duration
}

func (a *WaitAction) Describe() string { return fmt.Sprintf("Wait %s", a.Duration) }

func (a *WaitAction) Execute(ctx context.Context, rc *RunContext) error {
	timer := time.NewTimer(a.Duration)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SubWorkflowAction invokes another workflow in a child context with only
// the explicitly-passed variables visible.
type SubWorkflowAction struct {
	WorkflowName string
	Args         map[string]string
	ResultVar    string
}

func parseSubWorkflowAction(name, withClause string) (Action, error) {
	kv, _ := parseKVClause(withClause)
	result := kv["result"]
	delete(kv, "result")
	return &SubWorkflowAction{WorkflowName: name, Args: kv, ResultVar: result}, nil
}

func (a *SubWorkflowAction) Describe() string {
	return fmt.Sprintf("Run workflow %q", a.WorkflowName)
}

func (a *SubWorkflowAction) Execute(ctx context.Context, rc *RunContext) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rc.Runner == nil {
		return errs.New(errs.Internal, "SubWorkflowAction.Execute").WithHint("no sub-workflow runner configured")
	}

	childVars := make(RunVars, len(a.Args))
	for k, v := range a.Args {
		childVars[k] = substitute(v, rc)
	}

	out, err := rc.Runner.RunChild(rc.RunID, rc.Visited, a.WorkflowName, childVars)
	if err != nil {
		return err
	}
	if a.ResultVar != "" {
		rc.Vars[a.ResultVar] = out
	}
	return nil
}

// AbortAction terminates the current run with Aborted status.
type AbortAction struct {
	Reason string
}

func (a *AbortAction) Describe() string { return fmt.Sprintf("Abort %q", a.Reason) }

func (a *AbortAction) Execute(ctx context.Context, rc *RunContext) error {
	return errs.New(errs.Abort, "AbortAction.Execute").WithHint(substitute(a.Reason, rc))
}

