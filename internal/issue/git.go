package issue

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"swissarmyhammer/internal/errs"
	"swissarmyhammer/internal/logging"
)

// baseBranch resolves SWISSARMYHAMMER_BASE_BRANCH, defaulting to "main"
// per §6's recognized environment variables.
func baseBranch() string {
	if b := os.Getenv("SWISSARMYHAMMER_BASE_BRANCH"); b != "" {
		return b
	}
	return "main"
}

func runGit(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	var out, errOut bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errOut
	if err := cmd.Run(); err != nil {
		return "", errs.Wrap(errs.IO, "issue.runGit", err).
			WithHint(strings.TrimSpace(errOut.String()))
	}
	return strings.TrimSpace(out.String()), nil
}

// Work checks out (creating if necessary) the issue's dedicated branch
// off the configured base branch.
func (s *Store) Work(ctx context.Context, repoRoot string, number int) error {
	iss, err := s.Get(number)
	if err != nil {
		return err
	}
	branch := iss.BranchName()

	if _, err := runGit(ctx, repoRoot, "rev-parse", "--verify", branch); err == nil {
		_, err := runGit(ctx, repoRoot, "checkout", branch)
		return err
	}

	if _, err := runGit(ctx, repoRoot, "checkout", "-b", branch, baseBranch()); err != nil {
		return err
	}
	logging.Issue("issue: checked out branch %s for #%06d off %s", branch, number, baseBranch())
	return nil
}

// Merge merges the issue's branch back into the base branch with a
// no-fast-forward commit, recording the issue number in the message.
func (s *Store) Merge(ctx context.Context, repoRoot string, number int) error {
	iss, err := s.Get(number)
	if err != nil {
		return err
	}
	branch := iss.BranchName()
	base := baseBranch()

	if _, err := runGit(ctx, repoRoot, "checkout", base); err != nil {
		return err
	}
	msg := fmt.Sprintf("Merge %s (issue #%06d)", branch, number)
	if _, err := runGit(ctx, repoRoot, "merge", "--no-ff", "-m", msg, branch); err != nil {
		return err
	}
	logging.Issue("issue: merged %s into %s", branch, base)
	return nil
}

var branchNumberRe = regexp.MustCompile(`^issue-(\d{6})`)

// Current returns the issue whose branch name matches the repository's
// current git branch, if any.
func (s *Store) Current(ctx context.Context, repoRoot string) (*Issue, bool, error) {
	branch, err := runGit(ctx, repoRoot, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return nil, false, err
	}
	m := branchNumberRe.FindStringSubmatch(branch)
	if m == nil {
		return nil, false, nil
	}
	number, err := strconv.Atoi(m[1])
	if err != nil {
		return nil, false, nil
	}
	iss, err := s.Get(number)
	if err != nil {
		return nil, false, nil
	}
	return iss, true, nil
}
