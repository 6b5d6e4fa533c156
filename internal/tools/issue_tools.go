package tools

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"swissarmyhammer/internal/errs"
)

func issueNumber(args map[string]any) (int, error) {
	switch v := args["number"].(type) {
	case float64:
		return int(v), nil
	case int:
		return v, nil
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, errs.New(errs.Validation, "issue").WithHint("number must be an integer")
		}
		return n, nil
	default:
		return 0, errs.New(errs.Validation, "issue").WithHint("missing or invalid number")
	}
}

func registerIssueTools(r *Registry, tc *ToolContext) error {
	create := &Tool{
		Name:        "issue/create",
		Description: "Create a new numbered issue.",
		Category:    CategoryIssue,
		Schema: ToolSchema{
			Required: []string{"title"},
			Properties: map[string]Property{
				"title": {Type: "string", Description: "issue title"},
				"body":  {Type: "string", Description: "issue body"},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			title, _ := args["title"].(string)
			body, _ := args["body"].(string)
			iss, err := tc.Issues.Create(title, body)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("#%06d %s", iss.Number, iss.Title), nil
		},
	}

	update := &Tool{
		Name:        "issue/update",
		Description: "Overwrite a pending issue's body.",
		Category:    CategoryIssue,
		Schema: ToolSchema{
			Required:   []string{"number", "body"},
			Properties: map[string]Property{"number": {Type: "integer"}, "body": {Type: "string"}},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			n, err := issueNumber(args)
			if err != nil {
				return "", err
			}
			body, _ := args["body"].(string)
			if err := tc.Issues.Update(n, body); err != nil {
				return "", err
			}
			return fmt.Sprintf("updated #%06d", n), nil
		},
	}

	list := &Tool{
		Name:        "issue/list",
		Description: "List every pending issue.",
		Category:    CategoryIssue,
		Schema:      ToolSchema{Properties: map[string]Property{}},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			issues, err := tc.Issues.List()
			if err != nil {
				return "", err
			}
			var b strings.Builder
			for _, iss := range issues {
				fmt.Fprintf(&b, "#%06d %s\n", iss.Number, iss.Title)
			}
			return b.String(), nil
		},
	}

	work := &Tool{
		Name:        "issue/work",
		Description: "Check out the issue's dedicated git branch, creating it from the base branch if needed.",
		Category:    CategoryIssue,
		Schema: ToolSchema{
			Required:   []string{"number"},
			Properties: map[string]Property{"number": {Type: "integer"}},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			n, err := issueNumber(args)
			if err != nil {
				return "", err
			}
			if err := tc.Issues.Work(ctx, tc.RepoRoot, n); err != nil {
				return "", err
			}
			return fmt.Sprintf("working on #%06d", n), nil
		},
	}

	merge := &Tool{
		Name:        "issue/merge",
		Description: "Merge the issue's branch back into the base branch.",
		Category:    CategoryIssue,
		Schema: ToolSchema{
			Required:   []string{"number"},
			Properties: map[string]Property{"number": {Type: "integer"}},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			n, err := issueNumber(args)
			if err != nil {
				return "", err
			}
			if err := tc.Issues.Merge(ctx, tc.RepoRoot, n); err != nil {
				return "", err
			}
			return fmt.Sprintf("merged #%06d", n), nil
		},
	}

	complete := &Tool{
		Name:        "issue/complete",
		Description: "Mark an issue complete, moving it to the completed directory.",
		Category:    CategoryIssue,
		Schema: ToolSchema{
			Required:   []string{"number"},
			Properties: map[string]Property{"number": {Type: "integer"}},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			n, err := issueNumber(args)
			if err != nil {
				return "", err
			}
			if err := tc.Issues.Complete(n); err != nil {
				return "", err
			}
			return fmt.Sprintf("completed #%06d", n), nil
		},
	}

	current := &Tool{
		Name:        "issue/current",
		Description: "Report the issue matching the current git branch, if any.",
		Category:    CategoryIssue,
		Schema:      ToolSchema{Properties: map[string]Property{}},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			iss, ok, err := tc.Issues.Current(ctx, tc.RepoRoot)
			if err != nil {
				return "", err
			}
			if !ok {
				return "no current issue", nil
			}
			return fmt.Sprintf("#%06d %s", iss.Number, iss.Title), nil
		},
	}

	next := &Tool{
		Name:        "issue/next",
		Description: "Report the lowest-numbered pending issue.",
		Category:    CategoryIssue,
		Schema:      ToolSchema{Properties: map[string]Property{}},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			iss, ok, err := tc.Issues.Next()
			if err != nil {
				return "", err
			}
			if !ok {
				return "no pending issues", nil
			}
			return fmt.Sprintf("#%06d %s", iss.Number, iss.Title), nil
		},
	}

	allComplete := &Tool{
		Name:        "issue/all_complete",
		Description: "Report whether every issue is complete.",
		Category:    CategoryIssue,
		Schema:      ToolSchema{Properties: map[string]Property{}},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			done, err := tc.Issues.AllComplete()
			if err != nil {
				return "", err
			}
			return strconv.FormatBool(done), nil
		},
	}

	for _, t := range []*Tool{create, update, list, work, merge, complete, current, next, allComplete} {
		if err := r.Register(t); err != nil {
			return err
		}
	}
	return nil
}
