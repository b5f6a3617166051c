// Package ghcli wraps the GitHub CLI (`gh`) for pull-request lookups.
// The CLI may be absent entirely; callers treat that as a missing
// capability, not an error.
package ghcli

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"featdeck/internal/jsonutil"
)

// PR holds minimal pull-request metadata from `gh pr list`.
type PR struct {
	Number      int       `json:"number"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	State       string    `json:"state"` // OPEN, MERGED, CLOSED
	HeadRefName string    `json:"headRefName"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Runner executes gh commands. The default implementation uses exec.CommandContext.
type Runner func(ctx context.Context, dir string, args ...string) ([]byte, error)

// Run executes a gh command in the given directory.
func Run(ctx context.Context, dir string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "gh", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("%w: %s", err, exitErr.Stderr)
		}
		return nil, err
	}
	return out, nil
}

// Client issues gh commands for a repository checkout.
type Client struct {
	logger *slog.Logger

	// Run executes gh commands. Defaults to Run. Override in tests.
	Run Runner
	// LookPath locates the gh binary. Defaults to exec.LookPath.
	LookPath func(file string) (string, error)
}

// NewClient creates a gh client that logs through the given logger.
func NewClient(logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{logger: logger}
}

// Available reports whether the gh binary can be found on PATH.
func (c *Client) Available() bool {
	lookPath := c.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	_, err := lookPath("gh")
	return err == nil
}

// ListOpenPRs returns the open pull requests for the repository checked
// out at dir, with head branch names for worktree matching.
func (c *Client) ListOpenPRs(ctx context.Context, dir string) ([]PR, error) {
	args := []string{
		"pr", "list",
		"--json", "number,title,url,state,headRefName,createdAt",
		"--limit", "100",
	}
	c.logger.Debug("gh pr list", "dir", dir)

	runner := c.Run
	if runner == nil {
		runner = Run
	}
	out, err := runner(ctx, dir, args...)
	if err != nil {
		return nil, fmt.Errorf("gh pr list: %w", err)
	}

	prs, err := jsonutil.UnmarshalArrayAllowEmpty[PR](out, "parsing gh pr list output")
	if err != nil {
		return nil, err
	}
	return prs, nil
}
