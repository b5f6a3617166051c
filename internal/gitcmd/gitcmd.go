// Package gitcmd wraps the git subcommands the worktree inventory needs:
// worktree listing and pruning, branch queries, and working-tree status.
// All commands go through an injectable Runner so tests never depend on
// a real git binary unless they want one.
package gitcmd

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes git commands. The default implementation uses exec.Command.
type Runner func(dir string, args ...string) ([]byte, error)

// Run executes a git command in the given directory with the provided arguments.
func Run(dir string, args ...string) ([]byte, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	return cmd.Output()
}

// Git issues git commands through a Runner. The zero value uses Run.
type Git struct {
	Run Runner
}

func (g Git) run(dir string, args ...string) ([]byte, error) {
	runner := g.Run
	if runner == nil {
		runner = Run
	}
	return runner(dir, args...)
}

// Worktree is one parsed entry from `git worktree list --porcelain`.
type Worktree struct {
	Path     string
	HEAD     string
	Branch   string // empty when detached
	Detached bool
}

// Worktrees returns the repository's registered worktrees. The first
// entry is always the main worktree.
func (g Git) Worktrees(repoDir string) ([]Worktree, error) {
	out, err := g.run(repoDir, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, fmt.Errorf("git worktree list: %w", err)
	}
	return ParseWorktrees(string(out)), nil
}

// ParseWorktrees parses `git worktree list --porcelain` output.
// Blocks are separated by blank lines; each block has:
//
//	worktree <path>
//	HEAD <sha>
//	branch refs/heads/<name>   (or "detached")
func ParseWorktrees(out string) []Worktree {
	var worktrees []Worktree
	var current Worktree

	flush := func() {
		if current.Path != "" {
			worktrees = append(worktrees, current)
		}
		current = Worktree{}
	}

	for _, line := range strings.Split(out, "\n") {
		switch {
		case strings.HasPrefix(line, "worktree "):
			flush()
			current.Path = strings.TrimPrefix(line, "worktree ")
		case strings.HasPrefix(line, "HEAD "):
			current.HEAD = strings.TrimPrefix(line, "HEAD ")
		case strings.HasPrefix(line, "branch "):
			current.Branch = strings.TrimPrefix(line, "branch refs/heads/")
		case line == "detached":
			current.Detached = true
		}
	}
	flush()
	return worktrees
}

// PruneWorktrees removes registry entries whose directories are gone.
func (g Git) PruneWorktrees(repoDir string) error {
	if _, err := g.run(repoDir, "worktree", "prune"); err != nil {
		return fmt.Errorf("git worktree prune: %w", err)
	}
	return nil
}

// RemoveWorktree unregisters and deletes a worktree. With idempotent
// set, an already-missing worktree is treated as success.
func (g Git) RemoveWorktree(repoDir, worktreePath string, idempotent bool) error {
	_, err := g.run(repoDir, "worktree", "remove", worktreePath, "--force")
	if err != nil {
		if idempotent && isMissingWorktreeErr(err) {
			return nil
		}
		return fmt.Errorf("git worktree remove %s: %w", worktreePath, err)
	}
	return nil
}

func isMissingWorktreeErr(err error) bool {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}
	msg := string(exitErr.Stderr)
	return strings.Contains(msg, "is not a working tree") ||
		strings.Contains(msg, "No such file")
}

// CurrentBranch returns the checked-out branch name for dir. A detached
// HEAD yields the literal "HEAD" token; callers that need a real branch
// must check for it.
func (g Git) CurrentBranch(dir string) (string, error) {
	out, err := g.run(dir, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", fmt.Errorf("git rev-parse --abbrev-ref HEAD: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// SymbolicHEAD resolves the symbolic HEAD reference for dir and strips
// the refs/heads/ prefix. Fails when HEAD is detached.
func (g Git) SymbolicHEAD(dir string) (string, error) {
	out, err := g.run(dir, "symbolic-ref", "HEAD")
	if err != nil {
		return "", fmt.Errorf("git symbolic-ref HEAD: %w", err)
	}
	ref := strings.TrimSpace(string(out))
	return strings.TrimPrefix(ref, "refs/heads/"), nil
}

// DirtyCount returns the number of changed files reported by
// `git status --porcelain` in dir.
func (g Git) DirtyCount(dir string) (int, error) {
	out, err := g.run(dir, "status", "--porcelain")
	if err != nil {
		return 0, fmt.Errorf("git status: %w", err)
	}
	count := 0
	for _, line := range strings.Split(string(out), "\n") {
		if strings.TrimSpace(line) != "" {
			count++
		}
	}
	return count, nil
}
