package worktree

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// IsLinkedWorktree reports whether dir is a linked git worktree. For a
// worktree the .git entry is a file containing a "gitdir:" pointer; for
// the main repository it is a directory.
func IsLinkedWorktree(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, ".git"))
	if err != nil || info.IsDir() {
		return false
	}
	data, err := os.ReadFile(filepath.Join(dir, ".git"))
	if err != nil {
		return false
	}
	_, err = ParseGitDir(string(data))
	return err == nil
}

// ParseGitDir parses the content of a linked worktree's .git file
// (e.g. "gitdir: /path/to/.git/worktrees/name") and returns the gitdir
// path without the prefix.
func ParseGitDir(content string) (string, error) {
	gitdir := strings.TrimSpace(content)
	if !strings.HasPrefix(gitdir, "gitdir: ") {
		return "", fmt.Errorf("invalid .git file format: %q", gitdir)
	}
	return strings.TrimPrefix(gitdir, "gitdir: "), nil
}
