// Package metadata reads the per-project branch metadata file written at
// PR-creation time. The file is owned by the PR-creation flow; this
// package only reads it. Persisted entries take precedence over live
// lookups because they were recorded at the moment the tool itself
// opened the PR.
package metadata

import (
	"os"
	"path/filepath"
	"time"

	"featdeck/internal/jsonutil"
)

// FileName is the branch metadata file, relative to the project's
// .featdeck directory.
const FileName = "worktrees.json"

// PR is a persisted pull-request record for a branch.
type PR struct {
	Number    int       `json:"number"`
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	State     string    `json:"state"` // OPEN, MERGED, CLOSED
	CreatedAt time.Time `json:"createdAt"`
}

// Store resolves persisted PR metadata by branch name.
type Store interface {
	PRForBranch(branch string) (PR, bool)
}

// FileStore is a Store backed by the project's worktrees.json file.
type FileStore struct {
	byBranch map[string]PR
}

// Load reads the metadata file for projectPath. A missing file yields an
// empty store; only a malformed file is an error.
func Load(projectPath string) (*FileStore, error) {
	path := filepath.Join(projectPath, ".featdeck", FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &FileStore{}, nil
		}
		return nil, err
	}

	byBranch := make(map[string]PR)
	if err := jsonutil.UnmarshalWithContext(data, &byBranch, "parsing "+FileName); err != nil {
		return nil, err
	}
	return &FileStore{byBranch: byBranch}, nil
}

// PRForBranch returns the persisted PR record for branch, if any.
func (s *FileStore) PRForBranch(branch string) (PR, bool) {
	pr, ok := s.byBranch[branch]
	return pr, ok
}
