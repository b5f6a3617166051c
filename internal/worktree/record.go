// Package worktree maintains the inventory of git worktrees for a
// project: reading the authoritative registry, pruning entries whose
// directories vanished, adopting orphaned checkouts from the worktrees
// container directory, and optionally enriching records with dirty-file
// counts and pull-request status.
package worktree

import "time"

// PRInfo is the pull-request metadata attached to a worktree record.
// It can originate from persisted per-branch metadata or a live gh
// lookup; persisted data wins when both exist.
type PRInfo struct {
	Number    int       `json:"number"`
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	State     string    `json:"state"` // OPEN, MERGED, CLOSED
	CreatedAt time.Time `json:"createdAt"`
}

// Record describes one worktree known to the inventory.
type Record struct {
	// Path is the absolute, cleaned worktree directory.
	Path string `json:"path"`
	// Branch is the checked-out branch name, empty for detached HEAD.
	Branch string `json:"branch"`
	// IsMain marks the primary workspace. Exactly one record per
	// project carries it.
	IsMain bool `json:"isMain"`
	// IsCurrent is set when Branch matches the primary workspace's
	// checked-out branch.
	IsCurrent bool `json:"isCurrent"`

	// HasChanges and ChangedFilesCount are populated only when details
	// were requested. A failed status query degrades them to false/0.
	HasChanges        bool `json:"hasChanges"`
	ChangedFilesCount int  `json:"changedFilesCount"`

	// PR is set when either persisted metadata or a live lookup had
	// pull-request info for Branch.
	PR *PRInfo `json:"pr,omitempty"`
}

// ListResult is the outcome of one inventory pass.
type ListResult struct {
	// Worktrees lists every live worktree: registered ones whose
	// directories still exist, plus adopted orphans.
	Worktrees []Record `json:"worktrees"`
	// Removed lists registered worktrees whose directories no longer
	// exist. Their registry entries have been pruned best-effort.
	Removed []Record `json:"removedWorktrees"`
}
