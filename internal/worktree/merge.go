package worktree

import (
	"featdeck/internal/ghcli"
	"featdeck/internal/metadata"
)

// prSource holds the candidate PR info for a branch during a listing
// pass, tagged by origin. Keeping both candidates explicit makes the
// precedence rule auditable: persisted metadata was written when the
// tool itself opened the PR and always wins over a live lookup.
type prSource struct {
	persisted *metadata.PR
	live      *ghcli.PR
}

// resolve collapses the tagged source into the single optional PR field
// of the output record. Returns nil when neither origin has data.
func (s prSource) resolve() *PRInfo {
	if s.persisted != nil {
		return &PRInfo{
			Number:    s.persisted.Number,
			URL:       s.persisted.URL,
			Title:     s.persisted.Title,
			State:     s.persisted.State,
			CreatedAt: s.persisted.CreatedAt,
		}
	}
	if s.live != nil {
		return &PRInfo{
			Number:    s.live.Number,
			URL:       s.live.URL,
			Title:     s.live.Title,
			State:     s.live.State,
			CreatedAt: s.live.CreatedAt,
		}
	}
	return nil
}

// mergePRInfo resolves the PR info for a branch. Persisted metadata is
// consulted first; the live index (open PRs keyed by head branch) only
// fills the gap and is nil when the caller did not request details or
// the CLI is unavailable.
func mergePRInfo(branch string, store metadata.Store, liveByBranch map[string]ghcli.PR) *PRInfo {
	if branch == "" {
		return nil
	}
	src := prSource{}
	if store != nil {
		if pr, ok := store.PRForBranch(branch); ok {
			src.persisted = &pr
		}
	}
	if pr, ok := liveByBranch[branch]; ok {
		src.live = &pr
	}
	return src.resolve()
}
