package worktree

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"featdeck/internal/ghcli"
	"featdeck/internal/gitcmd"
	"featdeck/internal/metadata"
	"featdeck/internal/prcache"
)

const (
	// ContainerEnv overrides the worktrees container base directory.
	ContainerEnv = "FEATDECK_WORKTREES_DIR"
	// DefaultContainerBase is the default container base under $HOME.
	DefaultContainerBase = ".featdeck/worktrees"
)

// DefaultContainerDir returns the container directory scanned for
// orphaned worktrees of the given project: one subdirectory of the
// worktrees base, named after the project directory.
func DefaultContainerDir(projectPath string) string {
	base := os.Getenv(ContainerEnv)
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		base = filepath.Join(home, DefaultContainerBase)
	}
	return filepath.Join(base, filepath.Base(projectPath))
}

// Inventory reconciles the registered worktree set against what is
// actually on disk. All fields with defaults may be overridden, which
// tests use to avoid shelling out.
type Inventory struct {
	// Git issues version-control commands. The zero value shells out.
	Git gitcmd.Git
	// PRs serves live pull-request status. Nil disables live lookups.
	PRs *prcache.Cache
	// LoadMetadata loads the persisted branch metadata store for a
	// project. Defaults to metadata.Load.
	LoadMetadata func(projectPath string) (metadata.Store, error)
	// ContainerDir resolves the orphan-discovery container for a
	// project. Defaults to DefaultContainerDir.
	ContainerDir func(projectPath string) string

	logger *slog.Logger
}

// NewInventory creates an inventory using the given git interface and
// optional PR status cache.
func NewInventory(git gitcmd.Git, prs *prcache.Cache, logger *slog.Logger) *Inventory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Inventory{Git: git, PRs: prs, logger: logger}
}

// List returns the reconciled worktree inventory for projectPath.
//
// Three phases: read the authoritative registry, drop (and prune)
// entries whose directories vanished, then adopt orphaned worktrees
// found in the container directory. When includeDetails is set, each
// record is additionally enriched with a dirty-file count and live
// pull-request status; without it only persisted PR metadata is merged,
// keeping subprocess fan-out off the polling path.
//
// A projectPath that is not a git repository yields an empty result,
// not an error. Per-record failures degrade that record only.
func (inv *Inventory) List(ctx context.Context, projectPath string, includeDetails bool) ListResult {
	var res ListResult

	registered, err := inv.Git.Worktrees(projectPath)
	if err != nil {
		inv.log().Debug("worktree registry unreadable", "project", projectPath, "error", err)
		return res
	}
	if len(registered) == 0 {
		return res
	}

	// The first registry record is the primary workspace.
	mainBranch := registered[0].Branch

	seen := make(map[string]bool, len(registered))
	for i, wt := range registered {
		path := filepath.Clean(wt.Path)
		seen[path] = true
		if i > 0 {
			if _, statErr := os.Stat(path); statErr != nil {
				res.Removed = append(res.Removed, Record{Path: path, Branch: wt.Branch})
				continue
			}
		}
		res.Worktrees = append(res.Worktrees, Record{
			Path:      path,
			Branch:    wt.Branch,
			IsMain:    i == 0,
			IsCurrent: wt.Branch != "" && wt.Branch == mainBranch,
		})
	}

	// Keep the registry clean for the next read. Prune failure never
	// fails the listing.
	if len(res.Removed) > 0 {
		if pruneErr := inv.Git.PruneWorktrees(projectPath); pruneErr != nil {
			inv.log().Warn("worktree prune failed", "project", projectPath, "error", pruneErr)
		}
	}

	res.Worktrees = append(res.Worktrees, inv.discoverOrphans(projectPath, mainBranch, seen)...)

	inv.enrich(ctx, projectPath, res.Worktrees, includeDetails)
	return res
}

// discoverOrphans scans the container directory for worktrees created
// outside the tool (or left behind by crashes) and adopts them.
// Unreadable candidates and non-worktrees are skipped silently.
func (inv *Inventory) discoverOrphans(projectPath, mainBranch string, seen map[string]bool) []Record {
	containerDir := inv.ContainerDir
	if containerDir == nil {
		containerDir = DefaultContainerDir
	}
	container := containerDir(projectPath)
	if container == "" {
		return nil
	}
	entries, err := os.ReadDir(container)
	if err != nil {
		return nil
	}

	var adopted []Record
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		candidate := filepath.Clean(filepath.Join(container, entry.Name()))
		if seen[candidate] {
			continue
		}
		if !IsLinkedWorktree(candidate) {
			continue
		}
		branch, ok := inv.resolveBranch(candidate)
		if !ok {
			continue
		}
		inv.log().Debug("adopting orphaned worktree", "path", candidate, "branch", branch)
		adopted = append(adopted, Record{
			Path:      candidate,
			Branch:    branch,
			IsCurrent: branch == mainBranch,
		})
	}
	return adopted
}

// resolveBranch determines the branch checked out in a candidate
// worktree. The direct query reports the literal "HEAD" token for a
// detached HEAD, in which case the symbolic reference is tried; a
// result is accepted only when it names a real branch.
func (inv *Inventory) resolveBranch(dir string) (string, bool) {
	if branch, err := inv.Git.CurrentBranch(dir); err == nil && branch != "" && branch != "HEAD" {
		return branch, true
	}
	branch, err := inv.Git.SymbolicHEAD(dir)
	if err != nil || branch == "" || branch == "HEAD" {
		return "", false
	}
	return branch, true
}

// enrich merges PR info onto records and, when details are requested,
// adds per-worktree dirty-file counts. Status queries run in parallel;
// a failing query degrades its record to no-changes instead of failing
// the batch.
func (inv *Inventory) enrich(ctx context.Context, projectPath string, records []Record, includeDetails bool) {
	store := inv.loadMetadata(projectPath)

	var liveByBranch map[string]ghcli.PR
	if includeDetails && inv.PRs != nil {
		if status := inv.PRs.Status(ctx, projectPath); status != nil {
			liveByBranch = make(map[string]ghcli.PR, len(status.PRs))
			for _, pr := range status.PRs {
				liveByBranch[pr.HeadRefName] = pr
			}
		}
	}

	for i := range records {
		records[i].PR = mergePRInfo(records[i].Branch, store, liveByBranch)
	}

	if !includeDetails {
		return
	}

	var wg sync.WaitGroup
	for i := range records {
		wg.Add(1)
		go func(rec *Record) {
			defer wg.Done()
			count, err := inv.Git.DirtyCount(rec.Path)
			if err != nil {
				inv.log().Debug("status query failed", "path", rec.Path, "error", err)
				return
			}
			rec.HasChanges = count > 0
			rec.ChangedFilesCount = count
		}(&records[i])
	}
	wg.Wait()
}

func (inv *Inventory) loadMetadata(projectPath string) metadata.Store {
	load := inv.LoadMetadata
	if load == nil {
		load = func(p string) (metadata.Store, error) { return metadata.Load(p) }
	}
	store, err := load(projectPath)
	if err != nil {
		inv.log().Warn("branch metadata unreadable", "project", projectPath, "error", err)
		return nil
	}
	return store
}

// Remove deletes a worktree through the version-control registry. A
// worktree that is already gone counts as success. Any cached PR status
// for the project is invalidated since the branch set changed.
func (inv *Inventory) Remove(projectPath, worktreePath string) error {
	if err := inv.Git.RemoveWorktree(projectPath, worktreePath, true); err != nil {
		return err
	}
	if inv.PRs != nil {
		inv.PRs.Invalidate(projectPath)
	}
	return nil
}

func (inv *Inventory) log() *slog.Logger {
	if inv.logger == nil {
		return slog.Default()
	}
	return inv.logger
}
