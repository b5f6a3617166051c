// Package scheduler answers "what is ready to run, and where" by
// combining dependency resolution with the worktree inventory.
package scheduler

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"featdeck/internal/depgraph"
	"featdeck/internal/feature"
	"featdeck/internal/worktree"
)

// Assignment pairs an eligible feature with the workspace it should
// execute in.
type Assignment struct {
	Feature feature.Feature
	// WorkspacePath is the directory to run in: the matching worktree,
	// or the primary workspace for features without a branch. Empty
	// when NeedsWorktree is set.
	WorkspacePath string
	// NeedsWorktree marks a feature whose branch has no worktree yet.
	// The provisioning collaborator must create one before dispatch.
	NeedsWorktree bool
}

// ReadyToExecute returns the features eligible to start now, in
// execution order. A feature qualifies when it is not blocked by an
// unfinished existing dependency, not already finished, and not in the
// running set. Its workspace is the primary workspace when it has no
// branch, or the inventory worktree matching its branch; a missing
// worktree is reported via NeedsWorktree rather than dropping the
// feature.
func ReadyToExecute(features []feature.Feature, worktrees []worktree.Record, running map[string]bool) []Assignment {
	r := depgraph.Resolve(features)
	return readyFromResolution(r, worktrees, running)
}

func readyFromResolution(r depgraph.Result, worktrees []worktree.Record, running map[string]bool) []Assignment {
	var mainPath string
	byBranch := make(map[string]string, len(worktrees))
	for _, wt := range worktrees {
		if wt.IsMain {
			mainPath = wt.Path
		}
		if wt.Branch != "" {
			byBranch[wt.Branch] = wt.Path
		}
	}

	var ready []Assignment
	for _, f := range r.Ordered {
		if f.Status.Done() {
			continue
		}
		if running[f.ID] {
			continue
		}
		if _, blocked := r.Blocked[f.ID]; blocked {
			continue
		}

		a := Assignment{Feature: f}
		if f.BranchName == "" {
			a.WorkspacePath = mainPath
		} else if path, ok := byBranch[f.BranchName]; ok {
			a.WorkspacePath = path
		} else {
			a.NeedsWorktree = true
		}
		ready = append(ready, a)
	}
	return ready
}

// Plan is one full scheduling pass: the dependency resolution, the
// reconciled worktree inventory, and the resulting assignments.
type Plan struct {
	Resolution depgraph.Result
	Inventory  worktree.ListResult
	Ready      []Assignment
}

// Scheduler combines the resolver with a worktree inventory.
type Scheduler struct {
	inv    *worktree.Inventory
	logger *slog.Logger
	tracer trace.Tracer
}

// New creates a scheduler over the given inventory.
func New(inv *worktree.Inventory, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		inv:    inv,
		logger: logger,
		tracer: otel.Tracer("featdeck/scheduler"),
	}
}

// Plan resolves the feature snapshot, lists worktrees for projectPath,
// and computes ready assignments. Both inputs are snapshots; callers
// needing fresher state simply call Plan again.
func (s *Scheduler) Plan(ctx context.Context, projectPath string, features []feature.Feature, running map[string]bool, includeDetails bool) Plan {
	ctx, span := s.tracer.Start(ctx, "scheduler.plan",
		trace.WithAttributes(
			attribute.String("project.path", projectPath),
			attribute.Int("feature.count", len(features)),
		))
	defer span.End()

	_, resolveSpan := s.tracer.Start(ctx, "depgraph.resolve")
	resolution := depgraph.Resolve(features)
	resolveSpan.SetAttributes(
		attribute.Int("cycles", len(resolution.Cycles)),
		attribute.Int("blocked", len(resolution.Blocked)),
	)
	resolveSpan.End()

	_, listSpan := s.tracer.Start(ctx, "worktree.list")
	inventory := s.inv.List(ctx, projectPath, includeDetails)
	listSpan.SetAttributes(
		attribute.Int("worktrees", len(inventory.Worktrees)),
		attribute.Int("removed", len(inventory.Removed)),
	)
	listSpan.End()

	ready := readyFromResolution(resolution, inventory.Worktrees, running)
	span.SetAttributes(attribute.Int("ready", len(ready)))

	s.logger.Debug("scheduling pass",
		"project", projectPath,
		"features", len(features),
		"ready", len(ready),
		"blocked", len(resolution.Blocked),
		"cycles", len(resolution.Cycles),
	)
	return Plan{Resolution: resolution, Inventory: inventory, Ready: ready}
}
