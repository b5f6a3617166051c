package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"featdeck/internal/scheduler"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	readyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	blockedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	cycleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle     = lipgloss.NewStyle().Faint(true)
)

// containerFor maps a configured worktrees base to the per-project
// container directory, mirroring worktree.DefaultContainerDir.
func containerFor(base, projectPath string) string {
	return filepath.Join(base, filepath.Base(projectPath))
}

// renderPlan formats a scheduling pass for terminal output.
func renderPlan(plan scheduler.Plan, details bool) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("Worktrees"))
	b.WriteString("\n")
	if len(plan.Inventory.Worktrees) == 0 {
		b.WriteString(dimStyle.Render("  (none — not a git repository?)"))
		b.WriteString("\n")
	}
	for _, wt := range plan.Inventory.Worktrees {
		marker := "  "
		if wt.IsMain {
			marker = "* "
		}
		line := fmt.Sprintf("%s%-30s %s", marker, wt.Branch, wt.Path)
		if details && wt.HasChanges {
			line += dimStyle.Render(fmt.Sprintf("  (%d changed)", wt.ChangedFilesCount))
		}
		if wt.PR != nil {
			line += dimStyle.Render(fmt.Sprintf("  PR #%d %s", wt.PR.Number, wt.PR.State))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	for _, wt := range plan.Inventory.Removed {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  removed: %s (%s)", wt.Path, wt.Branch)))
		b.WriteString("\n")
	}

	if len(plan.Resolution.Cycles) > 0 {
		b.WriteString(headerStyle.Render("Dependency cycles"))
		b.WriteString("\n")
		for _, cycle := range plan.Resolution.Cycles {
			b.WriteString(cycleStyle.Render("  " + strings.Join(cycle, " -> ")))
			b.WriteString("\n")
		}
	}

	if len(plan.Resolution.MissingDependencies) > 0 {
		b.WriteString(headerStyle.Render("Missing dependencies"))
		b.WriteString("\n")
		for _, f := range plan.Resolution.Ordered {
			if missing, ok := plan.Resolution.MissingDependencies[f.ID]; ok {
				b.WriteString(fmt.Sprintf("  %s: %s\n", f.ID, strings.Join(missing, ", ")))
			}
		}
	}

	if len(plan.Resolution.Blocked) > 0 {
		b.WriteString(headerStyle.Render("Blocked"))
		b.WriteString("\n")
		for _, f := range plan.Resolution.Ordered {
			if blocking, ok := plan.Resolution.Blocked[f.ID]; ok {
				b.WriteString(blockedStyle.Render(fmt.Sprintf("  %s waits on %s", f.ID, strings.Join(blocking, ", "))))
				b.WriteString("\n")
			}
		}
	}

	b.WriteString(headerStyle.Render("Ready to execute"))
	b.WriteString("\n")
	if len(plan.Ready) == 0 {
		b.WriteString(dimStyle.Render("  (nothing ready)"))
		b.WriteString("\n")
	}
	for _, a := range plan.Ready {
		where := a.WorkspacePath
		if a.NeedsWorktree {
			where = fmt.Sprintf("needs worktree for branch %q", a.Feature.BranchName)
		}
		b.WriteString(readyStyle.Render(fmt.Sprintf("  %-20s -> %s", a.Feature.ID, where)))
		b.WriteString("\n")
	}

	return b.String()
}
