// Package feature defines the feature work-item model consumed by the
// scheduler. Features are owned by an external store; this package only
// describes the snapshot shape and the status vocabulary.
package feature

import "encoding/json"

// Status is the lifecycle state of a feature.
type Status string

const (
	StatusBacklog         Status = "backlog"
	StatusInProgress      Status = "in_progress"
	StatusWaitingApproval Status = "waiting_approval"
	StatusCompleted       Status = "completed"
	StatusVerified        Status = "verified"
	// StatusUnknown covers values introduced by newer stores.
	// Unknown statuses are never treated as done.
	StatusUnknown Status = "unknown"
)

// DefaultPriority is assigned when a feature carries no explicit priority.
// Lower numbers run earlier.
const DefaultPriority = 2

// ParseStatus maps a raw status string onto the known vocabulary,
// folding anything unrecognized into StatusUnknown.
func ParseStatus(s string) Status {
	switch Status(s) {
	case StatusBacklog, StatusInProgress, StatusWaitingApproval, StatusCompleted, StatusVerified:
		return Status(s)
	default:
		return StatusUnknown
	}
}

// Done reports whether the status counts as a satisfied dependency.
func (s Status) Done() bool {
	return s == StatusCompleted || s == StatusVerified
}

// Feature is a read-only snapshot of a work item from the feature store.
type Feature struct {
	ID           string   `json:"id"`
	Title        string   `json:"title,omitempty"`
	Status       Status   `json:"status"`
	Priority     *int     `json:"priority,omitempty"`
	Dependencies []string `json:"dependencies,omitempty"`
	// BranchName is empty when the feature runs in the shared
	// primary workspace instead of a dedicated worktree.
	BranchName string `json:"branchName,omitempty"`
}

// EffectivePriority returns the feature's priority, or DefaultPriority
// when the store supplied none.
func (f Feature) EffectivePriority() int {
	if f.Priority == nil {
		return DefaultPriority
	}
	return *f.Priority
}

// UnmarshalJSON folds unknown status strings into StatusUnknown so a
// newer store cannot break scheduling.
func (f *Feature) UnmarshalJSON(data []byte) error {
	type alias Feature
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	a.Status = ParseStatus(string(a.Status))
	*f = Feature(a)
	return nil
}
