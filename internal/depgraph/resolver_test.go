package depgraph

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"featdeck/internal/feature"
)

func intp(v int) *int { return &v }

func feat(id string, status feature.Status, deps ...string) feature.Feature {
	return feature.Feature{ID: id, Status: status, Dependencies: deps}
}

func orderedIDs(r Result) []string {
	ids := make([]string, 0, len(r.Ordered))
	for _, f := range r.Ordered {
		ids = append(ids, f.ID)
	}
	return ids
}

func TestResolve_NoDependencies_SortsByPriority(t *testing.T) {
	features := []feature.Feature{
		{ID: "low", Status: feature.StatusBacklog, Priority: intp(3)},
		{ID: "high", Status: feature.StatusBacklog, Priority: intp(1)},
		{ID: "default", Status: feature.StatusBacklog}, // implicit priority 2
	}

	r := Resolve(features)

	assert.Equal(t, []string{"high", "default", "low"}, orderedIDs(r))
	assert.Empty(t, r.Cycles)
	assert.Empty(t, r.MissingDependencies)
	assert.Empty(t, r.Blocked)
}

func TestResolve_PriorityTies_StableOnInputOrder(t *testing.T) {
	features := []feature.Feature{
		feat("a", feature.StatusBacklog),
		feat("b", feature.StatusBacklog),
		feat("c", feature.StatusBacklog),
	}

	r := Resolve(features)

	assert.Equal(t, []string{"a", "b", "c"}, orderedIDs(r))
}

func TestResolve_Chain_OrdersDependenciesFirst(t *testing.T) {
	// C depends on B, B depends on A; input order deliberately reversed.
	features := []feature.Feature{
		feat("c", feature.StatusBacklog, "b"),
		feat("b", feature.StatusBacklog, "a"),
		feat("a", feature.StatusBacklog),
	}

	r := Resolve(features)

	assert.Equal(t, []string{"a", "b", "c"}, orderedIDs(r))
}

func TestResolve_PriorityNeverOvertakesDependencies(t *testing.T) {
	// "urgent" has the best priority but depends on "slow"; ordering
	// must still place slow first.
	features := []feature.Feature{
		{ID: "urgent", Status: feature.StatusBacklog, Priority: intp(0), Dependencies: []string{"slow"}},
		{ID: "slow", Status: feature.StatusBacklog, Priority: intp(4)},
		{ID: "mid", Status: feature.StatusBacklog, Priority: intp(1)},
	}

	r := Resolve(features)

	assert.Equal(t, []string{"mid", "slow", "urgent"}, orderedIDs(r))
}

func TestResolve_SelfDependency_SingleElementCycle(t *testing.T) {
	features := []feature.Feature{
		feat("loner", feature.StatusBacklog, "loner"),
		feat("ok", feature.StatusBacklog),
	}

	r := Resolve(features)

	require.Len(t, r.Cycles, 1)
	assert.Equal(t, []string{"loner"}, r.Cycles[0])
	// Cycle members are reported, never dropped, and sort after
	// acyclic features.
	assert.Equal(t, []string{"ok", "loner"}, orderedIDs(r))
}

func TestResolve_MutualDependency_BothReportedAndOrdered(t *testing.T) {
	features := []feature.Feature{
		feat("a", feature.StatusBacklog, "b"),
		feat("b", feature.StatusBacklog, "a"),
		feat("free", feature.StatusBacklog),
	}

	r := Resolve(features)

	require.Len(t, r.Cycles, 1)
	assert.ElementsMatch(t, []string{"a", "b"}, r.Cycles[0])
	assert.ElementsMatch(t, []string{"a", "b", "free"}, orderedIDs(r))
	assert.Equal(t, "free", orderedIDs(r)[0])
}

func TestResolve_LongCycle_Detected(t *testing.T) {
	features := []feature.Feature{
		feat("a", feature.StatusBacklog, "c"),
		feat("b", feature.StatusBacklog, "a"),
		feat("c", feature.StatusBacklog, "b"),
	}

	r := Resolve(features)

	require.Len(t, r.Cycles, 1)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, r.Cycles[0])
	assert.Len(t, r.Ordered, 3)
}

func TestResolve_DeepChain_NoStackOverflow(t *testing.T) {
	// A 50k-deep chain would blow a recursive traversal.
	const n = 50000
	features := make([]feature.Feature, n)
	features[0] = feat(idFor(0), feature.StatusBacklog)
	for i := 1; i < n; i++ {
		features[i] = feat(idFor(i), feature.StatusBacklog, idFor(i-1))
	}
	// Close the loop at the end to force cycle detection to walk the
	// full path depth.
	features[0].Dependencies = []string{idFor(n - 1)}

	r := Resolve(features)

	require.Len(t, r.Cycles, 1)
	assert.Len(t, r.Cycles[0], n)
}

func idFor(i int) string {
	return fmt.Sprintf("f%d", i)
}

func TestResolve_MissingDependency_ReportedNotBlocking(t *testing.T) {
	features := []feature.Feature{
		feat("x", feature.StatusBacklog, "missing1"),
		feat("y", feature.StatusBacklog),
	}

	r := Resolve(features)

	assert.Equal(t, map[string][]string{"x": {"missing1"}}, r.MissingDependencies)
	assert.NotContains(t, r.Blocked, "x")
	// The missing dependency must not reorder x either.
	assert.Equal(t, []string{"x", "y"}, orderedIDs(r))
}

func TestResolve_Blocked_TracksUnfinishedDependencies(t *testing.T) {
	features := []feature.Feature{
		feat("dep", feature.StatusInProgress),
		feat("next", feature.StatusBacklog, "dep"),
	}

	r := Resolve(features)
	assert.Equal(t, []string{"dep"}, r.Blocked["next"])

	// Once the dependency completes, re-resolving clears the block.
	features[0].Status = feature.StatusCompleted
	r = Resolve(features)
	assert.NotContains(t, r.Blocked, "next")

	features[0].Status = feature.StatusVerified
	r = Resolve(features)
	assert.NotContains(t, r.Blocked, "next")
}

func TestResolve_UnknownStatus_CountsAsBlocking(t *testing.T) {
	features := []feature.Feature{
		feat("dep", feature.ParseStatus("half_done")),
		feat("next", feature.StatusBacklog, "dep"),
	}

	r := Resolve(features)

	assert.Equal(t, []string{"dep"}, r.Blocked["next"])
}

func TestResolve_Deterministic(t *testing.T) {
	features := []feature.Feature{
		feat("a", feature.StatusBacklog, "b"),
		feat("b", feature.StatusBacklog, "a"),
		feat("c", feature.StatusBacklog, "ghost"),
		feat("d", feature.StatusInProgress),
		feat("e", feature.StatusBacklog, "d"),
	}

	first := Resolve(features)
	for range 10 {
		assert.Equal(t, first, Resolve(features))
	}
}

func TestAreDependenciesSatisfied(t *testing.T) {
	all := []feature.Feature{
		feat("done", feature.StatusCompleted),
		feat("checked", feature.StatusVerified),
		feat("wip", feature.StatusInProgress),
	}

	cases := []struct {
		name string
		deps []string
		want bool
	}{
		{"no deps", nil, true},
		{"all done", []string{"done", "checked"}, true},
		{"one unfinished", []string{"done", "wip"}, false},
		{"missing id is unsatisfied", []string{"done", "ghost"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := feat("subject", feature.StatusBacklog, tc.deps...)
			assert.Equal(t, tc.want, AreDependenciesSatisfied(f, all))
		})
	}
}

func TestBlockingDependencies_OmitsMissingIDs(t *testing.T) {
	all := []feature.Feature{
		feat("done", feature.StatusCompleted),
		feat("wip", feature.StatusInProgress),
	}
	f := feat("subject", feature.StatusBacklog, "done", "wip", "ghost")

	got := BlockingDependencies(f, all)

	// "ghost" is unsatisfied for AreDependenciesSatisfied but is never
	// listed as blocking.
	assert.Equal(t, []string{"wip"}, got)
	assert.False(t, AreDependenciesSatisfied(f, all))
}
