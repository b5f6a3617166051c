// Package depgraph computes execution order over a feature dependency
// graph: topological ordering with priority tie-breaking, cycle and
// missing-dependency reporting, and per-feature blocking status.
//
// Everything here is pure and allocation-local. Callers may invoke
// Resolve concurrently from multiple goroutines without locking.
package depgraph

import "featdeck/internal/feature"

// Result is the full output of one resolution pass over a feature snapshot.
type Result struct {
	// Ordered is a topological ordering of every input feature,
	// dependencies before dependents. Ties within a readiness tier are
	// broken by ascending priority, then by input order. Cycle members
	// are included (after all acyclic features), never dropped.
	Ordered []feature.Feature

	// Cycles lists each detected dependency cycle as the ordered
	// sequence of feature IDs forming it. A feature depending on
	// itself yields a one-element cycle.
	Cycles [][]string

	// MissingDependencies maps a feature ID to its declared dependency
	// IDs that resolve to no feature in the input set.
	MissingDependencies map[string][]string

	// Blocked maps a feature ID to the subset of its existing
	// dependency IDs whose status is not yet completed or verified.
	// Features with no unsatisfied existing dependencies are absent.
	Blocked map[string][]string
}

// Resolve builds the dependency graph for the given snapshot and returns
// ordering plus cycle, missing-dependency, and blocked reports. The
// output is deterministic for a fixed input slice.
func Resolve(features []feature.Feature) Result {
	byID := make(map[string]int, len(features))
	for i, f := range features {
		byID[f.ID] = i
	}

	res := Result{
		MissingDependencies: make(map[string][]string),
		Blocked:             make(map[string][]string),
	}

	// existingDeps[i] holds indices of f's dependencies that resolve to
	// real features. Missing IDs are reported but never block or reorder.
	existingDeps := make([][]int, len(features))
	for i, f := range features {
		var missing []string
		var blocking []string
		for _, dep := range f.Dependencies {
			j, ok := byID[dep]
			if !ok {
				missing = append(missing, dep)
				continue
			}
			existingDeps[i] = append(existingDeps[i], j)
			if !features[j].Status.Done() {
				blocking = append(blocking, dep)
			}
		}
		if len(missing) > 0 {
			res.MissingDependencies[f.ID] = missing
		}
		if len(blocking) > 0 {
			res.Blocked[f.ID] = blocking
		}
	}

	res.Cycles = findCycles(features, existingDeps)
	res.Ordered = orderFeatures(features, existingDeps)
	return res
}

// AreDependenciesSatisfied reports whether every declared dependency of f
// resolves to an existing feature whose status is completed or verified.
// A dependency ID that resolves to nothing counts as unsatisfied.
func AreDependenciesSatisfied(f feature.Feature, all []feature.Feature) bool {
	byID := make(map[string]feature.Feature, len(all))
	for _, other := range all {
		byID[other.ID] = other
	}
	for _, dep := range f.Dependencies {
		other, ok := byID[dep]
		if !ok || !other.Status.Done() {
			return false
		}
	}
	return true
}

// BlockingDependencies returns the existing dependency IDs of f whose
// status is not completed or verified. Dependency IDs that resolve to no
// feature are omitted; AreDependenciesSatisfied still treats them as
// unsatisfied. That asymmetry is load-bearing for callers that render
// missing and blocking dependencies separately.
func BlockingDependencies(f feature.Feature, all []feature.Feature) []string {
	byID := make(map[string]feature.Feature, len(all))
	for _, other := range all {
		byID[other.ID] = other
	}
	var blocking []string
	for _, dep := range f.Dependencies {
		if other, ok := byID[dep]; ok && !other.Status.Done() {
			blocking = append(blocking, dep)
		}
	}
	return blocking
}

// orderFeatures is a priority-stable Kahn traversal. Each round places
// the ready feature (all existing dependencies already placed) with the
// lowest priority, ties broken by input position. Features that never
// become ready (cycle members and their downstream dependents) are
// appended afterwards in input order so the result stays deterministic
// and complete.
func orderFeatures(features []feature.Feature, existingDeps [][]int) []feature.Feature {
	n := len(features)
	placed := make([]bool, n)
	remaining := make([]int, n)
	for i, deps := range existingDeps {
		// Self-edges count too and are never decremented, so a
		// self-dependent feature stays in the cycle remainder.
		remaining[i] = len(deps)
	}

	ordered := make([]feature.Feature, 0, n)
	for len(ordered) < n {
		best := -1
		for i := range features {
			if placed[i] || remaining[i] > 0 {
				continue
			}
			if best == -1 || features[i].EffectivePriority() < features[best].EffectivePriority() {
				best = i
			}
		}
		if best == -1 {
			break
		}
		placed[best] = true
		ordered = append(ordered, features[best])
		for i, deps := range existingDeps {
			if placed[i] {
				continue
			}
			for _, j := range deps {
				if j == best {
					remaining[i]--
				}
			}
		}
	}

	// Whatever is left sits on a cycle (or behind one).
	for i := range features {
		if !placed[i] {
			ordered = append(ordered, features[i])
		}
	}
	return ordered
}

// Traversal colors for iterative cycle detection.
const (
	colorWhite = iota // not visited
	colorGray         // on the current traversal path
	colorBlack        // fully explored
)

// dfsFrame is one explicit-stack entry: a feature index and the next
// dependency edge to explore from it.
type dfsFrame struct {
	node int
	next int
}

// findCycles detects dependency cycles with an iterative depth-first
// traversal over explicit state. Feature graphs are user-authored, so
// recursion depth is adversarial; nothing here touches the call stack.
func findCycles(features []feature.Feature, existingDeps [][]int) [][]string {
	color := make([]int, len(features))
	var cycles [][]string

	for start := range features {
		if color[start] != colorWhite {
			continue
		}
		color[start] = colorGray
		stack := []dfsFrame{{node: start}}
		path := []int{start}

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			deps := existingDeps[top.node]
			if top.next >= len(deps) {
				color[top.node] = colorBlack
				stack = stack[:len(stack)-1]
				path = path[:len(path)-1]
				continue
			}
			dep := deps[top.next]
			top.next++

			switch color[dep] {
			case colorWhite:
				color[dep] = colorGray
				stack = append(stack, dfsFrame{node: dep})
				path = append(path, dep)
			case colorGray:
				// dep is on the current path: the cycle runs from its
				// position in the path through the top of the stack.
				for i := len(path) - 1; i >= 0; i-- {
					if path[i] != dep {
						continue
					}
					cycle := make([]string, 0, len(path)-i)
					for _, node := range path[i:] {
						cycle = append(cycle, features[node].ID)
					}
					cycles = append(cycles, cycle)
					break
				}
			}
		}
	}
	return cycles
}
