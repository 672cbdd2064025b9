package workflow

import "fmt"

// ViolationKind classifies a graph invariant violation
type ViolationKind string

const (
	ViolationUnknownStatusReference ViolationKind = "unknown-status-reference"
	ViolationOptionalNotInStatuses  ViolationKind = "optional-not-in-statuses"
	ViolationUnreachableStatus      ViolationKind = "unreachable-status"
	ViolationEmptyGraph             ViolationKind = "empty-graph"
)

// Violation describes one failed graph invariant
type Violation struct {
	Kind   ViolationKind `json:"kind"`
	Status Status        `json:"status,omitempty"`
	Detail string        `json:"detail"`
}

// ValidationResult is the list of violations found in a graph. An empty
// result means the graph satisfies every invariant.
type ValidationResult []Violation

// Valid returns true if no violations were found
func (r ValidationResult) Valid() bool {
	return len(r) == 0
}

// ValidateGraph checks the graph invariants and returns every violation
// found. It never fails; callers decide whether violations block a save.
//
// Invariants checked:
//   - every status referenced by the transition table is a pipeline member
//   - optional statuses are a subset of the pipeline
//   - every non-initial status is reachable, and at least one terminal
//     status is reachable from the initial status
//   - the pipeline is not empty
func ValidateGraph(g Graph) ValidationResult {
	var result ValidationResult

	if len(g.Statuses) == 0 {
		result = append(result, Violation{
			Kind:   ViolationEmptyGraph,
			Detail: "workflow has no statuses",
		})
		return result
	}

	members := NewStatusSet(g.Statuses...)

	for target, sources := range g.Transitions {
		if !members.Contains(target) {
			result = append(result, Violation{
				Kind:   ViolationUnknownStatusReference,
				Status: target,
				Detail: fmt.Sprintf("transition target %s is not a workflow status", target),
			})
		}
		for source := range sources {
			if !members.Contains(source) {
				result = append(result, Violation{
					Kind:   ViolationUnknownStatusReference,
					Status: source,
					Detail: fmt.Sprintf("transition source %s (into %s) is not a workflow status", source, target),
				})
			}
		}
	}

	for _, optional := range g.OptionalStatuses {
		if !members.Contains(optional) {
			result = append(result, Violation{
				Kind:   ViolationOptionalNotInStatuses,
				Status: optional,
				Detail: fmt.Sprintf("optional status %s is not a workflow status", optional),
			})
		}
	}

	initial := g.InitialStatus()

	// A status with no entry (or an empty source set) cannot be entered.
	// Only the initial status is allowed to be unenterable by design.
	for _, status := range g.Statuses {
		if status == initial {
			continue
		}
		if len(g.Transitions[status]) == 0 {
			result = append(result, Violation{
				Kind:   ViolationUnreachableStatus,
				Status: status,
				Detail: fmt.Sprintf("status %s has no inbound transitions", status),
			})
		}
	}

	if !hasReachableTerminal(g, members) {
		result = append(result, Violation{
			Kind:   ViolationUnreachableStatus,
			Status: initial,
			Detail: "no terminal status is reachable from the initial status",
		})
	}

	return result
}

// hasReachableTerminal walks the graph forward from the initial status and
// reports whether any reachable status has no outgoing edges. Cycles
// (ON_HOLD style back-edges) are fine as long as some exit exists.
func hasReachableTerminal(g Graph, members StatusSet) bool {
	// forward adjacency: source -> targets
	outgoing := make(map[Status][]Status)
	for target, sources := range g.Transitions {
		for source := range sources {
			outgoing[source] = append(outgoing[source], target)
		}
	}

	visited := make(StatusSet)
	queue := []Status{g.InitialStatus()}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited.Contains(current) || !members.Contains(current) {
			continue
		}
		visited[current] = true

		if len(outgoing[current]) == 0 {
			return true
		}
		queue = append(queue, outgoing[current]...)
	}
	return false
}
