package workflow

import "testing"

func violationsOfKind(result ValidationResult, kind ViolationKind) []Violation {
	var out []Violation
	for _, v := range result {
		if v.Kind == kind {
			out = append(out, v)
		}
	}
	return out
}

func TestValidateGraph_EmptyGraph(t *testing.T) {
	result := ValidateGraph(Graph{})

	if result.Valid() {
		t.Fatal("empty graph should not be valid")
	}
	if len(violationsOfKind(result, ViolationEmptyGraph)) != 1 {
		t.Errorf("expected a single empty-graph violation, got %+v", result)
	}
}

func TestValidateGraph_UnknownStatusReference(t *testing.T) {
	tests := []struct {
		name  string
		graph Graph
		want  Status
	}{
		{
			name: "unknown transition target",
			graph: Graph{
				Statuses: []Status{StatusReceived, StatusCompleted},
				Transitions: TransitionTable{
					StatusCompleted: NewStatusSet(StatusReceived),
					StatusShipped:   NewStatusSet(StatusCompleted),
				},
			},
			want: StatusShipped,
		},
		{
			name: "unknown transition source",
			graph: Graph{
				Statuses: []Status{StatusReceived, StatusCompleted},
				Transitions: TransitionTable{
					StatusCompleted: NewStatusSet(StatusReceived, StatusInWIP),
				},
			},
			want: StatusInWIP,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateGraph(tt.graph)
			found := violationsOfKind(result, ViolationUnknownStatusReference)
			if len(found) != 1 {
				t.Fatalf("expected one unknown-status-reference violation, got %+v", result)
			}
			if found[0].Status != tt.want {
				t.Errorf("violation status = %v, want %v", found[0].Status, tt.want)
			}
		})
	}
}

func TestValidateGraph_OptionalNotInStatuses(t *testing.T) {
	// statuses:[A], optional:[B], transitions:{} yields exactly one
	// optional-not-in-statuses violation for B
	g := Graph{
		Statuses:         []Status{StatusReceived},
		OptionalStatuses: []Status{StatusOnHold},
		Transitions:      TransitionTable{},
	}

	result := ValidateGraph(g)
	found := violationsOfKind(result, ViolationOptionalNotInStatuses)
	if len(found) != 1 {
		t.Fatalf("expected one optional-not-in-statuses violation, got %+v", result)
	}
	if found[0].Status != StatusOnHold {
		t.Errorf("violation status = %v, want %v", found[0].Status, StatusOnHold)
	}
	if len(result) != 1 {
		t.Errorf("single-status graph should produce no other violations, got %+v", result)
	}
}

func TestValidateGraph_UnreachableStatus(t *testing.T) {
	// COMPLETED has no inbound transitions and is not the initial status
	g := Graph{
		Statuses: []Status{StatusReceived, StatusInWIP, StatusCompleted},
		Transitions: TransitionTable{
			StatusInWIP: NewStatusSet(StatusReceived),
		},
	}

	result := ValidateGraph(g)
	found := violationsOfKind(result, ViolationUnreachableStatus)
	if len(found) != 1 {
		t.Fatalf("expected one unreachable-status violation, got %+v", result)
	}
	if found[0].Status != StatusCompleted {
		t.Errorf("violation status = %v, want %v", found[0].Status, StatusCompleted)
	}
}

func TestValidateGraph_InitialMayHaveNoInbound(t *testing.T) {
	g := Graph{
		Statuses: []Status{StatusReceived, StatusCompleted},
		Transitions: TransitionTable{
			StatusCompleted: NewStatusSet(StatusReceived),
		},
	}

	if result := ValidateGraph(g); !result.Valid() {
		t.Errorf("initial status without inbound transitions should be fine, got %+v", result)
	}
}

func TestValidateGraph_NoReachableTerminal(t *testing.T) {
	// RECEIVED <-> IN_WIP with no exit: every reachable status has an
	// outgoing edge, so no terminal is reachable
	g := Graph{
		Statuses: []Status{StatusReceived, StatusInWIP},
		Transitions: TransitionTable{
			StatusInWIP:    NewStatusSet(StatusReceived),
			StatusReceived: NewStatusSet(StatusInWIP),
		},
	}

	result := ValidateGraph(g)
	if result.Valid() {
		t.Fatal("graph with no reachable terminal should not be valid")
	}
	if len(violationsOfKind(result, ViolationUnreachableStatus)) == 0 {
		t.Errorf("expected an unreachable-status violation, got %+v", result)
	}
}

func TestValidateGraph_CyclesWithExitAreValid(t *testing.T) {
	// hold loop plus a real exit to COMPLETED
	g := Graph{
		Statuses: []Status{StatusReceived, StatusInWIP, StatusOnHold, StatusCompleted},
		Transitions: TransitionTable{
			StatusInWIP:     NewStatusSet(StatusReceived, StatusOnHold),
			StatusOnHold:    NewStatusSet(StatusInWIP),
			StatusCompleted: NewStatusSet(StatusInWIP),
		},
	}

	if result := ValidateGraph(g); !result.Valid() {
		t.Errorf("cyclic graph with a reachable terminal should be valid, got %+v", result)
	}
}

func TestValidateGraph_CollectsMultipleViolations(t *testing.T) {
	g := Graph{
		Statuses:         []Status{StatusReceived, StatusCompleted},
		OptionalStatuses: []Status{StatusPacked},
		Transitions: TransitionTable{
			StatusCompleted: NewStatusSet(StatusReceived),
			StatusShipped:   NewStatusSet(StatusReceived),
		},
	}

	result := ValidateGraph(g)
	if len(violationsOfKind(result, ViolationUnknownStatusReference)) != 1 {
		t.Errorf("expected unknown-status-reference for SHIPPED, got %+v", result)
	}
	if len(violationsOfKind(result, ViolationOptionalNotInStatuses)) != 1 {
		t.Errorf("expected optional-not-in-statuses for PACKED, got %+v", result)
	}
}
