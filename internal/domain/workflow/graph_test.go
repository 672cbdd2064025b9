package workflow

import "testing"

func TestStatus_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		status   Status
		expected bool
	}{
		{"valid status", StatusReceived, true},
		{"valid terminal", StatusClosed, true},
		{"invalid status", Status("NOT_A_STATUS"), false},
		{"empty status", Status(""), false},
		{"lowercase not valid", Status("received"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.IsValid(); got != tt.expected {
				t.Errorf("Status.IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		status   Status
		expected bool
	}{
		{StatusReceived, false},
		{StatusInWIP, false},
		{StatusCompleted, false},
		{StatusShipped, false},
		{StatusClosed, true},
		{StatusCancelled, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.IsTerminal(); got != tt.expected {
				t.Errorf("Status.IsTerminal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestClosureTrigger_IsValid(t *testing.T) {
	tests := []struct {
		trigger  ClosureTrigger
		expected bool
	}{
		{CloseAtShipment, true},
		{CloseAtClientReceipt, true},
		{CloseAtCompletion, true},
		{CloseManual, true},
		{ClosureTrigger("at_midnight"), false},
		{ClosureTrigger(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.trigger), func(t *testing.T) {
			if got := tt.trigger.IsValid(); got != tt.expected {
				t.Errorf("ClosureTrigger.IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestIsTransitionAllowed(t *testing.T) {
	g := Graph{
		Statuses: []Status{StatusReceived, StatusCompleted},
		Transitions: TransitionTable{
			StatusCompleted: NewStatusSet(StatusReceived),
		},
		ClosureTrigger: CloseAtCompletion,
	}

	tests := []struct {
		name     string
		from     Status
		to       Status
		expected bool
	}{
		{"allowed edge", StatusReceived, StatusCompleted, true},
		{"reverse edge not allowed", StatusCompleted, StatusReceived, false},
		{"unknown target", StatusReceived, StatusShipped, false},
		{"unknown source", StatusShipped, StatusCompleted, false},
		{"self transition not allowed", StatusCompleted, StatusCompleted, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransitionAllowed(g, tt.from, tt.to); got != tt.expected {
				t.Errorf("IsTransitionAllowed(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.expected)
			}
		})
	}
}

func TestIsTransitionAllowed_BidirectionalEdges(t *testing.T) {
	// ON_HOLD commonly has edges both ways; the table must support cycles
	g := Graph{
		Statuses: []Status{StatusReceived, StatusInWIP, StatusOnHold, StatusCompleted},
		Transitions: TransitionTable{
			StatusInWIP:     NewStatusSet(StatusReceived, StatusOnHold),
			StatusOnHold:    NewStatusSet(StatusInWIP),
			StatusCompleted: NewStatusSet(StatusInWIP),
		},
	}

	if !IsTransitionAllowed(g, StatusInWIP, StatusOnHold) {
		t.Error("IN_WIP -> ON_HOLD should be allowed")
	}
	if !IsTransitionAllowed(g, StatusOnHold, StatusInWIP) {
		t.Error("ON_HOLD -> IN_WIP should be allowed")
	}
}

func TestGraph_Clone(t *testing.T) {
	original := DefaultGraph()
	copied := original.Clone()

	copied.Statuses[0] = StatusCancelled
	copied.Transitions[StatusInWIP][StatusCancelled] = true
	copied.OptionalStatuses = append(copied.OptionalStatuses[:0], StatusClosed)

	if original.Statuses[0] != StatusReceived {
		t.Error("Clone() should not share the statuses slice")
	}
	if original.Transitions[StatusInWIP].Contains(StatusCancelled) {
		t.Error("Clone() should not share transition sets")
	}
	if original.OptionalStatuses[0] == StatusClosed {
		t.Error("Clone() should not share the optional statuses slice")
	}
}

func TestGraph_InitialStatus(t *testing.T) {
	g := DefaultGraph()
	if got := g.InitialStatus(); got != StatusReceived {
		t.Errorf("InitialStatus() = %v, want %v", got, StatusReceived)
	}

	empty := Graph{}
	if got := empty.InitialStatus(); got != Status("") {
		t.Errorf("InitialStatus() on empty graph = %v, want empty", got)
	}
}

func TestDefaultGraph_IsValid(t *testing.T) {
	if result := ValidateGraph(DefaultGraph()); !result.Valid() {
		t.Errorf("DefaultGraph() should validate cleanly, got %+v", result)
	}
}

func TestBuiltinTemplates_AreValid(t *testing.T) {
	for _, tmpl := range BuiltinTemplates() {
		t.Run(tmpl.ID, func(t *testing.T) {
			if result := ValidateGraph(tmpl.Graph); !result.Valid() {
				t.Errorf("template %s should validate cleanly, got %+v", tmpl.ID, result)
			}
		})
	}
}
