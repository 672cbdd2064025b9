package workflow

import (
	"encoding/json"
	"sort"
	"time"
)

// StatusSet is a set of statuses, used for a transition entry's allowed sources
type StatusSet map[Status]bool

// NewStatusSet creates a set from the given statuses
func NewStatusSet(statuses ...Status) StatusSet {
	set := make(StatusSet, len(statuses))
	for _, s := range statuses {
		set[s] = true
	}
	return set
}

// Contains returns true if the status is a member of the set
func (s StatusSet) Contains(status Status) bool {
	return s[status]
}

// Clone returns an independent copy of the set
func (s StatusSet) Clone() StatusSet {
	out := make(StatusSet, len(s))
	for status := range s {
		out[status] = true
	}
	return out
}

// MarshalJSON encodes the set as a sorted array of statuses; that is the
// wire and storage format for transition sources
func (s StatusSet) MarshalJSON() ([]byte, error) {
	statuses := make([]string, 0, len(s))
	for status := range s {
		statuses = append(statuses, string(status))
	}
	sort.Strings(statuses)
	return json.Marshal(statuses)
}

// UnmarshalJSON decodes an array of statuses into the set
func (s *StatusSet) UnmarshalJSON(data []byte) error {
	var statuses []Status
	if err := json.Unmarshal(data, &statuses); err != nil {
		return err
	}
	*s = NewStatusSet(statuses...)
	return nil
}

// TransitionTable maps a target status to the set of source statuses from
// which it may legally be entered. This is the only enforcement structure:
// a work order may enter status X only from one of table[X].
type TransitionTable map[Status]StatusSet

// Clone returns an independent deep copy of the table
func (t TransitionTable) Clone() TransitionTable {
	out := make(TransitionTable, len(t))
	for target, sources := range t {
		out[target] = sources.Clone()
	}
	return out
}

// Graph holds the four editable fields of a client workflow: the ordered
// status pipeline, the skippable subset, the transition table and the
// closure policy. Statuses order is display/default-progression order only;
// the transition table is the sole enforcement mechanism.
type Graph struct {
	Statuses         []Status        `json:"workflow_statuses"`
	OptionalStatuses []Status        `json:"workflow_optional_statuses"`
	Transitions      TransitionTable `json:"workflow_transitions"`
	ClosureTrigger   ClosureTrigger  `json:"workflow_closure_trigger"`
}

// Clone returns an independent deep copy of the graph
func (g Graph) Clone() Graph {
	return Graph{
		Statuses:         append([]Status(nil), g.Statuses...),
		OptionalStatuses: append([]Status(nil), g.OptionalStatuses...),
		Transitions:      g.Transitions.Clone(),
		ClosureTrigger:   g.ClosureTrigger,
	}
}

// InitialStatus returns the first status of the pipeline, or "" for an empty graph
func (g Graph) InitialStatus() Status {
	if len(g.Statuses) == 0 {
		return ""
	}
	return g.Statuses[0]
}

// HasStatus returns true if the status is part of the active pipeline
func (g Graph) HasStatus(status Status) bool {
	for _, s := range g.Statuses {
		if s == status {
			return true
		}
	}
	return false
}

// IsTransitionAllowed is the single authoritative guard for work-order status
// changes: to must have a transition entry and from must be one of its
// allowed sources. Collaborators must call this before committing any
// status mutation.
func IsTransitionAllowed(g Graph, from, to Status) bool {
	sources, ok := g.Transitions[to]
	if !ok {
		return false
	}
	return sources.Contains(from)
}

// WorkflowConfig is a client's versioned workflow graph. IsDefault is true
// when the client has no override row and logically inherits the global
// default graph.
type WorkflowConfig struct {
	ClientID  string    `json:"client_id"`
	Graph     Graph     `json:"graph"`
	Version   int64     `json:"workflow_version"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultGraph returns the global default pipeline applied to clients
// without an override: the full catalog in order, with hold/rework legs
// and a shipment-driven closure.
func DefaultGraph() Graph {
	return Graph{
		Statuses: []Status{
			StatusReceived,
			StatusInspected,
			StatusInWIP,
			StatusOnHold,
			StatusRework,
			StatusCompleted,
			StatusPacked,
			StatusShipped,
			StatusDelivered,
			StatusClosed,
			StatusCancelled,
		},
		OptionalStatuses: []Status{
			StatusInspected,
			StatusOnHold,
			StatusRework,
			StatusPacked,
		},
		Transitions: TransitionTable{
			StatusInspected: NewStatusSet(StatusReceived),
			StatusInWIP:     NewStatusSet(StatusReceived, StatusInspected, StatusOnHold, StatusRework),
			StatusOnHold:    NewStatusSet(StatusInWIP, StatusInspected),
			StatusRework:    NewStatusSet(StatusInWIP, StatusCompleted),
			StatusCompleted: NewStatusSet(StatusInWIP),
			StatusPacked:    NewStatusSet(StatusCompleted),
			StatusShipped:   NewStatusSet(StatusCompleted, StatusPacked),
			StatusDelivered: NewStatusSet(StatusShipped),
			StatusClosed:    NewStatusSet(StatusShipped, StatusDelivered),
			StatusCancelled: NewStatusSet(StatusReceived, StatusInspected, StatusInWIP, StatusOnHold),
		},
		ClosureTrigger: CloseAtShipment,
	}
}

// DefaultConfig returns the config a client without an override inherits
func DefaultConfig(clientID string) *WorkflowConfig {
	return &WorkflowConfig{
		ClientID:  clientID,
		Graph:     DefaultGraph(),
		Version:   0,
		IsDefault: true,
	}
}
