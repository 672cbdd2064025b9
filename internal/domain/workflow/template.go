package workflow

// WorkflowTemplate is an immutable named preset of a workflow graph.
// Templates are a read-only catalog; applying one copies its graph fields
// onto a client config in full.
type WorkflowTemplate struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Graph       Graph  `json:"graph"`
}

// BuiltinTemplates returns the preset catalog seeded into a fresh store.
func BuiltinTemplates() []WorkflowTemplate {
	return []WorkflowTemplate{
		{
			ID:          "standard",
			Name:        "Standard pipeline",
			Description: "Full receive-to-close pipeline with inspection, hold and rework legs",
			Graph:       DefaultGraph(),
		},
		{
			ID:          "express",
			Name:        "Express pipeline",
			Description: "Minimal pipeline for clients that only track production and shipment",
			Graph: Graph{
				Statuses: []Status{
					StatusReceived,
					StatusInWIP,
					StatusCompleted,
					StatusShipped,
					StatusClosed,
				},
				OptionalStatuses: []Status{},
				Transitions: TransitionTable{
					StatusInWIP:     NewStatusSet(StatusReceived),
					StatusCompleted: NewStatusSet(StatusInWIP),
					StatusShipped:   NewStatusSet(StatusCompleted),
					StatusClosed:    NewStatusSet(StatusShipped),
				},
				ClosureTrigger: CloseAtShipment,
			},
		},
		{
			ID:          "consignment",
			Name:        "Consignment pipeline",
			Description: "Closure deferred until the client confirms receipt",
			Graph: Graph{
				Statuses: []Status{
					StatusReceived,
					StatusInWIP,
					StatusCompleted,
					StatusPacked,
					StatusShipped,
					StatusDelivered,
					StatusClosed,
					StatusCancelled,
				},
				OptionalStatuses: []Status{StatusPacked},
				Transitions: TransitionTable{
					StatusInWIP:     NewStatusSet(StatusReceived),
					StatusCompleted: NewStatusSet(StatusInWIP),
					StatusPacked:    NewStatusSet(StatusCompleted),
					StatusShipped:   NewStatusSet(StatusCompleted, StatusPacked),
					StatusDelivered: NewStatusSet(StatusShipped),
					StatusClosed:    NewStatusSet(StatusDelivered),
					StatusCancelled: NewStatusSet(StatusReceived, StatusInWIP),
				},
				ClosureTrigger: CloseAtClientReceipt,
			},
		},
	}
}
