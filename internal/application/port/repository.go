// Package port defines the persistence interfaces the application layer
// depends on. Implementations live under internal/infrastructure.
package port

import (
	"context"

	"github.com/plantline/opsconsole/internal/domain/shift"
	"github.com/plantline/opsconsole/internal/domain/workflow"
)

// WorkflowConfigRepository persists per-client workflow overrides. The
// graph is the unit of persistence: saves are always full replacements.
type WorkflowConfigRepository interface {
	// Get returns the client's override, or nil when the client has none
	Get(ctx context.Context, clientID string) (*workflow.WorkflowConfig, error)

	// Upsert writes the full config, replacing any prior row
	Upsert(ctx context.Context, config *workflow.WorkflowConfig) error

	// Delete removes the override; deleting a missing row is not an error
	Delete(ctx context.Context, clientID string) error
}

// WorkflowTemplateRepository reads the immutable template catalog
type WorkflowTemplateRepository interface {
	GetByID(ctx context.Context, id string) (*workflow.WorkflowTemplate, error)
	List(ctx context.Context) ([]*workflow.WorkflowTemplate, error)

	// Upsert exists for catalog seeding only
	Upsert(ctx context.Context, template *workflow.WorkflowTemplate) error
}

// ShiftRepository persists closed-shift records with their full accumulator
type ShiftRepository interface {
	SaveClosed(ctx context.Context, record *shift.ClosedShift) error
	ListClosed(ctx context.Context, limit, offset int) ([]*shift.ClosedShift, error)
}

// TransactionManager executes a function within a storage transaction
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
