package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/plantline/opsconsole/internal/application/port"
	"github.com/plantline/opsconsole/internal/domain/workflow"
	"github.com/plantline/opsconsole/internal/infrastructure/persistence/sqlite"
)

// WorkflowConfigRepository implements port.WorkflowConfigRepository
type WorkflowConfigRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewWorkflowConfigRepository creates a new workflow config repository
func NewWorkflowConfigRepository(db *sql.DB, logger *zap.Logger) port.WorkflowConfigRepository {
	return &WorkflowConfigRepository{
		db:     db,
		logger: logger,
	}
}

// Get retrieves a client's workflow override, or nil when absent
func (r *WorkflowConfigRepository) Get(ctx context.Context, clientID string) (*workflow.WorkflowConfig, error) {
	query := `
		SELECT client_id, statuses, optional_statuses, transitions,
			closure_trigger, version, created_at, updated_at
		FROM client_workflow_configs
		WHERE client_id = ?
	`

	var config workflow.WorkflowConfig
	var statuses, optionalStatuses, transitions string
	var closureTrigger string

	err := r.getExecutor(ctx).QueryRowContext(ctx, query, clientID).Scan(
		&config.ClientID,
		&statuses,
		&optionalStatuses,
		&transitions,
		&closureTrigger,
		&config.Version,
		&config.CreatedAt,
		&config.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get workflow config", zap.String("client_id", clientID), zap.Error(err))
		return nil, fmt.Errorf("failed to get workflow config: %w", err)
	}

	if err := json.Unmarshal([]byte(statuses), &config.Graph.Statuses); err != nil {
		return nil, fmt.Errorf("failed to decode statuses: %w", err)
	}
	if err := json.Unmarshal([]byte(optionalStatuses), &config.Graph.OptionalStatuses); err != nil {
		return nil, fmt.Errorf("failed to decode optional statuses: %w", err)
	}
	if err := json.Unmarshal([]byte(transitions), &config.Graph.Transitions); err != nil {
		return nil, fmt.Errorf("failed to decode transitions: %w", err)
	}
	config.Graph.ClosureTrigger = workflow.ClosureTrigger(closureTrigger)
	config.IsDefault = false

	return &config, nil
}

// Upsert writes the full config, replacing any prior row
func (r *WorkflowConfigRepository) Upsert(ctx context.Context, config *workflow.WorkflowConfig) error {
	statuses, err := json.Marshal(config.Graph.Statuses)
	if err != nil {
		return fmt.Errorf("failed to encode statuses: %w", err)
	}
	optionalStatuses, err := json.Marshal(config.Graph.OptionalStatuses)
	if err != nil {
		return fmt.Errorf("failed to encode optional statuses: %w", err)
	}
	transitions, err := json.Marshal(config.Graph.Transitions)
	if err != nil {
		return fmt.Errorf("failed to encode transitions: %w", err)
	}

	query := `
		INSERT INTO client_workflow_configs (
			client_id, statuses, optional_statuses, transitions,
			closure_trigger, version, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(client_id) DO UPDATE SET
			statuses = excluded.statuses,
			optional_statuses = excluded.optional_statuses,
			transitions = excluded.transitions,
			closure_trigger = excluded.closure_trigger,
			version = excluded.version,
			updated_at = excluded.updated_at
	`

	_, err = r.getExecutor(ctx).ExecContext(ctx, query,
		config.ClientID,
		string(statuses),
		string(optionalStatuses),
		string(transitions),
		config.Graph.ClosureTrigger.String(),
		config.Version,
		config.CreatedAt,
		config.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to upsert workflow config", zap.String("client_id", config.ClientID), zap.Error(err))
		return fmt.Errorf("failed to upsert workflow config: %w", err)
	}

	return nil
}

// Delete removes the override; missing rows are not an error
func (r *WorkflowConfigRepository) Delete(ctx context.Context, clientID string) error {
	query := `DELETE FROM client_workflow_configs WHERE client_id = ?`

	_, err := r.getExecutor(ctx).ExecContext(ctx, query, clientID)
	if err != nil {
		r.logger.Error("Failed to delete workflow config", zap.String("client_id", clientID), zap.Error(err))
		return fmt.Errorf("failed to delete workflow config: %w", err)
	}
	return nil
}

// getExecutor returns appropriate executor based on context
func (r *WorkflowConfigRepository) getExecutor(ctx context.Context) executor {
	if tx := sqlite.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}

// executor interface covers both *sql.DB and *sql.Tx
type executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Verify interface compliance
var _ port.WorkflowConfigRepository = (*WorkflowConfigRepository)(nil)
