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

// WorkflowTemplateRepository implements port.WorkflowTemplateRepository
type WorkflowTemplateRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewWorkflowTemplateRepository creates a new workflow template repository
func NewWorkflowTemplateRepository(db *sql.DB, logger *zap.Logger) port.WorkflowTemplateRepository {
	return &WorkflowTemplateRepository{
		db:     db,
		logger: logger,
	}
}

// GetByID retrieves a template by id, or nil when absent
func (r *WorkflowTemplateRepository) GetByID(ctx context.Context, id string) (*workflow.WorkflowTemplate, error) {
	query := `
		SELECT id, name, description, graph
		FROM workflow_templates
		WHERE id = ?
	`

	var template workflow.WorkflowTemplate
	var graph string

	err := r.getExecutor(ctx).QueryRowContext(ctx, query, id).Scan(
		&template.ID,
		&template.Name,
		&template.Description,
		&graph,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get workflow template", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get workflow template: %w", err)
	}

	if err := json.Unmarshal([]byte(graph), &template.Graph); err != nil {
		return nil, fmt.Errorf("failed to decode template graph: %w", err)
	}

	return &template, nil
}

// List returns the full template catalog ordered by name
func (r *WorkflowTemplateRepository) List(ctx context.Context) ([]*workflow.WorkflowTemplate, error) {
	query := `
		SELECT id, name, description, graph
		FROM workflow_templates
		ORDER BY name
	`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list workflow templates", zap.Error(err))
		return nil, fmt.Errorf("failed to list workflow templates: %w", err)
	}
	defer rows.Close()

	var templates []*workflow.WorkflowTemplate
	for rows.Next() {
		var template workflow.WorkflowTemplate
		var graph string

		if err := rows.Scan(&template.ID, &template.Name, &template.Description, &graph); err != nil {
			return nil, fmt.Errorf("failed to scan workflow template: %w", err)
		}
		if err := json.Unmarshal([]byte(graph), &template.Graph); err != nil {
			return nil, fmt.Errorf("failed to decode template graph: %w", err)
		}
		templates = append(templates, &template)
	}

	return templates, rows.Err()
}

// Upsert writes a template row; used by catalog seeding
func (r *WorkflowTemplateRepository) Upsert(ctx context.Context, template *workflow.WorkflowTemplate) error {
	graph, err := json.Marshal(template.Graph)
	if err != nil {
		return fmt.Errorf("failed to encode template graph: %w", err)
	}

	query := `
		INSERT INTO workflow_templates (id, name, description, graph)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			graph = excluded.graph
	`

	_, err = r.getExecutor(ctx).ExecContext(ctx, query,
		template.ID,
		template.Name,
		template.Description,
		string(graph),
	)
	if err != nil {
		r.logger.Error("Failed to upsert workflow template", zap.String("id", template.ID), zap.Error(err))
		return fmt.Errorf("failed to upsert workflow template: %w", err)
	}
	return nil
}

// getExecutor returns appropriate executor based on context
func (r *WorkflowTemplateRepository) getExecutor(ctx context.Context) executor {
	if tx := sqlite.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}

// Verify interface compliance
var _ port.WorkflowTemplateRepository = (*WorkflowTemplateRepository)(nil)
