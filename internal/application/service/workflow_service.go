package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/plantline/opsconsole/internal/application/port"
	"github.com/plantline/opsconsole/internal/domain/event"
	"github.com/plantline/opsconsole/internal/domain/workflow"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// WorkflowConfigService owns the per-client workflow graph: loading with
// default inheritance, validated full-replace saves, template application
// and reset. Saves for the same client are serialized; callers wanting
// optimistic concurrency pass the version they last read.
type WorkflowConfigService interface {
	// LoadConfig returns the client override, or the global default graph
	// with IsDefault=true when no override exists
	LoadConfig(ctx context.Context, clientID string) (*workflow.WorkflowConfig, error)

	// SaveConfig validates then fully replaces the client graph,
	// incrementing the version. A non-nil expectedVersion enables
	// compare-and-swap: the save fails with ErrVersionConflict if the
	// stored version differs. Nil keeps last-write-wins.
	SaveConfig(ctx context.Context, clientID string, graph workflow.Graph, expectedVersion *int64) (*workflow.WorkflowConfig, error)

	// ResetToDefault deletes the override; idempotent
	ResetToDefault(ctx context.Context, clientID string) error

	// ApplyTemplate replaces the client graph with the named template's
	// graph in full. Destructive; confirmation is the caller's job.
	ApplyTemplate(ctx context.Context, clientID, templateID string) (*workflow.WorkflowConfig, error)

	// ListTemplates returns the template catalog
	ListTemplates(ctx context.Context) ([]*workflow.WorkflowTemplate, error)
}

type workflowConfigServiceImpl struct {
	configRepo   port.WorkflowConfigRepository
	templateRepo port.WorkflowTemplateRepository
	txManager    port.TransactionManager
	events       port.EventPublisher
	logger       Logger

	mu          sync.Mutex
	clientLocks map[string]*sync.Mutex
}

// NewWorkflowConfigService creates a new WorkflowConfigService. events may
// be nil when no audit stream is wired.
func NewWorkflowConfigService(
	configRepo port.WorkflowConfigRepository,
	templateRepo port.WorkflowTemplateRepository,
	txManager port.TransactionManager,
	events port.EventPublisher,
	logger Logger,
) WorkflowConfigService {
	return &workflowConfigServiceImpl{
		configRepo:   configRepo,
		templateRepo: templateRepo,
		txManager:    txManager,
		events:       events,
		logger:       logger,
		clientLocks:  make(map[string]*sync.Mutex),
	}
}

func (s *workflowConfigServiceImpl) publish(ctx context.Context, evt *event.Event) {
	if s.events != nil {
		s.events.Publish(ctx, evt)
	}
}

// clientLock returns the mutex serializing writes for one client
func (s *workflowConfigServiceImpl) clientLock(clientID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.clientLocks[clientID]
	if !ok {
		lock = &sync.Mutex{}
		s.clientLocks[clientID] = lock
	}
	return lock
}

// LoadConfig returns the client override or the inherited default
func (s *workflowConfigServiceImpl) LoadConfig(ctx context.Context, clientID string) (*workflow.WorkflowConfig, error) {
	config, err := s.configRepo.Get(ctx, clientID)
	if err != nil {
		s.logger.Error("Failed to load workflow config", "error", err, "client_id", clientID)
		return nil, err
	}
	if config == nil {
		return workflow.DefaultConfig(clientID), nil
	}
	return config, nil
}

// SaveConfig validates and fully replaces the client graph
func (s *workflowConfigServiceImpl) SaveConfig(ctx context.Context, clientID string, graph workflow.Graph, expectedVersion *int64) (*workflow.WorkflowConfig, error) {
	lock := s.clientLock(clientID)
	lock.Lock()
	defer lock.Unlock()

	return s.saveLocked(ctx, clientID, graph, expectedVersion)
}

// saveLocked performs the validate-then-replace save. Caller holds the
// client lock.
func (s *workflowConfigServiceImpl) saveLocked(ctx context.Context, clientID string, graph workflow.Graph, expectedVersion *int64) (*workflow.WorkflowConfig, error) {
	if violations := workflow.ValidateGraph(graph); !violations.Valid() {
		s.logger.Info("Workflow graph rejected",
			"client_id", clientID, "violations", len(violations))
		return nil, &workflow.InvalidGraphError{Violations: violations}
	}

	// read-check-write runs inside one storage transaction so the version
	// check and the replace commit together
	var config *workflow.WorkflowConfig
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		existing, err := s.configRepo.Get(txCtx, clientID)
		if err != nil {
			return err
		}

		var currentVersion int64
		createdAt := time.Now()
		if existing != nil {
			currentVersion = existing.Version
			createdAt = existing.CreatedAt
		}

		if expectedVersion != nil && *expectedVersion != currentVersion {
			return fmt.Errorf("%w: expected %d, stored %d",
				workflow.ErrVersionConflict, *expectedVersion, currentVersion)
		}

		config = &workflow.WorkflowConfig{
			ClientID:  clientID,
			Graph:     graph.Clone(),
			Version:   currentVersion + 1,
			IsDefault: false,
			CreatedAt: createdAt,
			UpdatedAt: time.Now(),
		}

		return s.configRepo.Upsert(txCtx, config)
	})
	if err != nil {
		if !errors.Is(err, workflow.ErrVersionConflict) {
			s.logger.Error("Failed to save workflow config", "error", err, "client_id", clientID)
		}
		return nil, err
	}

	s.publish(ctx, event.NewEvent(event.TypeConfigSaved, clientID, map[string]interface{}{
		"version": config.Version,
	}))

	s.logger.Info("Workflow config saved",
		"client_id", clientID, "version", config.Version)
	return config, nil
}

// ResetToDefault removes the client override
func (s *workflowConfigServiceImpl) ResetToDefault(ctx context.Context, clientID string) error {
	lock := s.clientLock(clientID)
	lock.Lock()
	defer lock.Unlock()

	if err := s.configRepo.Delete(ctx, clientID); err != nil {
		s.logger.Error("Failed to reset workflow config", "error", err, "client_id", clientID)
		return err
	}

	s.publish(ctx, event.NewEvent(event.TypeConfigReset, clientID, nil))

	s.logger.Info("Workflow config reset to default", "client_id", clientID)
	return nil
}

// ApplyTemplate copies the template graph onto the client config in full
func (s *workflowConfigServiceImpl) ApplyTemplate(ctx context.Context, clientID, templateID string) (*workflow.WorkflowConfig, error) {
	template, err := s.templateRepo.GetByID(ctx, templateID)
	if err != nil {
		s.logger.Error("Failed to load workflow template", "error", err, "template_id", templateID)
		return nil, err
	}
	if template == nil {
		return nil, fmt.Errorf("%w: %s", workflow.ErrTemplateNotFound, templateID)
	}

	lock := s.clientLock(clientID)
	lock.Lock()
	defer lock.Unlock()

	config, err := s.saveLocked(ctx, clientID, template.Graph, nil)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, event.NewEvent(event.TypeTemplateApplied, clientID, map[string]interface{}{
		"template_id": templateID,
		"version":     config.Version,
	}))

	s.logger.Info("Workflow template applied",
		"client_id", clientID, "template_id", templateID, "version", config.Version)
	return config, nil
}

// ListTemplates returns the template catalog
func (s *workflowConfigServiceImpl) ListTemplates(ctx context.Context) ([]*workflow.WorkflowTemplate, error) {
	templates, err := s.templateRepo.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list workflow templates", "error", err)
		return nil, err
	}
	return templates, nil
}
