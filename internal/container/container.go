package container

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/plantline/opsconsole/internal/application/dispatcher"
	"github.com/plantline/opsconsole/internal/application/port"
	"github.com/plantline/opsconsole/internal/application/service"
	"github.com/plantline/opsconsole/internal/config"
	"github.com/plantline/opsconsole/internal/domain/event"
	"github.com/plantline/opsconsole/internal/infrastructure/persistence/repository"
	"github.com/plantline/opsconsole/internal/infrastructure/persistence/sqlite"
	httpiface "github.com/plantline/opsconsole/internal/interfaces/http"
	"github.com/plantline/opsconsole/internal/report"
	"github.com/plantline/opsconsole/pkg/database"
)

// Container manages all application dependencies and lifecycle.
// Components are initialized in dependency order and torn down in reverse.
type Container struct {
	config *config.Config
	logger *zap.Logger

	// Infrastructure
	db           *database.DB
	txManager    *sqlite.DB
	repositories *RepositoryBundle
	reportWriter *report.CloseoutReportWriter

	// Application
	dispatcher dispatcher.Dispatcher
	services   *ServiceBundle

	// Interfaces
	httpServer *httpiface.Server

	// Lifecycle
	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	ready  atomic.Bool
	closed atomic.Bool
}

// RepositoryBundle groups all repositories for convenient access.
type RepositoryBundle struct {
	WorkflowConfig   port.WorkflowConfigRepository
	WorkflowTemplate port.WorkflowTemplateRepository
	Shift            port.ShiftRepository
}

// ServiceBundle groups all application services.
type ServiceBundle struct {
	WorkflowConfig service.WorkflowConfigService
	Shift          service.ShiftService
}

// HealthStatus represents the health of all components.
type HealthStatus struct {
	Overall    bool                       `json:"overall"`
	Components map[string]ComponentHealth `json:"components"`
}

// ComponentHealth represents health of a single component.
type ComponentHealth struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// NewContainer creates a new container from configuration.
// It does not initialize components - call Start() to initialize.
func NewContainer(cfg *config.Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Container{
		config: cfg,
		logger: logger,
	}, nil
}

// Start initializes all components and begins serving.
// Components are initialized in dependency order:
// 1. Database, migrations and repositories
// 2. Report writer
// 3. Application services
// 4. HTTP server
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container has been closed")
	}
	if c.ready.Load() {
		return fmt.Errorf("container already started")
	}

	c.ctx, c.cancel = context.WithCancel(ctx)
	c.logger.Info("Starting container initialization")

	if err := c.initDatabase(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	c.logger.Info("Database initialized")

	if err := c.initReportWriter(); err != nil {
		return fmt.Errorf("failed to initialize report writer: %w", err)
	}
	c.logger.Info("Report writer initialized")

	c.initDispatcher()
	c.logger.Info("Event dispatcher initialized")

	c.initServices()
	c.logger.Info("Application services initialized")

	if err := c.initHTTPServer(); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	c.logger.Info("HTTP server started")

	c.ready.Store(true)
	c.logger.Info("Container started successfully")

	return nil
}

// Close gracefully shuts down all components in reverse order.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container already closed")
	}

	c.logger.Info("Closing container")

	var errs []error

	if c.cancel != nil {
		c.cancel()
	}

	if c.httpServer != nil {
		if err := c.httpServer.Stop(); err != nil {
			c.logger.Error("Failed to stop HTTP server", zap.Error(err))
			errs = append(errs, fmt.Errorf("stop http server: %w", err))
		} else {
			c.logger.Info("HTTP server stopped")
		}
	}

	if c.dispatcher != nil {
		if err := c.dispatcher.Close(); err != nil {
			c.logger.Error("Failed to close dispatcher", zap.Error(err))
			errs = append(errs, fmt.Errorf("close dispatcher: %w", err))
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			c.logger.Error("Failed to close database", zap.Error(err))
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}

	c.closed.Store(true)
	c.ready.Store(false)

	if len(errs) > 0 {
		return fmt.Errorf("container closed with %d errors", len(errs))
	}

	c.logger.Info("Container closed successfully")
	return nil
}

// Ready returns true when all components are initialized.
func (c *Container) Ready() bool {
	return c.ready.Load()
}

// healthFunc adapts Health to the health endpoint. A container that has
// not finished Start (or has been closed) reports unhealthy regardless of
// component state.
func (c *Container) healthFunc() httpiface.HealthFunc {
	return func() (bool, interface{}) {
		status := c.Health()
		return c.Ready() && status.Overall, status.Components
	}
}

// Health returns health status of all components.
func (c *Container) Health() *HealthStatus {
	status := &HealthStatus{
		Overall:    true,
		Components: make(map[string]ComponentHealth),
	}

	if c.db != nil {
		if err := c.db.Ping(); err != nil {
			status.Components["database"] = ComponentHealth{
				Healthy: false,
				Message: fmt.Sprintf("ping failed: %v", err),
			}
			status.Overall = false
		} else {
			status.Components["database"] = ComponentHealth{Healthy: true}
		}
	} else {
		status.Components["database"] = ComponentHealth{Healthy: false, Message: "not initialized"}
		status.Overall = false
	}

	if c.httpServer != nil {
		status.Components["http"] = ComponentHealth{
			Healthy: true,
			Message: c.httpServer.Address(),
		}
	} else {
		status.Components["http"] = ComponentHealth{Healthy: false, Message: "not initialized"}
		status.Overall = false
	}

	return status
}

// initDatabase opens the database, runs migrations and builds repositories.
func (c *Container) initDatabase() error {
	db, err := database.New(database.Config{
		Path:            c.config.Database.Path,
		MaxOpenConns:    c.config.Database.MaxOpenConns,
		MaxIdleConns:    c.config.Database.MaxIdleConns,
		ConnMaxLifetime: c.config.Database.ConnMaxLifetime,
	}, c.logger)
	if err != nil {
		return err
	}

	migrator := database.NewMigrator(db, c.logger)
	if err := migrator.RunMigrations(c.config.Database.MigrationsDir); err != nil {
		db.Close()
		return err
	}

	c.db = db
	c.txManager = sqlite.NewDB(db.DB, c.logger)
	c.repositories = &RepositoryBundle{
		WorkflowConfig:   repository.NewWorkflowConfigRepository(db.DB, c.logger),
		WorkflowTemplate: repository.NewWorkflowTemplateRepository(db.DB, c.logger),
		Shift:            repository.NewShiftRepository(db.DB, c.logger),
	}
	return nil
}

func (c *Container) initReportWriter() error {
	writer, err := report.NewCloseoutReportWriter(
		c.config.Report.OutputDir,
		c.config.Report.PlantName,
		c.logger,
	)
	if err != nil {
		return err
	}
	c.reportWriter = writer
	return nil
}

// initDispatcher builds the audit event stream with a logging subscriber
// for every event type.
func (c *Container) initDispatcher() {
	d := dispatcher.NewDispatcher(&zapLoggerAdapter{logger: c.logger})

	auditLog := func(ctx context.Context, evt *event.Event) error {
		c.logger.Info("Audit event",
			zap.String("event_type", evt.Type.String()),
			zap.String("subject", evt.Subject),
			zap.Any("payload", evt.Payload))
		return nil
	}
	for _, typ := range []event.Type{
		event.TypeConfigSaved, event.TypeConfigReset, event.TypeTemplateApplied,
		event.TypeShiftStarted, event.TypeStepConfirmed, event.TypeStepReopened,
		event.TypeShiftEnded,
	} {
		d.SubscribeNamed(typ, "audit-log", auditLog)
	}

	c.dispatcher = d
}

func (c *Container) initServices() {
	serviceLogger := &zapLoggerAdapter{logger: c.logger}
	publisher := &dispatcherPublisher{dispatcher: c.dispatcher}

	c.services = &ServiceBundle{
		WorkflowConfig: service.NewWorkflowConfigService(
			c.repositories.WorkflowConfig,
			c.repositories.WorkflowTemplate,
			c.txManager,
			publisher,
			serviceLogger,
		),
		Shift: service.NewShiftService(
			c.repositories.Shift,
			c.reportWriter,
			publisher,
			c.config.Shift.MinAttendanceRatio,
			serviceLogger,
		),
	}
}

// dispatcherPublisher adapts the dispatcher to the fire-and-forget
// EventPublisher port.
type dispatcherPublisher struct {
	dispatcher dispatcher.Dispatcher
}

var _ port.EventPublisher = (*dispatcherPublisher)(nil)

func (p *dispatcherPublisher) Publish(ctx context.Context, evt *event.Event) {
	p.dispatcher.DispatchAsync(ctx, evt)
}

func (c *Container) initHTTPServer() error {
	c.httpServer = httpiface.NewServer(
		httpiface.ServerConfig{
			Host:         c.config.Server.Host,
			Port:         c.config.Server.Port,
			ReadTimeout:  c.config.Server.ReadTimeout,
			WriteTimeout: c.config.Server.WriteTimeout,
		},
		c.services.WorkflowConfig,
		c.services.Shift,
		c.healthFunc(),
		&zapLoggerAdapter{logger: c.logger},
	)

	// Start blocks until the context is cancelled, so it runs in its own
	// goroutine; startup failures surface through the logger
	go func() {
		if err := c.httpServer.Start(c.ctx); err != nil {
			c.logger.Error("HTTP server exited", zap.Error(err))
		}
	}()
	return nil
}

// zapLoggerAdapter adapts zap.Logger to the narrow Logger interfaces the
// service and interface layers declare.
type zapLoggerAdapter struct {
	logger *zap.Logger
}

func (a *zapLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Sugar().Infow(msg, keysAndValues...)
}

func (a *zapLoggerAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.logger.Sugar().Errorw(msg, keysAndValues...)
}
