package container

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/shiftwise/shiftwise-backend/internal/application/dispatcher"
	"github.com/shiftwise/shiftwise-backend/internal/application/port"
	"github.com/shiftwise/shiftwise-backend/internal/application/service"
	appwf "github.com/shiftwise/shiftwise-backend/internal/application/workflow"
	"github.com/shiftwise/shiftwise-backend/internal/domain/entity"
	"github.com/shiftwise/shiftwise-backend/internal/domain/event"
	"github.com/shiftwise/shiftwise-backend/internal/infrastructure/external/openai"
	"github.com/shiftwise/shiftwise-backend/internal/infrastructure/external/push"
	"github.com/shiftwise/shiftwise-backend/internal/infrastructure/persistence/repository"
	"github.com/shiftwise/shiftwise-backend/internal/infrastructure/persistence/sqlite"
	"github.com/shiftwise/shiftwise-backend/internal/infrastructure/worker"
	"github.com/shiftwise/shiftwise-backend/pkg/database"
	"go.uber.org/zap"
)

// Container manages all application dependencies and lifecycle.
// Components are initialized in dependency order and torn down in reverse.
type Container struct {
	config *Config
	logger *zap.Logger

	// Infrastructure - Data
	sqlDB        *database.DB
	db           *sqlite.DB
	repositories *RepositoryBundle

	// Infrastructure - External
	pushSender port.PushSender
	suggester  port.ReplacementSuggester

	// Application
	dispatcher dispatcher.Dispatcher
	workflow   appwf.Engine
	services   *ServiceBundle

	// Workers
	workers *worker.Manager

	// Lifecycle
	mu     sync.RWMutex
	ctx    context.Context
	cancel context.CancelFunc
	ready  atomic.Bool
	closed atomic.Bool
}

// RepositoryBundle groups all repositories for convenient access.
type RepositoryBundle struct {
	Petition     port.PetitionRepository
	History      port.HistoryRepository
	Substitution port.SubstitutionRepository
	Group        port.GroupRepository
	User         port.UserRepository
	Notification port.NotificationRepository
	Outbox       port.OutboxRepository
}

// ServiceBundle groups all application services.
type ServiceBundle struct {
	Petition     service.PetitionService
	Substitution service.SubstitutionService
	Group        service.GroupService
	User         service.UserService
	Notification service.NotificationService
	Suggestion   service.SuggestionService
	Metrics      service.MetricsService
	Export       service.ExportService
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
func NewContainer(cfg *Config, logger *zap.Logger) (*Container, error) {
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

// Start initializes all components and begins processing.
// Components are initialized in dependency order:
// 1. Database, migrations and repositories
// 2. External clients (push delivery, OpenAI suggester)
// 3. Event dispatcher and workflow engine
// 4. Application services
// 5. Workers
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

	if err := c.initExternalClients(); err != nil {
		return fmt.Errorf("failed to initialize external clients: %w", err)
	}
	c.logger.Info("External clients initialized")

	if err := c.initDispatcherAndWorkflow(); err != nil {
		return fmt.Errorf("failed to initialize dispatcher and workflow: %w", err)
	}
	c.logger.Info("Dispatcher and workflow engine initialized")

	if err := c.initServices(); err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	c.logger.Info("Application services initialized")

	if err := c.initWorkers(); err != nil {
		return fmt.Errorf("failed to initialize workers: %w", err)
	}
	c.logger.Info("Workers initialized and started")

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

	if c.workers != nil {
		if err := c.workers.StopAll(); err != nil {
			c.logger.Error("Failed to stop workers", zap.Error(err))
			errs = append(errs, fmt.Errorf("stop workers: %w", err))
		} else {
			c.logger.Info("Workers stopped")
		}
	}

	if c.dispatcher != nil {
		if err := c.dispatcher.Close(); err != nil {
			c.logger.Error("Failed to close dispatcher", zap.Error(err))
			errs = append(errs, fmt.Errorf("close dispatcher: %w", err))
		} else {
			c.logger.Info("Dispatcher closed")
		}
	}

	if c.sqlDB != nil {
		if err := c.sqlDB.Close(); err != nil {
			c.logger.Error("Failed to close database", zap.Error(err))
			errs = append(errs, fmt.Errorf("close database: %w", err))
		} else {
			c.logger.Info("Database closed")
		}
	}

	c.closed.Store(true)
	c.ready.Store(false)

	if len(errs) > 0 {
		c.logger.Error("Container closed with errors", zap.Int("error_count", len(errs)))
		return fmt.Errorf("container closed with %d errors", len(errs))
	}

	c.logger.Info("Container closed successfully")
	return nil
}

// Ready returns true when all components are initialized.
func (c *Container) Ready() bool {
	return c.ready.Load()
}

// Health returns health status of all components.
func (c *Container) Health() *HealthStatus {
	status := &HealthStatus{
		Overall:    true,
		Components: make(map[string]ComponentHealth),
	}

	if c.sqlDB != nil {
		if err := c.sqlDB.Ping(); err != nil {
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

	if c.workers != nil {
		status.Components["workers"] = ComponentHealth{
			Healthy: c.workers.IsRunning(),
			Message: fmt.Sprintf("worker count: %d", c.workers.WorkerCount()),
		}
		if !c.workers.IsRunning() {
			status.Overall = false
		}
	} else {
		status.Components["workers"] = ComponentHealth{Healthy: false, Message: "not initialized"}
		status.Overall = false
	}

	if c.dispatcher != nil {
		status.Components["dispatcher"] = ComponentHealth{Healthy: true}
	} else {
		status.Components["dispatcher"] = ComponentHealth{Healthy: false, Message: "not initialized"}
		status.Overall = false
	}

	if c.repositories != nil {
		status.Components["repositories"] = ComponentHealth{Healthy: true}
	} else {
		status.Components["repositories"] = ComponentHealth{Healthy: false, Message: "not initialized"}
		status.Overall = false
	}

	return status
}

// initDatabase opens the database, runs migrations and builds repositories.
func (c *Container) initDatabase() error {
	sqlDB, err := database.New(database.Config{
		Path:            c.config.Database.Path,
		MaxOpenConns:    c.config.Database.MaxOpenConns,
		MaxIdleConns:    c.config.Database.MaxIdleConns,
		ConnMaxLifetime: c.config.Database.ConnMaxLifetime,
	}, c.logger)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	if c.config.Database.MigrationsDir != "" {
		migrator := database.NewMigrator(sqlDB, c.logger)
		if err := migrator.RunMigrations(c.config.Database.MigrationsDir); err != nil {
			sqlDB.Close()
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	c.sqlDB = sqlDB
	c.db = sqlite.NewDB(sqlDB.DB, c.logger)

	c.repositories = &RepositoryBundle{
		Petition:     repository.NewPetitionRepository(c.db, c.logger),
		History:      repository.NewHistoryRepository(c.db, c.logger),
		Substitution: repository.NewSubstitutionRepository(c.db, c.logger),
		Group:        repository.NewGroupRepository(c.db, c.logger),
		User:         repository.NewUserRepository(c.db, c.logger),
		Notification: repository.NewNotificationRepository(c.db, c.logger),
		Outbox:       repository.NewOutboxRepository(c.db, c.logger),
	}

	return nil
}

// initExternalClients builds the push sender and the AI suggester. Both
// degrade to inert implementations when not configured.
func (c *Container) initExternalClients() error {
	if c.config.Push.Enabled && c.config.Push.Endpoint != "" {
		c.pushSender = push.NewExpoSender(c.config.Push.Endpoint, c.config.Push.Timeout, c.logger)
	} else {
		c.logger.Warn("Push delivery disabled, notifications will be stored only")
		c.pushSender = noopPushSender{}
	}

	if c.config.OpenAI.APIKey == "" {
		c.logger.Warn("OpenAI API key not set, replacement suggestions disabled")
		c.suggester = disabledSuggester{}
		return nil
	}

	prompts, err := openai.LoadPrompts(c.config.OpenAI.PromptsPath)
	if err != nil {
		return fmt.Errorf("load prompts: %w", err)
	}
	c.suggester = openai.NewSuggester(c.config.OpenAI.APIKey, c.config.OpenAI.Model, prompts, c.logger)

	return nil
}

// initDispatcherAndWorkflow builds the event dispatcher, subscribes the audit
// logging handler and builds the workflow engine on top.
func (c *Container) initDispatcherAndWorkflow() error {
	d := dispatcher.NewDispatcher(dispatcher.WithLogger(&zapLoggerAdapter{logger: c.logger}))

	// The engine announces every persisted transition here; the audit handler
	// turns those into log lines.
	d.SubscribeNamed(event.TypePetitionStatusChanged, "audit_log", func(ctx context.Context, evt *event.Event) error {
		c.logger.Info("Domain event",
			zap.String("event_type", string(evt.Type)),
			zap.String("event_id", evt.ID),
			zap.String("petition_id", evt.PetitionID),
			zap.String("group_id", evt.GroupID),
			zap.Any("payload", evt.Payload),
			zap.String("correlation_id", evt.CorrelationID))
		return nil
	})

	c.dispatcher = d
	c.workflow = appwf.NewEngine(appwf.WithDispatcher(d))

	return nil
}

// initServices builds the application service layer.
func (c *Container) initServices() error {
	serviceLogger := &zapLoggerAdapter{logger: c.logger}
	repos := c.repositories

	notification := service.NewNotificationService(repos.Notification, repos.User, c.pushSender, serviceLogger)

	c.services = &ServiceBundle{
		Petition: service.NewPetitionService(
			repos.Petition, repos.History, repos.Group, repos.User,
			repos.Outbox, c.db, c.workflow, serviceLogger),
		Substitution: service.NewSubstitutionService(
			repos.Substitution, repos.Notification,
			repos.Outbox, c.db, c.workflow, serviceLogger),
		Group:        service.NewGroupService(repos.Group, repos.User, c.db, serviceLogger),
		User:         service.NewUserService(repos.User, serviceLogger),
		Notification: notification,
		Suggestion:   service.NewSuggestionService(repos.Petition, repos.Group, repos.User, c.suggester, serviceLogger),
		Metrics:      service.NewMetricsService(repos.Group, repos.History, serviceLogger),
		Export:       service.NewExportService(repos.Group, repos.History, serviceLogger),
	}

	return nil
}

// initWorkers registers and starts background workers.
func (c *Container) initWorkers() error {
	c.workers = worker.NewManager(c.logger)

	outboxWorker := worker.NewOutboxWorker(worker.OutboxWorkerConfig{
		PollInterval: c.config.Outbox.PollInterval,
		BatchSize:    c.config.Outbox.BatchSize,
		MaxAttempts:  c.config.Outbox.MaxAttempts,
		BaseBackoff:  c.config.Outbox.BaseBackoff,
	}, c.repositories.Outbox, c.services.Notification, c.services.Metrics, c.logger)

	c.workers.Register(outboxWorker)

	if err := c.workers.StartAll(c.ctx); err != nil {
		return fmt.Errorf("start workers: %w", err)
	}

	return nil
}

// Services returns the application service bundle.
func (c *Container) Services() *ServiceBundle {
	return c.services
}

// Repositories returns the repository bundle.
func (c *Container) Repositories() *RepositoryBundle {
	return c.repositories
}

// Workflow returns the workflow engine.
func (c *Container) Workflow() appwf.Engine {
	return c.workflow
}

// Dispatcher returns the event dispatcher.
func (c *Container) Dispatcher() dispatcher.Dispatcher {
	return c.dispatcher
}

// Logger returns the container's logger.
func (c *Container) Logger() *zap.Logger {
	return c.logger
}

// Config returns the container's configuration.
func (c *Container) Config() *Config {
	return c.config
}

// noopPushSender satisfies port.PushSender when push delivery is disabled.
type noopPushSender struct{}

func (noopPushSender) Send(ctx context.Context, pushToken, title, body string) error {
	return nil
}

// disabledSuggester satisfies port.ReplacementSuggester when no API key is
// configured.
type disabledSuggester struct{}

func (disabledSuggester) SuggestReplacement(ctx context.Context, petition *entity.Petition, candidates []*entity.User) (*port.ReplacementSuggestion, error) {
	return nil, fmt.Errorf("replacement suggester is not configured")
}

// zapLoggerAdapter adapts zap.Logger to the key-value logger interfaces of
// the service and dispatcher packages.
type zapLoggerAdapter struct {
	logger *zap.Logger
}

func (a *zapLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Info(msg, convertToZapFields(keysAndValues...)...)
}

func (a *zapLoggerAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.logger.Error(msg, convertToZapFields(keysAndValues...)...)
}

// convertToZapFields converts key-value pairs to zap fields.
func convertToZapFields(keysAndValues ...interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}
