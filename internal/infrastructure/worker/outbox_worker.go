package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/shiftwise/shiftwise-backend/internal/application/port"
	"github.com/shiftwise/shiftwise-backend/internal/application/service"
	"github.com/shiftwise/shiftwise-backend/internal/domain/entity"
)

var outboxBacklog = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "outbox_pending_effects",
	Help: "Number of outbox effects waiting to be processed.",
})

// OutboxWorkerConfig holds configuration for the outbox worker.
type OutboxWorkerConfig struct {
	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int
	BaseBackoff  time.Duration
}

// DefaultOutboxWorkerConfig returns default configuration.
func DefaultOutboxWorkerConfig() OutboxWorkerConfig {
	return OutboxWorkerConfig{
		PollInterval: 5 * time.Second,
		BatchSize:    20,
		MaxAttempts:  5,
		BaseBackoff:  10 * time.Second,
	}
}

// OutboxWorker drains the side-effect outbox: notifications owed to users and
// group metric recomputes. Effects are retried with exponential backoff and
// parked as failed once the attempt budget is spent, so a broken effect is
// visible in the table instead of silently gone.
type OutboxWorker struct {
	config OutboxWorkerConfig

	outboxRepo      port.OutboxRepository
	notificationSvc service.NotificationService
	metricsSvc      service.MetricsService
	logger          *zap.Logger

	mu             sync.RWMutex
	ctx            context.Context
	cancel         context.CancelFunc
	done           chan struct{}
	isRunning      bool
	processedCount int
	failedCount    int
}

// NewOutboxWorker creates a new outbox worker.
func NewOutboxWorker(
	config OutboxWorkerConfig,
	outboxRepo port.OutboxRepository,
	notificationSvc service.NotificationService,
	metricsSvc service.MetricsService,
	logger *zap.Logger,
) *OutboxWorker {
	return &OutboxWorker{
		config:          config,
		outboxRepo:      outboxRepo,
		notificationSvc: notificationSvc,
		metricsSvc:      metricsSvc,
		logger:          logger,
	}
}

// Start begins the worker polling loop.
func (w *OutboxWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.isRunning {
		w.mu.Unlock()
		return fmt.Errorf("outbox worker already running")
	}

	w.ctx, w.cancel = context.WithCancel(ctx)
	w.done = make(chan struct{})
	w.isRunning = true
	w.mu.Unlock()

	w.logger.Info("OutboxWorker started",
		zap.Duration("poll_interval", w.config.PollInterval),
		zap.Int("batch_size", w.config.BatchSize),
		zap.Int("max_attempts", w.config.MaxAttempts))

	go w.pollLoop()

	return nil
}

// Stop terminates the worker and waits for the polling loop to finish the
// effect it is processing before returning.
func (w *OutboxWorker) Stop() error {
	w.mu.Lock()
	if !w.isRunning {
		w.mu.Unlock()
		return nil
	}

	w.isRunning = false
	cancel, done := w.cancel, w.done
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}

	w.mu.RLock()
	processed, failed := w.processedCount, w.failedCount
	w.mu.RUnlock()

	w.logger.Info("OutboxWorker stopped",
		zap.Int("processed_count", processed),
		zap.Int("failed_count", failed))

	return nil
}

// Name returns the worker name for identification.
func (w *OutboxWorker) Name() string {
	return "OutboxWorker"
}

func (w *OutboxWorker) pollLoop() {
	defer close(w.done)

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.drainDue()
		}
	}
}

// drainDue processes one batch of due effects.
func (w *OutboxWorker) drainDue() {
	if pending, err := w.outboxRepo.CountPending(w.ctx); err == nil {
		outboxBacklog.Set(float64(pending))
	}

	effects, err := w.outboxRepo.GetDue(w.ctx, time.Now(), w.config.BatchSize)
	if err != nil {
		w.logger.Error("Failed to load due effects", zap.Error(err))
		return
	}

	for _, effect := range effects {
		select {
		case <-w.ctx.Done():
			return
		default:
		}
		w.processEffect(effect)
	}
}

func (w *OutboxWorker) processEffect(effect *entity.OutboxEffect) {
	if err := w.dispatch(w.ctx, effect); err != nil {
		w.recordFailure(effect, err)
		return
	}

	if err := w.outboxRepo.MarkProcessed(w.ctx, effect.ID, time.Now()); err != nil {
		w.logger.Error("Failed to mark effect processed",
			zap.String("effect_id", effect.ID),
			zap.Error(err))
		return
	}

	w.mu.Lock()
	w.processedCount++
	w.mu.Unlock()

	w.logger.Info("Effect processed",
		zap.String("effect_id", effect.ID),
		zap.String("type", effect.Type))
}

// dispatch routes an effect to the service that owns it.
func (w *OutboxWorker) dispatch(ctx context.Context, effect *entity.OutboxEffect) error {
	payload, err := effect.Decode()
	if err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	switch effect.Type {
	case entity.EffectNotifyAdminNewPetition:
		return w.notificationSvc.NotifyAdminNewPetition(ctx, payload)
	case entity.EffectNotifyPetitionApproved:
		return w.notificationSvc.NotifyPetitionApproved(ctx, payload)
	case entity.EffectNotifyPetitionRejected:
		return w.notificationSvc.NotifyPetitionRejected(ctx, payload)
	case entity.EffectNotifySubstitutionRequest:
		return w.notificationSvc.NotifySubstitutionRequest(ctx, payload)
	case entity.EffectNotifySubstitutionAccepted:
		return w.notificationSvc.NotifySubstitutionAccepted(ctx, payload)
	case entity.EffectNotifySubstitutionRejected:
		return w.notificationSvc.NotifySubstitutionRejected(ctx, payload)
	case entity.EffectRecomputeGroupMetrics:
		return w.metricsSvc.UpdateGroupMetrics(ctx, payload.GroupID)
	default:
		return fmt.Errorf("unknown effect type %q", effect.Type)
	}
}

// recordFailure reschedules the effect with exponential backoff, or parks it
// once the attempt budget is spent.
func (w *OutboxWorker) recordFailure(effect *entity.OutboxEffect, cause error) {
	attempts := effect.Attempts + 1

	w.logger.Error("Effect dispatch failed",
		zap.String("effect_id", effect.ID),
		zap.String("type", effect.Type),
		zap.Int("attempts", attempts),
		zap.Error(cause))

	if attempts >= w.config.MaxAttempts {
		if err := w.outboxRepo.MarkFailed(w.ctx, effect.ID, cause.Error()); err != nil {
			w.logger.Error("Failed to park effect",
				zap.String("effect_id", effect.ID),
				zap.Error(err))
		}
		w.mu.Lock()
		w.failedCount++
		w.mu.Unlock()
		return
	}

	// Backoff doubles per attempt: base, 2x, 4x, ...
	backoff := w.config.BaseBackoff * time.Duration(1<<(attempts-1))
	nextAttempt := time.Now().Add(backoff)

	if err := w.outboxRepo.Reschedule(w.ctx, effect.ID, attempts, nextAttempt, cause.Error()); err != nil {
		w.logger.Error("Failed to reschedule effect",
			zap.String("effect_id", effect.ID),
			zap.Error(err))
	}
}
