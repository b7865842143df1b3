package repository

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/shiftwise/shiftwise-backend/internal/application/port"
	"github.com/shiftwise/shiftwise-backend/internal/domain/entity"
	"github.com/shiftwise/shiftwise-backend/internal/infrastructure/persistence/sqlite"
)

// OutboxRepository implements port.OutboxRepository. Effect rows are inserted
// through the ambient transaction of the mutation that owes them and drained
// by the outbox worker.
type OutboxRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewOutboxRepository creates a new outbox repository.
func NewOutboxRepository(db *sqlite.DB, logger *zap.Logger) port.OutboxRepository {
	return &OutboxRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a pending effect.
func (r *OutboxRepository) Create(ctx context.Context, effect *entity.OutboxEffect) error {
	query := `
		INSERT INTO outbox_effects (
			id, type, payload, status, attempts,
			next_attempt_at, last_error, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Executor(ctx).ExecContext(ctx, query,
		effect.ID,
		effect.Type,
		effect.Payload,
		effect.Status,
		effect.Attempts,
		effect.NextAttemptAt,
		effect.LastError,
		effect.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create outbox effect",
			zap.String("effect_id", effect.ID),
			zap.String("type", effect.Type),
			zap.Error(err))
		return fmt.Errorf("create outbox effect: %w", err)
	}

	return nil
}

// GetDue retrieves pending effects whose next attempt is due, oldest first.
func (r *OutboxRepository) GetDue(ctx context.Context, now time.Time, limit int) ([]*entity.OutboxEffect, error) {
	query := `
		SELECT id, type, payload, status, attempts,
			next_attempt_at, last_error, created_at, processed_at
		FROM outbox_effects
		WHERE status = ? AND next_attempt_at <= ?
		ORDER BY next_attempt_at ASC
		LIMIT ?
	`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, entity.EffectStatusPending, now, limit)
	if err != nil {
		return nil, fmt.Errorf("query due effects: %w", err)
	}
	defer rows.Close()

	var effects []*entity.OutboxEffect
	for rows.Next() {
		effect := &entity.OutboxEffect{}
		if err := rows.Scan(
			&effect.ID,
			&effect.Type,
			&effect.Payload,
			&effect.Status,
			&effect.Attempts,
			&effect.NextAttemptAt,
			&effect.LastError,
			&effect.CreatedAt,
			&effect.ProcessedAt,
		); err != nil {
			return nil, fmt.Errorf("scan effect: %w", err)
		}
		effects = append(effects, effect)
	}

	return effects, rows.Err()
}

// MarkProcessed records a successful dispatch.
func (r *OutboxRepository) MarkProcessed(ctx context.Context, id string, processedAt time.Time) error {
	query := `
		UPDATE outbox_effects
		SET status = ?, processed_at = ?, last_error = ''
		WHERE id = ?
	`

	_, err := r.db.Executor(ctx).ExecContext(ctx, query, entity.EffectStatusProcessed, processedAt, id)
	if err != nil {
		return fmt.Errorf("mark effect processed: %w", err)
	}

	return nil
}

// Reschedule records a failed attempt and pushes the next one into the future.
func (r *OutboxRepository) Reschedule(ctx context.Context, id string, attempts int, nextAttemptAt time.Time, lastError string) error {
	query := `
		UPDATE outbox_effects
		SET attempts = ?, next_attempt_at = ?, last_error = ?
		WHERE id = ?
	`

	_, err := r.db.Executor(ctx).ExecContext(ctx, query, attempts, nextAttemptAt, lastError, id)
	if err != nil {
		return fmt.Errorf("reschedule effect: %w", err)
	}

	return nil
}

// MarkFailed parks an effect that exhausted its attempts. Failed effects stay
// queryable for inspection instead of being deleted.
func (r *OutboxRepository) MarkFailed(ctx context.Context, id string, lastError string) error {
	query := `
		UPDATE outbox_effects
		SET status = ?, last_error = ?
		WHERE id = ?
	`

	_, err := r.db.Executor(ctx).ExecContext(ctx, query, entity.EffectStatusFailed, lastError, id)
	if err != nil {
		return fmt.Errorf("mark effect failed: %w", err)
	}

	return nil
}

// CountPending counts the effects still waiting to be dispatched.
func (r *OutboxRepository) CountPending(ctx context.Context) (int, error) {
	var count int
	err := r.db.Executor(ctx).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM outbox_effects WHERE status = ?`,
		entity.EffectStatusPending,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count pending effects: %w", err)
	}

	return count, nil
}

var _ port.OutboxRepository = (*OutboxRepository)(nil)
