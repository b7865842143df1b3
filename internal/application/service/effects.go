package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shiftwise/shiftwise-backend/internal/application/port"
	"github.com/shiftwise/shiftwise-backend/internal/domain/entity"
)

// enqueueOutboxEffect writes a pending outbox row. Called inside the
// transaction of the primary mutation that owes the effect.
func enqueueOutboxEffect(ctx context.Context, repo port.OutboxRepository, effectType string, payload *entity.EffectPayload) error {
	encoded, err := entity.EncodePayload(payload)
	if err != nil {
		return fmt.Errorf("encode effect payload: %w", err)
	}

	now := time.Now()
	effect := &entity.OutboxEffect{
		ID:            uuid.NewString(),
		Type:          effectType,
		Payload:       encoded,
		Status:        entity.EffectStatusPending,
		NextAttemptAt: now,
		CreatedAt:     now,
	}

	if err := repo.Create(ctx, effect); err != nil {
		return fmt.Errorf("enqueue effect %s: %w", effectType, err)
	}
	return nil
}
