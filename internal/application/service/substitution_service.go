package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shiftwise/shiftwise-backend/internal/application/port"
	appwf "github.com/shiftwise/shiftwise-backend/internal/application/workflow"
	"github.com/shiftwise/shiftwise-backend/internal/domain/entity"
	domainwf "github.com/shiftwise/shiftwise-backend/internal/domain/workflow"
)

// CreateSubstitutionInput carries the fields of a new substitution request.
type CreateSubstitutionInput struct {
	AdminID         string `json:"admin_id"`
	PetitionID      string `json:"petition_id"`
	RequestedUserID string `json:"requested_user_id"`
	UserName        string `json:"user_name"`
	UserPosition    string `json:"user_position"`
	Reason          string `json:"reason"`
	Date            string `json:"date"`
	StartTime       string `json:"start_time"`
	GroupID         string `json:"group_id"`
}

// SubstitutionService manages substitution requests. A request is created by
// an admin before approving a petition with a replacement; only the targeted
// user's response mutates it, and only once.
type SubstitutionService interface {
	CreateSubstitutionRequest(ctx context.Context, input CreateSubstitutionInput) (string, error)
	RespondToSubstitutionRequest(ctx context.Context, notificationID, petitionID, response, userID string) (string, error)
	GetByPetitionID(ctx context.Context, petitionID string) (*entity.SubstitutionRequest, error)
	ListPendingForUser(ctx context.Context, userID string) ([]*entity.SubstitutionRequest, error)
}

type substitutionServiceImpl struct {
	substitutionRepo port.SubstitutionRepository
	notificationRepo port.NotificationRepository
	outboxRepo       port.OutboxRepository
	txManager        port.TransactionManager
	engine           appwf.Engine
	logger           Logger
}

// NewSubstitutionService creates a new SubstitutionService.
func NewSubstitutionService(
	substitutionRepo port.SubstitutionRepository,
	notificationRepo port.NotificationRepository,
	outboxRepo port.OutboxRepository,
	txManager port.TransactionManager,
	engine appwf.Engine,
	logger Logger,
) SubstitutionService {
	return &substitutionServiceImpl{
		substitutionRepo: substitutionRepo,
		notificationRepo: notificationRepo,
		outboxRepo:       outboxRepo,
		txManager:        txManager,
		engine:           engine,
		logger:           logger,
	}
}

// CreateSubstitutionRequest validates the input, inserts the request, and
// schedules the notification for the targeted user.
func (s *substitutionServiceImpl) CreateSubstitutionRequest(ctx context.Context, input CreateSubstitutionInput) (string, error) {
	required := []struct {
		field string
		value string
	}{
		{"idAdmin", input.AdminID},
		{"idPeticion", input.PetitionID},
		{"idUserSolicitado", input.RequestedUserID},
		{"userName", input.UserName},
		{"date", input.Date},
		{"groupId", input.GroupID},
	}
	for _, r := range required {
		if r.value == "" {
			return "", entity.NewValidationError(r.field)
		}
	}

	request := &entity.SubstitutionRequest{
		ID:              uuid.NewString(),
		AdminID:         input.AdminID,
		PetitionID:      input.PetitionID,
		RequestedUserID: input.RequestedUserID,
		UserName:        input.UserName,
		UserPosition:    input.UserPosition,
		Reason:          input.Reason,
		Date:            input.Date,
		StartTime:       input.StartTime,
		GroupID:         input.GroupID,
		Status:          entity.SubstitutionStatusPending,
		CreatedAt:       time.Now(),
	}

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.substitutionRepo.Create(txCtx, request); err != nil {
			return fmt.Errorf("create substitution request: %w", err)
		}

		return enqueueOutboxEffect(txCtx, s.outboxRepo, entity.EffectNotifySubstitutionRequest, &entity.EffectPayload{
			SubstitutionID: request.ID,
			PetitionID:     request.PetitionID,
			GroupID:        request.GroupID,
			UserID:         request.RequestedUserID,
			UserName:       request.UserName,
			AdminID:        request.AdminID,
			Date:           request.Date,
			StartTime:      request.StartTime,
			Reason:         request.Reason,
		})
	})
	if err != nil {
		s.logger.Error("Failed to create substitution request",
			"error", err,
			"petition_id", input.PetitionID,
			"requested_user_id", input.RequestedUserID)
		return "", err
	}

	s.logger.Info("Substitution request created",
		"substitution_id", request.ID,
		"petition_id", request.PetitionID)
	return request.ID, nil
}

// RespondToSubstitutionRequest records the targeted user's decision. The
// status update is a conditional write guarded on the pending status, so a
// second response loses instead of overwriting a terminal state. The
// triggering notification is rewritten in place and a fresh notification for
// the admin is scheduled. Returns the new status so callers can update local
// state without a re-fetch.
func (s *substitutionServiceImpl) RespondToSubstitutionRequest(ctx context.Context, notificationID, petitionID, response, userID string) (string, error) {
	var trigger domainwf.Trigger
	switch strings.ToLower(response) {
	case "aceptada":
		trigger = domainwf.TriggerAccept
	case "rechazada":
		trigger = domainwf.TriggerReject
	default:
		return "", entity.NewValidationError("response")
	}

	request, err := s.substitutionRepo.GetByPetitionID(ctx, petitionID)
	if err != nil {
		return "", fmt.Errorf("get substitution request: %w", err)
	}
	if request == nil {
		return "", fmt.Errorf("substitution request for petition %s: %w", petitionID, entity.ErrNotFound)
	}

	next, err := s.engine.SubstitutionTransition(ctx, domainwf.State(request.Status), trigger)
	if err != nil {
		if request.IsResponded() {
			return "", fmt.Errorf("substitution request %s: %w", request.ID, entity.ErrAlreadyResponded)
		}
		return "", err
	}

	accepted := next == domainwf.StateAccepted
	notifyEffect := entity.EffectNotifySubstitutionAccepted
	if !accepted {
		notifyEffect = entity.EffectNotifySubstitutionRejected
	}

	now := time.Now()
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		won, err := s.substitutionRepo.RespondIf(txCtx, request.ID, entity.SubstitutionStatusPending, next.String(), now)
		if err != nil {
			return fmt.Errorf("respond to substitution request: %w", err)
		}
		if !won {
			return fmt.Errorf("substitution request %s: %w", request.ID, entity.ErrAlreadyResponded)
		}

		// Rewrite the triggering notification so the client shows the
		// decision without a second record.
		update := &entity.NotificationUpdate{
			Title:          "Solicitud de sustitución aceptada",
			Message:        fmt.Sprintf("Has aceptado cubrir el turno del %s a las %s.", request.Date, request.StartTime),
			PetitionStatus: next.String(),
			Read:           true,
		}
		if !accepted {
			update.Title = "Solicitud de sustitución rechazada"
			update.Message = fmt.Sprintf("Has rechazado cubrir el turno del %s a las %s.", request.Date, request.StartTime)
		}
		if err := s.notificationRepo.UpdateInPlace(txCtx, notificationID, update); err != nil {
			return fmt.Errorf("update notification in place: %w", err)
		}

		// The admin gets a distinct new notification, not a mutation.
		return enqueueOutboxEffect(txCtx, s.outboxRepo, notifyEffect, &entity.EffectPayload{
			SubstitutionID: request.ID,
			PetitionID:     request.PetitionID,
			GroupID:        request.GroupID,
			UserID:         userID,
			UserName:       request.UserName,
			AdminID:        request.AdminID,
			Date:           request.Date,
			PetitionStatus: next.String(),
		})
	})
	if err != nil {
		s.logger.Error("Failed to respond to substitution request",
			"error", err,
			"substitution_id", request.ID,
			"response", response)
		return "", err
	}

	s.logger.Info("Substitution request responded",
		"substitution_id", request.ID,
		"status", next.String())
	return next.String(), nil
}

// GetByPetitionID retrieves the substitution request attached to a petition.
func (s *substitutionServiceImpl) GetByPetitionID(ctx context.Context, petitionID string) (*entity.SubstitutionRequest, error) {
	request, err := s.substitutionRepo.GetByPetitionID(ctx, petitionID)
	if err != nil {
		return nil, fmt.Errorf("get substitution request: %w", err)
	}
	if request == nil {
		return nil, fmt.Errorf("substitution request for petition %s: %w", petitionID, entity.ErrNotFound)
	}
	return request, nil
}

// ListPendingForUser retrieves the open substitution requests targeting a user.
func (s *substitutionServiceImpl) ListPendingForUser(ctx context.Context, userID string) ([]*entity.SubstitutionRequest, error) {
	requests, err := s.substitutionRepo.GetPendingByUserID(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to list pending substitution requests", "error", err, "user_id", userID)
		return nil, err
	}
	return requests, nil
}
