package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shiftwise/shiftwise-backend/internal/application/port"
	appwf "github.com/shiftwise/shiftwise-backend/internal/application/workflow"
	"github.com/shiftwise/shiftwise-backend/internal/domain/entity"
	domainwf "github.com/shiftwise/shiftwise-backend/internal/domain/workflow"
	"github.com/shiftwise/shiftwise-backend/pkg/utils"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// CreatePetitionInput carries the fields of a new absence petition. All seven
// fields are required.
type CreatePetitionInput struct {
	UserID    string `json:"user_id"`
	UserName  string `json:"user_name"`
	GroupID   string `json:"group_id"`
	Position  string `json:"position"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	Reason    string `json:"reason"`
}

// PetitionService orchestrates the absence petition lifecycle. Every primary
// mutation runs in a single transaction together with its back-reference
// updates and the outbox rows for its side effects, so a petition is never
// half-moved between the pending and history tables.
type PetitionService interface {
	CreatePetition(ctx context.Context, input CreatePetitionInput) (string, error)
	ApprovePetition(ctx context.Context, petitionID, groupID string, replacementUserID *string) error
	RejectPetition(ctx context.Context, petitionID, groupID string) error
	GetPetition(ctx context.Context, id string) (*entity.Petition, error)
	ListPending(ctx context.Context, groupID string) ([]*entity.Petition, error)
	ListHistory(ctx context.Context, groupID string) ([]*entity.HistoryEntry, error)
	ListUserHistory(ctx context.Context, userID string) ([]*entity.HistoryEntry, error)
}

type petitionServiceImpl struct {
	petitionRepo port.PetitionRepository
	historyRepo  port.HistoryRepository
	groupRepo    port.GroupRepository
	userRepo     port.UserRepository
	outboxRepo   port.OutboxRepository
	txManager    port.TransactionManager
	engine       appwf.Engine
	logger       Logger
}

// NewPetitionService creates a new PetitionService.
func NewPetitionService(
	petitionRepo port.PetitionRepository,
	historyRepo port.HistoryRepository,
	groupRepo port.GroupRepository,
	userRepo port.UserRepository,
	outboxRepo port.OutboxRepository,
	txManager port.TransactionManager,
	engine appwf.Engine,
	logger Logger,
) PetitionService {
	return &petitionServiceImpl{
		petitionRepo: petitionRepo,
		historyRepo:  historyRepo,
		groupRepo:    groupRepo,
		userRepo:     userRepo,
		outboxRepo:   outboxRepo,
		txManager:    txManager,
		engine:       engine,
		logger:       logger,
	}
}

// CreatePetition validates the input, inserts the pending petition together
// with the group back-reference, and schedules the admin notification.
func (s *petitionServiceImpl) CreatePetition(ctx context.Context, input CreatePetitionInput) (string, error) {
	// Validation happens before any store call.
	required := []struct {
		field string
		value string
	}{
		{"userId", input.UserID},
		{"userName", input.UserName},
		{"groupId", input.GroupID},
		{"position", input.Position},
		{"date", input.Date},
		{"startTime", input.StartTime},
		{"reason", input.Reason},
	}
	for _, r := range required {
		if r.value == "" {
			return "", entity.NewValidationError(r.field)
		}
	}
	if err := utils.ValidateDate(input.Date); err != nil {
		return "", entity.NewValidationError("date")
	}
	if err := utils.ValidateClockTime(input.StartTime); err != nil {
		return "", entity.NewValidationError("startTime")
	}

	group, err := s.groupRepo.GetByID(ctx, input.GroupID)
	if err != nil {
		return "", fmt.Errorf("get group: %w", err)
	}
	if group == nil {
		return "", fmt.Errorf("group %s: %w", input.GroupID, entity.ErrNotFound)
	}

	petition := &entity.Petition{
		ID:        uuid.NewString(),
		UserID:    input.UserID,
		UserName:  input.UserName,
		GroupID:   input.GroupID,
		Position:  input.Position,
		Date:      input.Date,
		StartTime: input.StartTime,
		Reason:    input.Reason,
		Status:    entity.PetitionStatusPending,
		CreatedAt: time.Now(),
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.petitionRepo.Create(txCtx, petition); err != nil {
			return fmt.Errorf("create petition: %w", err)
		}

		if err := s.groupRepo.AddPendingPetition(txCtx, group.ID, petition.ID); err != nil {
			return fmt.Errorf("add pending back-reference: %w", err)
		}

		return enqueueOutboxEffect(txCtx, s.outboxRepo, entity.EffectNotifyAdminNewPetition, &entity.EffectPayload{
			PetitionID: petition.ID,
			GroupID:    group.ID,
			AdminID:    group.AdminID,
			UserID:     petition.UserID,
			UserName:   petition.UserName,
			Date:       petition.Date,
			StartTime:  petition.StartTime,
			Reason:     petition.Reason,
		})
	})
	if err != nil {
		s.logger.Error("Failed to create petition", "error", err, "user_id", input.UserID, "group_id", input.GroupID)
		return "", err
	}

	s.logger.Info("Petition created", "petition_id", petition.ID, "group_id", group.ID)
	return petition.ID, nil
}

// ApprovePetition moves a pending petition into the history as approved. When
// replacementUserID is set, a substitution request is expected to exist
// already; approval only records the chosen replacement on the history entry.
func (s *petitionServiceImpl) ApprovePetition(ctx context.Context, petitionID, groupID string, replacementUserID *string) error {
	return s.resolvePetition(ctx, petitionID, groupID, domainwf.TriggerApprove, replacementUserID)
}

// RejectPetition moves a pending petition into the history as rejected.
func (s *petitionServiceImpl) RejectPetition(ctx context.Context, petitionID, groupID string) error {
	return s.resolvePetition(ctx, petitionID, groupID, domainwf.TriggerReject, nil)
}

// resolvePetition is the shared approve/reject path: validate the transition,
// then move the petition, fix both back-references, and enqueue the metrics
// recompute and the user notification - all in one transaction.
func (s *petitionServiceImpl) resolvePetition(ctx context.Context, petitionID, groupID string, trigger domainwf.Trigger, replacementUserID *string) error {
	petition, err := s.petitionRepo.GetByID(ctx, petitionID)
	if err != nil {
		return fmt.Errorf("get petition: %w", err)
	}
	if petition == nil {
		return fmt.Errorf("petition %s: %w", petitionID, entity.ErrNotFound)
	}

	previous := domainwf.State(petition.Status)
	next, err := s.engine.PetitionTransition(ctx, previous, trigger)
	if err != nil {
		return err
	}

	now := time.Now()
	entry := &entity.HistoryEntry{
		ID:                uuid.NewString(),
		PetitionID:        petition.ID,
		UserID:            petition.UserID,
		UserName:          petition.UserName,
		GroupID:           petition.GroupID,
		Position:          petition.Position,
		Date:              petition.Date,
		StartTime:         petition.StartTime,
		Reason:            petition.Reason,
		Status:            next.String(),
		ReplacementUserID: replacementUserID,
		CreatedAt:         petition.CreatedAt,
		ResolvedAt:        now,
	}

	notifyEffect := entity.EffectNotifyPetitionApproved
	if next == domainwf.StateRejected {
		notifyEffect = entity.EffectNotifyPetitionRejected
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.historyRepo.Create(txCtx, entry); err != nil {
			return fmt.Errorf("create history entry: %w", err)
		}

		if err := s.userRepo.AddHistoryEntry(txCtx, petition.UserID, entry.ID); err != nil {
			return fmt.Errorf("add history back-reference: %w", err)
		}

		if err := s.petitionRepo.Delete(txCtx, petition.ID); err != nil {
			return fmt.Errorf("delete pending petition: %w", err)
		}

		if err := s.groupRepo.RemovePendingPetition(txCtx, groupID, petition.ID); err != nil {
			return fmt.Errorf("remove pending back-reference: %w", err)
		}

		if err := enqueueOutboxEffect(txCtx, s.outboxRepo, entity.EffectRecomputeGroupMetrics, &entity.EffectPayload{
			GroupID: groupID,
		}); err != nil {
			return err
		}

		return enqueueOutboxEffect(txCtx, s.outboxRepo, notifyEffect, &entity.EffectPayload{
			PetitionID:     petition.ID,
			GroupID:        groupID,
			UserID:         petition.UserID,
			Date:           petition.Date,
			PetitionStatus: next.String(),
		})
	})
	if err != nil {
		s.logger.Error("Failed to resolve petition",
			"error", err,
			"petition_id", petitionID,
			"trigger", trigger.String())
		return err
	}

	s.engine.EmitStatusChanged(ctx, petition.ID, groupID, previous, next, trigger)

	s.logger.Info("Petition resolved",
		"petition_id", petition.ID,
		"history_id", entry.ID,
		"status", next.String())
	return nil
}

// GetPetition retrieves a pending petition by id.
func (s *petitionServiceImpl) GetPetition(ctx context.Context, id string) (*entity.Petition, error) {
	petition, err := s.petitionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get petition: %w", err)
	}
	if petition == nil {
		return nil, fmt.Errorf("petition %s: %w", id, entity.ErrNotFound)
	}
	return petition, nil
}

// ListPending retrieves the pending petitions of a group.
func (s *petitionServiceImpl) ListPending(ctx context.Context, groupID string) ([]*entity.Petition, error) {
	petitions, err := s.petitionRepo.GetByGroupID(ctx, groupID)
	if err != nil {
		s.logger.Error("Failed to list pending petitions", "error", err, "group_id", groupID)
		return nil, err
	}
	return petitions, nil
}

// ListHistory retrieves the resolved petitions of a group.
func (s *petitionServiceImpl) ListHistory(ctx context.Context, groupID string) ([]*entity.HistoryEntry, error) {
	entries, err := s.historyRepo.GetByGroupID(ctx, groupID)
	if err != nil {
		s.logger.Error("Failed to list history", "error", err, "group_id", groupID)
		return nil, err
	}
	return entries, nil
}

// ListUserHistory retrieves the resolved petitions of a user.
func (s *petitionServiceImpl) ListUserHistory(ctx context.Context, userID string) ([]*entity.HistoryEntry, error) {
	entries, err := s.historyRepo.GetByUserID(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to list user history", "error", err, "user_id", userID)
		return nil, err
	}
	return entries, nil
}
