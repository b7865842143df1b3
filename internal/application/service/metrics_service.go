package service

import (
	"context"
	"fmt"

	"github.com/shiftwise/shiftwise-backend/internal/application/port"
	"github.com/shiftwise/shiftwise-backend/internal/domain/entity"
)

// MetricsService recomputes the denormalized aggregates on a group after a
// petition resolution. Invoked through the outbox, never inline with the
// resolving transaction.
type MetricsService interface {
	UpdateGroupMetrics(ctx context.Context, groupID string) error
}

type metricsServiceImpl struct {
	groupRepo   port.GroupRepository
	historyRepo port.HistoryRepository
	logger      Logger
}

// NewMetricsService creates a new MetricsService.
func NewMetricsService(groupRepo port.GroupRepository, historyRepo port.HistoryRepository, logger Logger) MetricsService {
	return &metricsServiceImpl{
		groupRepo:   groupRepo,
		historyRepo: historyRepo,
		logger:      logger,
	}
}

// UpdateGroupMetrics recomputes member and resolution counts from scratch.
func (s *metricsServiceImpl) UpdateGroupMetrics(ctx context.Context, groupID string) error {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return fmt.Errorf("get group: %w", err)
	}
	if group == nil {
		return fmt.Errorf("group %s: %w", groupID, entity.ErrNotFound)
	}

	approved, rejected, err := s.historyRepo.CountByGroupID(ctx, groupID)
	if err != nil {
		return fmt.Errorf("count history: %w", err)
	}

	members, err := s.groupRepo.MemberIDs(ctx, groupID)
	if err != nil {
		return fmt.Errorf("list members: %w", err)
	}

	metrics := &entity.GroupMetrics{
		GroupID:       groupID,
		MemberCount:   len(members),
		ApprovedCount: approved,
		RejectedCount: rejected,
	}

	if err := s.groupRepo.UpdateMetrics(ctx, metrics); err != nil {
		return fmt.Errorf("update group metrics: %w", err)
	}

	s.logger.Info("Group metrics updated",
		"group_id", groupID,
		"member_count", metrics.MemberCount,
		"approved_count", approved,
		"rejected_count", rejected)
	return nil
}
