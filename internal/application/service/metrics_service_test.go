package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shiftwise/shiftwise-backend/internal/domain/entity"
)

func TestUpdateGroupMetrics(t *testing.T) {
	groupRepo := &mockGroupRepo{
		memberIDsFunc: func(ctx context.Context, groupID string) ([]string, error) {
			return []string{"u1", "u2", "u3"}, nil
		},
	}
	historyRepo := &mockHistoryRepo{
		countByGroupIDFunc: func(ctx context.Context, groupID string) (int, int, error) {
			return 5, 2, nil
		},
	}
	svc := NewMetricsService(groupRepo, historyRepo, &mockLogger{})

	if err := svc.UpdateGroupMetrics(context.Background(), "g1"); err != nil {
		t.Fatalf("UpdateGroupMetrics() error = %v", err)
	}

	if len(groupRepo.Metrics) != 1 {
		t.Fatalf("expected 1 metrics write, got %d", len(groupRepo.Metrics))
	}
	got := groupRepo.Metrics[0]
	if got.GroupID != "g1" || got.MemberCount != 3 || got.ApprovedCount != 5 || got.RejectedCount != 2 {
		t.Errorf("metrics = %+v, want g1/3 members/5 approved/2 rejected", got)
	}
}

func TestUpdateGroupMetricsMissingGroup(t *testing.T) {
	groupRepo := &mockGroupRepo{
		getByIDFunc: func(ctx context.Context, id string) (*entity.Group, error) {
			return nil, nil
		},
	}
	svc := NewMetricsService(groupRepo, &mockHistoryRepo{}, &mockLogger{})

	err := svc.UpdateGroupMetrics(context.Background(), "missing")
	if !errors.Is(err, entity.ErrNotFound) {
		t.Fatalf("UpdateGroupMetrics() error = %v, want ErrNotFound", err)
	}
	if len(groupRepo.Metrics) != 0 {
		t.Error("metrics written for a missing group")
	}
}

func TestUpdateGroupMetricsCountFailure(t *testing.T) {
	countErr := errors.New("disk full")
	groupRepo := &mockGroupRepo{}
	historyRepo := &mockHistoryRepo{
		countByGroupIDFunc: func(ctx context.Context, groupID string) (int, int, error) {
			return 0, 0, countErr
		},
	}
	svc := NewMetricsService(groupRepo, historyRepo, &mockLogger{})

	if err := svc.UpdateGroupMetrics(context.Background(), "g1"); !errors.Is(err, countErr) {
		t.Fatalf("UpdateGroupMetrics() error = %v, want wrapped %v", err, countErr)
	}
	if len(groupRepo.Metrics) != 0 {
		t.Error("metrics written despite the count failure")
	}
}
