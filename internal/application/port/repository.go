package port

import (
	"context"
	"time"

	"github.com/shiftwise/shiftwise-backend/internal/domain/entity"
)

// PetitionRepository defines persistence operations over pending petitions.
type PetitionRepository interface {
	Create(ctx context.Context, petition *entity.Petition) error
	GetByID(ctx context.Context, id string) (*entity.Petition, error)
	GetByGroupID(ctx context.Context, groupID string) ([]*entity.Petition, error)
	Delete(ctx context.Context, id string) error
}

// HistoryRepository defines persistence operations over resolved petitions.
type HistoryRepository interface {
	Create(ctx context.Context, entry *entity.HistoryEntry) error
	GetByPetitionID(ctx context.Context, petitionID string) (*entity.HistoryEntry, error)
	GetByGroupID(ctx context.Context, groupID string) ([]*entity.HistoryEntry, error)
	GetByUserID(ctx context.Context, userID string) ([]*entity.HistoryEntry, error)
	CountByGroupID(ctx context.Context, groupID string) (approved, rejected int, err error)
}

// SubstitutionRepository defines persistence operations over substitution
// requests. RespondIf is the optimistic terminal-state guard: it updates the
// status only while the request is still pending and reports whether the
// update won.
type SubstitutionRepository interface {
	Create(ctx context.Context, request *entity.SubstitutionRequest) error
	GetByPetitionID(ctx context.Context, petitionID string) (*entity.SubstitutionRequest, error)
	GetPendingByUserID(ctx context.Context, userID string) ([]*entity.SubstitutionRequest, error)
	RespondIf(ctx context.Context, id, fromStatus, toStatus string, respondedAt time.Time) (bool, error)
}

// GroupRepository defines persistence operations over groups and their
// junction tables. AddPendingPetition/RemovePendingPetition mirror the store's
// atomic array-union/array-remove on the pending back-reference.
type GroupRepository interface {
	Create(ctx context.Context, group *entity.Group) error
	GetByID(ctx context.Context, id string) (*entity.Group, error)
	GetByInviteCode(ctx context.Context, code string) (*entity.Group, error)
	AddMember(ctx context.Context, groupID, userID string) error
	MemberIDs(ctx context.Context, groupID string) ([]string, error)
	AddPendingPetition(ctx context.Context, groupID, petitionID string) error
	RemovePendingPetition(ctx context.Context, groupID, petitionID string) error
	UpdateMetrics(ctx context.Context, metrics *entity.GroupMetrics) error
}

// UserRepository defines persistence operations over users and the history
// back-reference junction.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]*entity.User, error)
	AddHistoryEntry(ctx context.Context, userID, historyID string) error
}

// NotificationRepository defines persistence operations over notifications.
type NotificationRepository interface {
	Create(ctx context.Context, notification *entity.Notification) error
	GetByUserID(ctx context.Context, userID string) ([]*entity.Notification, error)
	UpdateInPlace(ctx context.Context, id string, update *entity.NotificationUpdate) error
	MarkRead(ctx context.Context, id string) error
}

// OutboxRepository defines persistence operations over the side-effect outbox.
type OutboxRepository interface {
	Create(ctx context.Context, effect *entity.OutboxEffect) error
	GetDue(ctx context.Context, now time.Time, limit int) ([]*entity.OutboxEffect, error)
	MarkProcessed(ctx context.Context, id string, processedAt time.Time) error
	Reschedule(ctx context.Context, id string, attempts int, nextAttemptAt time.Time, lastError string) error
	MarkFailed(ctx context.Context, id string, lastError string) error
	CountPending(ctx context.Context) (int, error)
}

// TransactionManager handles store transactions. Repositories called with the
// returned context join the surrounding transaction.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
