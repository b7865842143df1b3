package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/shiftwise/shiftwise-backend/internal/application/port"
	"github.com/shiftwise/shiftwise-backend/internal/domain/entity"
	"github.com/shiftwise/shiftwise-backend/internal/infrastructure/persistence/sqlite"
)

// GroupRepository implements port.GroupRepository. Membership and the pending
// petition back-references live in the group_members and
// group_pending_petitions junction tables; both are written through the
// ambient transaction so they never drift from the rows they mirror.
type GroupRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewGroupRepository creates a new group repository.
func NewGroupRepository(db *sqlite.DB, logger *zap.Logger) port.GroupRepository {
	return &GroupRepository{
		db:     db,
		logger: logger,
	}
}

const groupColumns = `id, name, admin_id, invite_code, member_count,
	approved_count, rejected_count, created_at`

// Create inserts a group.
func (r *GroupRepository) Create(ctx context.Context, group *entity.Group) error {
	query := `
		INSERT INTO groups (
			id, name, admin_id, invite_code, member_count,
			approved_count, rejected_count, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Executor(ctx).ExecContext(ctx, query,
		group.ID,
		group.Name,
		group.AdminID,
		group.InviteCode,
		group.MemberCount,
		group.ApprovedCount,
		group.RejectedCount,
		group.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create group",
			zap.String("group_id", group.ID),
			zap.Error(err))
		return fmt.Errorf("create group: %w", err)
	}

	return nil
}

// GetByID retrieves a group, or nil when it does not exist.
func (r *GroupRepository) GetByID(ctx context.Context, id string) (*entity.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups WHERE id = ?`
	return r.scanOne(r.db.Executor(ctx).QueryRowContext(ctx, query, id))
}

// GetByInviteCode retrieves a group by invite code, or nil.
func (r *GroupRepository) GetByInviteCode(ctx context.Context, code string) (*entity.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups WHERE invite_code = ?`
	return r.scanOne(r.db.Executor(ctx).QueryRowContext(ctx, query, code))
}

// AddMember adds a user to the group. Re-adding an existing member is a no-op.
func (r *GroupRepository) AddMember(ctx context.Context, groupID, userID string) error {
	query := `INSERT OR IGNORE INTO group_members (group_id, user_id) VALUES (?, ?)`

	_, err := r.db.Executor(ctx).ExecContext(ctx, query, groupID, userID)
	if err != nil {
		r.logger.Error("Failed to add group member",
			zap.String("group_id", groupID),
			zap.String("user_id", userID),
			zap.Error(err))
		return fmt.Errorf("add group member: %w", err)
	}

	return nil
}

// MemberIDs retrieves the ids of a group's members.
func (r *GroupRepository) MemberIDs(ctx context.Context, groupID string) ([]string, error) {
	query := `SELECT user_id FROM group_members WHERE group_id = ?`
	return r.scanIDs(ctx, query, groupID, "member")
}

// AddPendingPetition records the pending back-reference for a new petition.
func (r *GroupRepository) AddPendingPetition(ctx context.Context, groupID, petitionID string) error {
	query := `INSERT OR IGNORE INTO group_pending_petitions (group_id, petition_id) VALUES (?, ?)`

	_, err := r.db.Executor(ctx).ExecContext(ctx, query, groupID, petitionID)
	if err != nil {
		return fmt.Errorf("add pending petition reference: %w", err)
	}

	return nil
}

// RemovePendingPetition drops the back-reference when the petition resolves.
func (r *GroupRepository) RemovePendingPetition(ctx context.Context, groupID, petitionID string) error {
	query := `DELETE FROM group_pending_petitions WHERE group_id = ? AND petition_id = ?`

	_, err := r.db.Executor(ctx).ExecContext(ctx, query, groupID, petitionID)
	if err != nil {
		return fmt.Errorf("remove pending petition reference: %w", err)
	}

	return nil
}

// UpdateMetrics writes the recomputed aggregates onto the group row.
func (r *GroupRepository) UpdateMetrics(ctx context.Context, metrics *entity.GroupMetrics) error {
	query := `
		UPDATE groups
		SET member_count = ?, approved_count = ?, rejected_count = ?
		WHERE id = ?
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		metrics.MemberCount,
		metrics.ApprovedCount,
		metrics.RejectedCount,
		metrics.GroupID,
	)
	if err != nil {
		r.logger.Error("Failed to update group metrics",
			zap.String("group_id", metrics.GroupID),
			zap.Error(err))
		return fmt.Errorf("update group metrics: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update metrics rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("group %s: %w", metrics.GroupID, entity.ErrNotFound)
	}

	return nil
}

func (r *GroupRepository) scanOne(row *sql.Row) (*entity.Group, error) {
	group := &entity.Group{}
	err := row.Scan(
		&group.ID,
		&group.Name,
		&group.AdminID,
		&group.InviteCode,
		&group.MemberCount,
		&group.ApprovedCount,
		&group.RejectedCount,
		&group.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get group: %w", err)
	}
	return group, nil
}

func (r *GroupRepository) scanIDs(ctx context.Context, query, groupID, kind string) ([]string, error) {
	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("query %s ids: %w", kind, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan %s id: %w", kind, err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

var _ port.GroupRepository = (*GroupRepository)(nil)
