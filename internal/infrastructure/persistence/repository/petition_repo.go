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

// PetitionRepository implements port.PetitionRepository over the pending
// petitions table. Resolved petitions are deleted from here and live in the
// history table instead.
type PetitionRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewPetitionRepository creates a new petition repository.
func NewPetitionRepository(db *sqlite.DB, logger *zap.Logger) port.PetitionRepository {
	return &PetitionRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a pending petition.
func (r *PetitionRepository) Create(ctx context.Context, petition *entity.Petition) error {
	query := `
		INSERT INTO petitions (
			id, user_id, user_name, group_id, position,
			date, start_time, reason, status, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Executor(ctx).ExecContext(ctx, query,
		petition.ID,
		petition.UserID,
		petition.UserName,
		petition.GroupID,
		petition.Position,
		petition.Date,
		petition.StartTime,
		petition.Reason,
		petition.Status,
		petition.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create petition",
			zap.String("petition_id", petition.ID),
			zap.Error(err))
		return fmt.Errorf("create petition: %w", err)
	}

	return nil
}

// GetByID retrieves a pending petition, or nil when it does not exist.
func (r *PetitionRepository) GetByID(ctx context.Context, id string) (*entity.Petition, error) {
	query := `
		SELECT id, user_id, user_name, group_id, position,
			date, start_time, reason, status, created_at
		FROM petitions
		WHERE id = ?
	`

	petition := &entity.Petition{}
	err := r.db.Executor(ctx).QueryRowContext(ctx, query, id).Scan(
		&petition.ID,
		&petition.UserID,
		&petition.UserName,
		&petition.GroupID,
		&petition.Position,
		&petition.Date,
		&petition.StartTime,
		&petition.Reason,
		&petition.Status,
		&petition.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get petition: %w", err)
	}

	return petition, nil
}

// GetByGroupID retrieves a group's pending petitions, newest first.
func (r *PetitionRepository) GetByGroupID(ctx context.Context, groupID string) ([]*entity.Petition, error) {
	query := `
		SELECT id, user_id, user_name, group_id, position,
			date, start_time, reason, status, created_at
		FROM petitions
		WHERE group_id = ?
		ORDER BY created_at DESC
	`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("query petitions: %w", err)
	}
	defer rows.Close()

	var petitions []*entity.Petition
	for rows.Next() {
		petition := &entity.Petition{}
		if err := rows.Scan(
			&petition.ID,
			&petition.UserID,
			&petition.UserName,
			&petition.GroupID,
			&petition.Position,
			&petition.Date,
			&petition.StartTime,
			&petition.Reason,
			&petition.Status,
			&petition.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan petition: %w", err)
		}
		petitions = append(petitions, petition)
	}

	return petitions, rows.Err()
}

// Delete removes a pending petition after it has been moved to the history.
func (r *PetitionRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Executor(ctx).ExecContext(ctx, `DELETE FROM petitions WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("Failed to delete petition",
			zap.String("petition_id", id),
			zap.Error(err))
		return fmt.Errorf("delete petition: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete petition rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("petition %s: %w", id, entity.ErrNotFound)
	}

	return nil
}

var _ port.PetitionRepository = (*PetitionRepository)(nil)
