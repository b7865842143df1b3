package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/shiftwise/shiftwise-backend/internal/application/port"
	"github.com/shiftwise/shiftwise-backend/internal/domain/entity"
	"github.com/shiftwise/shiftwise-backend/internal/infrastructure/persistence/sqlite"
)

// SubstitutionRepository implements port.SubstitutionRepository.
type SubstitutionRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewSubstitutionRepository creates a new substitution repository.
func NewSubstitutionRepository(db *sqlite.DB, logger *zap.Logger) port.SubstitutionRepository {
	return &SubstitutionRepository{
		db:     db,
		logger: logger,
	}
}

const substitutionColumns = `id, admin_id, petition_id, requested_user_id, user_name,
	user_position, reason, date, start_time, group_id, status, created_at, responded_at`

// Create inserts a substitution request.
func (r *SubstitutionRepository) Create(ctx context.Context, request *entity.SubstitutionRequest) error {
	query := `
		INSERT INTO substitution_requests (
			id, admin_id, petition_id, requested_user_id, user_name,
			user_position, reason, date, start_time, group_id,
			status, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Executor(ctx).ExecContext(ctx, query,
		request.ID,
		request.AdminID,
		request.PetitionID,
		request.RequestedUserID,
		request.UserName,
		request.UserPosition,
		request.Reason,
		request.Date,
		request.StartTime,
		request.GroupID,
		request.Status,
		request.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create substitution request",
			zap.String("substitution_id", request.ID),
			zap.Error(err))
		return fmt.Errorf("create substitution request: %w", err)
	}

	return nil
}

// GetByPetitionID retrieves the substitution request attached to a petition,
// or nil. A petition carries at most one request.
func (r *SubstitutionRepository) GetByPetitionID(ctx context.Context, petitionID string) (*entity.SubstitutionRequest, error) {
	query := `SELECT ` + substitutionColumns + ` FROM substitution_requests WHERE petition_id = ?`
	return r.scanOne(r.db.Executor(ctx).QueryRowContext(ctx, query, petitionID))
}

// GetPendingByUserID retrieves the open requests targeting a user.
func (r *SubstitutionRepository) GetPendingByUserID(ctx context.Context, userID string) ([]*entity.SubstitutionRequest, error) {
	query := `
		SELECT ` + substitutionColumns + `
		FROM substitution_requests
		WHERE requested_user_id = ? AND status = ?
		ORDER BY created_at DESC
	`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, userID, entity.SubstitutionStatusPending)
	if err != nil {
		return nil, fmt.Errorf("query substitution requests: %w", err)
	}
	defer rows.Close()

	var requests []*entity.SubstitutionRequest
	for rows.Next() {
		request, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}

	return requests, rows.Err()
}

// RespondIf moves the request out of the pending status only if it is still
// pending. The WHERE clause is the terminal-state guard: a concurrent
// responder who lost the race sees zero affected rows, never an overwrite.
func (r *SubstitutionRepository) RespondIf(ctx context.Context, id, fromStatus, toStatus string, respondedAt time.Time) (bool, error) {
	query := `
		UPDATE substitution_requests
		SET status = ?, responded_at = ?
		WHERE id = ? AND status = ?
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query, toStatus, respondedAt, id, fromStatus)
	if err != nil {
		r.logger.Error("Failed to respond to substitution request",
			zap.String("substitution_id", id),
			zap.Error(err))
		return false, fmt.Errorf("respond to substitution request: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("respond rows affected: %w", err)
	}

	return affected == 1, nil
}

func (r *SubstitutionRepository) scanOne(row *sql.Row) (*entity.SubstitutionRequest, error) {
	request := &entity.SubstitutionRequest{}
	err := row.Scan(
		&request.ID,
		&request.AdminID,
		&request.PetitionID,
		&request.RequestedUserID,
		&request.UserName,
		&request.UserPosition,
		&request.Reason,
		&request.Date,
		&request.StartTime,
		&request.GroupID,
		&request.Status,
		&request.CreatedAt,
		&request.RespondedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get substitution request: %w", err)
	}
	return request, nil
}

func (r *SubstitutionRepository) scanRow(rows *sql.Rows) (*entity.SubstitutionRequest, error) {
	request := &entity.SubstitutionRequest{}
	err := rows.Scan(
		&request.ID,
		&request.AdminID,
		&request.PetitionID,
		&request.RequestedUserID,
		&request.UserName,
		&request.UserPosition,
		&request.Reason,
		&request.Date,
		&request.StartTime,
		&request.GroupID,
		&request.Status,
		&request.CreatedAt,
		&request.RespondedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan substitution request: %w", err)
	}
	return request, nil
}

var _ port.SubstitutionRepository = (*SubstitutionRepository)(nil)
