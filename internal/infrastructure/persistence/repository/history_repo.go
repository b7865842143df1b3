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

// HistoryRepository implements port.HistoryRepository over the resolved
// petitions table.
type HistoryRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewHistoryRepository creates a new history repository.
func NewHistoryRepository(db *sqlite.DB, logger *zap.Logger) port.HistoryRepository {
	return &HistoryRepository{
		db:     db,
		logger: logger,
	}
}

const historyColumns = `id, petition_id, user_id, user_name, group_id, position,
	date, start_time, reason, status, replacement_user_id, created_at, resolved_at`

// Create inserts a resolved petition record.
func (r *HistoryRepository) Create(ctx context.Context, entry *entity.HistoryEntry) error {
	query := `
		INSERT INTO petition_history (
			id, petition_id, user_id, user_name, group_id, position,
			date, start_time, reason, status, replacement_user_id,
			created_at, resolved_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Executor(ctx).ExecContext(ctx, query,
		entry.ID,
		entry.PetitionID,
		entry.UserID,
		entry.UserName,
		entry.GroupID,
		entry.Position,
		entry.Date,
		entry.StartTime,
		entry.Reason,
		entry.Status,
		entry.ReplacementUserID,
		entry.CreatedAt,
		entry.ResolvedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create history entry",
			zap.String("history_id", entry.ID),
			zap.String("petition_id", entry.PetitionID),
			zap.Error(err))
		return fmt.Errorf("create history entry: %w", err)
	}

	return nil
}

// GetByPetitionID retrieves the history entry for a resolved petition, or nil.
func (r *HistoryRepository) GetByPetitionID(ctx context.Context, petitionID string) (*entity.HistoryEntry, error) {
	query := `SELECT ` + historyColumns + ` FROM petition_history WHERE petition_id = ?`
	return r.scanOne(r.db.Executor(ctx).QueryRowContext(ctx, query, petitionID))
}

// GetByGroupID retrieves a group's resolved petitions, newest resolution first.
func (r *HistoryRepository) GetByGroupID(ctx context.Context, groupID string) ([]*entity.HistoryEntry, error) {
	query := `SELECT ` + historyColumns + ` FROM petition_history WHERE group_id = ? ORDER BY resolved_at DESC`
	return r.scanMany(ctx, query, groupID)
}

// GetByUserID retrieves a user's resolved petitions, newest resolution first.
func (r *HistoryRepository) GetByUserID(ctx context.Context, userID string) ([]*entity.HistoryEntry, error) {
	query := `SELECT ` + historyColumns + ` FROM petition_history WHERE user_id = ? ORDER BY resolved_at DESC`
	return r.scanMany(ctx, query, userID)
}

// CountByGroupID counts a group's approved and rejected resolutions in one pass.
func (r *HistoryRepository) CountByGroupID(ctx context.Context, groupID string) (int, int, error) {
	query := `
		SELECT
			COUNT(CASE WHEN status = ? THEN 1 END),
			COUNT(CASE WHEN status = ? THEN 1 END)
		FROM petition_history
		WHERE group_id = ?
	`

	var approved, rejected int
	err := r.db.Executor(ctx).QueryRowContext(ctx, query,
		entity.PetitionStatusApproved,
		entity.PetitionStatusRejected,
		groupID,
	).Scan(&approved, &rejected)
	if err != nil {
		return 0, 0, fmt.Errorf("count history: %w", err)
	}

	return approved, rejected, nil
}

func (r *HistoryRepository) scanOne(row *sql.Row) (*entity.HistoryEntry, error) {
	entry := &entity.HistoryEntry{}
	err := row.Scan(
		&entry.ID,
		&entry.PetitionID,
		&entry.UserID,
		&entry.UserName,
		&entry.GroupID,
		&entry.Position,
		&entry.Date,
		&entry.StartTime,
		&entry.Reason,
		&entry.Status,
		&entry.ReplacementUserID,
		&entry.CreatedAt,
		&entry.ResolvedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get history entry: %w", err)
	}
	return entry, nil
}

func (r *HistoryRepository) scanMany(ctx context.Context, query string, arg interface{}) ([]*entity.HistoryEntry, error) {
	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []*entity.HistoryEntry
	for rows.Next() {
		entry := &entity.HistoryEntry{}
		if err := rows.Scan(
			&entry.ID,
			&entry.PetitionID,
			&entry.UserID,
			&entry.UserName,
			&entry.GroupID,
			&entry.Position,
			&entry.Date,
			&entry.StartTime,
			&entry.Reason,
			&entry.Status,
			&entry.ReplacementUserID,
			&entry.CreatedAt,
			&entry.ResolvedAt,
		); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

var _ port.HistoryRepository = (*HistoryRepository)(nil)
