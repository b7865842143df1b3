package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/shiftwise/shiftwise-backend/internal/application/port"
	"github.com/shiftwise/shiftwise-backend/internal/domain/entity"
	"github.com/shiftwise/shiftwise-backend/internal/infrastructure/persistence/sqlite"
)

// NotificationRepository implements port.NotificationRepository.
type NotificationRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewNotificationRepository creates a new notification repository.
func NewNotificationRepository(db *sqlite.DB, logger *zap.Logger) port.NotificationRepository {
	return &NotificationRepository{
		db:     db,
		logger: logger,
	}
}

const notificationColumns = `id, user_id, type, title, message, read,
	petition_id, petition_status, created_at`

// Create inserts a notification.
func (r *NotificationRepository) Create(ctx context.Context, notification *entity.Notification) error {
	query := `
		INSERT INTO notifications (
			id, user_id, type, title, message, read,
			petition_id, petition_status, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Executor(ctx).ExecContext(ctx, query,
		notification.ID,
		notification.UserID,
		notification.Type,
		notification.Title,
		notification.Message,
		notification.Read,
		notification.PetitionID,
		notification.PetitionStatus,
		notification.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create notification",
			zap.String("notification_id", notification.ID),
			zap.String("user_id", notification.UserID),
			zap.Error(err))
		return fmt.Errorf("create notification: %w", err)
	}

	return nil
}

// GetByUserID retrieves a user's notifications, newest first.
func (r *NotificationRepository) GetByUserID(ctx context.Context, userID string) ([]*entity.Notification, error) {
	query := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE user_id = ?
		ORDER BY created_at DESC
	`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*entity.Notification
	for rows.Next() {
		notification := &entity.Notification{}
		if err := rows.Scan(
			&notification.ID,
			&notification.UserID,
			&notification.Type,
			&notification.Title,
			&notification.Message,
			&notification.Read,
			&notification.PetitionID,
			&notification.PetitionStatus,
			&notification.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, notification)
	}

	return notifications, rows.Err()
}

// UpdateInPlace rewrites a substitution notification after its request is
// responded to.
func (r *NotificationRepository) UpdateInPlace(ctx context.Context, id string, update *entity.NotificationUpdate) error {
	query := `
		UPDATE notifications
		SET title = ?, message = ?, petition_status = ?, read = ?
		WHERE id = ?
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		update.Title,
		update.Message,
		update.PetitionStatus,
		update.Read,
		id,
	)
	if err != nil {
		r.logger.Error("Failed to update notification",
			zap.String("notification_id", id),
			zap.Error(err))
		return fmt.Errorf("update notification: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update notification rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("notification %s: %w", id, entity.ErrNotFound)
	}

	return nil
}

// MarkRead marks a notification as read.
func (r *NotificationRepository) MarkRead(ctx context.Context, id string) error {
	result, err := r.db.Executor(ctx).ExecContext(ctx,
		`UPDATE notifications SET read = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("notification %s: %w", id, entity.ErrNotFound)
	}

	return nil
}

var _ port.NotificationRepository = (*NotificationRepository)(nil)
