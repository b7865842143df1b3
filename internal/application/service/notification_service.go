package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shiftwise/shiftwise-backend/internal/application/port"
	"github.com/shiftwise/shiftwise-backend/internal/domain/entity"
)

// NotificationExtras carries the optional petition fields attached to a
// notification record.
type NotificationExtras struct {
	PetitionID     string
	PetitionStatus string
}

// NotificationService persists notification records and delivers best-effort
// push alerts. Push failure is logged and swallowed; the persisted record is
// the primary effect and push is advisory.
type NotificationService interface {
	CreateNotification(ctx context.Context, userID, notifType, title, message string, extras *NotificationExtras) error
	NotifyAdminNewPetition(ctx context.Context, p *entity.EffectPayload) error
	NotifyPetitionApproved(ctx context.Context, p *entity.EffectPayload) error
	NotifyPetitionRejected(ctx context.Context, p *entity.EffectPayload) error
	NotifySubstitutionRequest(ctx context.Context, p *entity.EffectPayload) error
	NotifySubstitutionAccepted(ctx context.Context, p *entity.EffectPayload) error
	NotifySubstitutionRejected(ctx context.Context, p *entity.EffectPayload) error
	ListForUser(ctx context.Context, userID string) ([]*entity.Notification, error)
	MarkRead(ctx context.Context, notificationID string) error
}

type notificationServiceImpl struct {
	notificationRepo port.NotificationRepository
	userRepo         port.UserRepository
	pushSender       port.PushSender
	logger           Logger
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(
	notificationRepo port.NotificationRepository,
	userRepo port.UserRepository,
	pushSender port.PushSender,
	logger Logger,
) NotificationService {
	return &notificationServiceImpl{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		pushSender:       pushSender,
		logger:           logger,
	}
}

// CreateNotification persists a notification record and pushes it.
func (s *notificationServiceImpl) CreateNotification(ctx context.Context, userID, notifType, title, message string, extras *NotificationExtras) error {
	notification := &entity.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      notifType,
		Title:     title,
		Message:   message,
		Read:      false,
		CreatedAt: time.Now(),
	}
	if extras != nil {
		notification.PetitionID = extras.PetitionID
		notification.PetitionStatus = extras.PetitionStatus
	}

	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		s.logger.Error("Failed to create notification",
			"error", err,
			"user_id", userID,
			"type", notifType)
		return fmt.Errorf("create notification: %w", err)
	}

	s.pushBestEffort(ctx, userID, title, message)

	s.logger.Info("Notification created",
		"notification_id", notification.ID,
		"user_id", userID,
		"type", notifType)
	return nil
}

// NotifyAdminNewPetition tells the group admin about a freshly created petition.
func (s *notificationServiceImpl) NotifyAdminNewPetition(ctx context.Context, p *entity.EffectPayload) error {
	title := "Nueva petición de ausencia"
	message := fmt.Sprintf("%s ha solicitado ausentarse el %s a las %s: %s", p.UserName, p.Date, p.StartTime, p.Reason)
	return s.CreateNotification(ctx, p.AdminID, entity.NotificationTypeNewPetition, title, message, &NotificationExtras{
		PetitionID:     p.PetitionID,
		PetitionStatus: entity.PetitionStatusPending,
	})
}

// NotifyPetitionApproved tells the petitioner their petition was approved.
func (s *notificationServiceImpl) NotifyPetitionApproved(ctx context.Context, p *entity.EffectPayload) error {
	title := "Petición aprobada"
	message := fmt.Sprintf("Tu petición de ausencia del %s ha sido aprobada.", p.Date)
	return s.CreateNotification(ctx, p.UserID, entity.NotificationTypePetitionApproved, title, message, &NotificationExtras{
		PetitionID:     p.PetitionID,
		PetitionStatus: entity.PetitionStatusApproved,
	})
}

// NotifyPetitionRejected tells the petitioner their petition was rejected.
func (s *notificationServiceImpl) NotifyPetitionRejected(ctx context.Context, p *entity.EffectPayload) error {
	title := "Petición rechazada"
	message := fmt.Sprintf("Tu petición de ausencia del %s ha sido rechazada.", p.Date)
	return s.CreateNotification(ctx, p.UserID, entity.NotificationTypePetitionRejected, title, message, &NotificationExtras{
		PetitionID:     p.PetitionID,
		PetitionStatus: entity.PetitionStatusRejected,
	})
}

// NotifySubstitutionRequest asks the targeted user to cover a shift.
func (s *notificationServiceImpl) NotifySubstitutionRequest(ctx context.Context, p *entity.EffectPayload) error {
	title := "Solicitud de sustitución"
	message := fmt.Sprintf("Se te ha solicitado cubrir el turno del %s a las %s.", p.Date, p.StartTime)
	return s.CreateNotification(ctx, p.UserID, entity.NotificationTypeSubstitutionRequest, title, message, &NotificationExtras{
		PetitionID:     p.PetitionID,
		PetitionStatus: entity.SubstitutionStatusPending,
	})
}

// NotifySubstitutionAccepted tells the admin the substitute accepted.
func (s *notificationServiceImpl) NotifySubstitutionAccepted(ctx context.Context, p *entity.EffectPayload) error {
	title := "Sustitución aceptada"
	message := fmt.Sprintf("%s ha aceptado cubrir el turno del %s.", p.UserName, p.Date)
	return s.CreateNotification(ctx, p.AdminID, entity.NotificationTypeSubstitutionAccepted, title, message, &NotificationExtras{
		PetitionID:     p.PetitionID,
		PetitionStatus: entity.SubstitutionStatusAccepted,
	})
}

// NotifySubstitutionRejected tells the admin the substitute declined.
func (s *notificationServiceImpl) NotifySubstitutionRejected(ctx context.Context, p *entity.EffectPayload) error {
	title := "Sustitución rechazada"
	message := fmt.Sprintf("%s ha rechazado cubrir el turno del %s.", p.UserName, p.Date)
	return s.CreateNotification(ctx, p.AdminID, entity.NotificationTypeSubstitutionRejected, title, message, &NotificationExtras{
		PetitionID:     p.PetitionID,
		PetitionStatus: entity.SubstitutionStatusRejected,
	})
}

// ListForUser retrieves a user's notifications, newest first.
func (s *notificationServiceImpl) ListForUser(ctx context.Context, userID string) ([]*entity.Notification, error) {
	notifications, err := s.notificationRepo.GetByUserID(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to list notifications", "error", err, "user_id", userID)
		return nil, err
	}
	return notifications, nil
}

// MarkRead marks a notification as read.
func (s *notificationServiceImpl) MarkRead(ctx context.Context, notificationID string) error {
	if err := s.notificationRepo.MarkRead(ctx, notificationID); err != nil {
		s.logger.Error("Failed to mark notification read", "error", err, "notification_id", notificationID)
		return err
	}
	return nil
}

// pushBestEffort delivers a push alert if the user has a registered token.
// Failures never propagate to the caller.
func (s *notificationServiceImpl) pushBestEffort(ctx context.Context, userID, title, message string) {
	if s.pushSender == nil {
		return
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil || user == nil || user.PushToken == "" {
		return
	}

	if err := s.pushSender.Send(ctx, user.PushToken, title, message); err != nil {
		s.logger.Error("Push delivery failed",
			"error", err,
			"user_id", userID)
	}
}
