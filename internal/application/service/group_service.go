package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shiftwise/shiftwise-backend/internal/application/port"
	"github.com/shiftwise/shiftwise-backend/internal/domain/entity"
)

// GroupService manages groups and membership. Joining is by invite code.
type GroupService interface {
	CreateGroup(ctx context.Context, name, adminID string) (*entity.Group, error)
	GetGroup(ctx context.Context, id string) (*entity.Group, error)
	JoinGroup(ctx context.Context, inviteCode, userID string) (*entity.Group, error)
	ListMembers(ctx context.Context, groupID string) ([]*entity.User, error)
}

type groupServiceImpl struct {
	groupRepo port.GroupRepository
	userRepo  port.UserRepository
	txManager port.TransactionManager
	logger    Logger
}

// NewGroupService creates a new GroupService.
func NewGroupService(
	groupRepo port.GroupRepository,
	userRepo port.UserRepository,
	txManager port.TransactionManager,
	logger Logger,
) GroupService {
	return &groupServiceImpl{
		groupRepo: groupRepo,
		userRepo:  userRepo,
		txManager: txManager,
		logger:    logger,
	}
}

// CreateGroup creates a group with a fresh invite code; the admin is the
// first member.
func (s *groupServiceImpl) CreateGroup(ctx context.Context, name, adminID string) (*entity.Group, error) {
	if name == "" {
		return nil, entity.NewValidationError("name")
	}
	if adminID == "" {
		return nil, entity.NewValidationError("adminId")
	}

	group := &entity.Group{
		ID:          uuid.NewString(),
		Name:        name,
		AdminID:     adminID,
		InviteCode:  newInviteCode(),
		MemberCount: 1,
		CreatedAt:   time.Now(),
	}

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.groupRepo.Create(txCtx, group); err != nil {
			return fmt.Errorf("create group: %w", err)
		}
		if err := s.groupRepo.AddMember(txCtx, group.ID, adminID); err != nil {
			return fmt.Errorf("add admin member: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to create group", "error", err, "admin_id", adminID)
		return nil, err
	}

	s.logger.Info("Group created", "group_id", group.ID, "invite_code", group.InviteCode)
	return group, nil
}

// GetGroup retrieves a group by id.
func (s *groupServiceImpl) GetGroup(ctx context.Context, id string) (*entity.Group, error) {
	group, err := s.groupRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get group: %w", err)
	}
	if group == nil {
		return nil, fmt.Errorf("group %s: %w", id, entity.ErrNotFound)
	}
	return group, nil
}

// JoinGroup adds the user to the group matching the invite code.
func (s *groupServiceImpl) JoinGroup(ctx context.Context, inviteCode, userID string) (*entity.Group, error) {
	if inviteCode == "" {
		return nil, entity.NewValidationError("inviteCode")
	}
	if userID == "" {
		return nil, entity.NewValidationError("userId")
	}

	group, err := s.groupRepo.GetByInviteCode(ctx, inviteCode)
	if err != nil {
		return nil, fmt.Errorf("get group by invite code: %w", err)
	}
	if group == nil {
		return nil, fmt.Errorf("invite code %s: %w", inviteCode, entity.ErrNotFound)
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.groupRepo.AddMember(txCtx, group.ID, userID); err != nil {
			return fmt.Errorf("add member: %w", err)
		}

		members, err := s.groupRepo.MemberIDs(txCtx, group.ID)
		if err != nil {
			return fmt.Errorf("list members: %w", err)
		}

		return s.groupRepo.UpdateMetrics(txCtx, &entity.GroupMetrics{
			GroupID:       group.ID,
			MemberCount:   len(members),
			ApprovedCount: group.ApprovedCount,
			RejectedCount: group.RejectedCount,
		})
	})
	if err != nil {
		s.logger.Error("Failed to join group", "error", err, "group_id", group.ID, "user_id", userID)
		return nil, err
	}

	s.logger.Info("User joined group", "group_id", group.ID, "user_id", userID)
	return group, nil
}

// ListMembers retrieves the users of a group.
func (s *groupServiceImpl) ListMembers(ctx context.Context, groupID string) ([]*entity.User, error) {
	ids, err := s.groupRepo.MemberIDs(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("list member ids: %w", err)
	}

	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load members: %w", err)
	}
	return users, nil
}

const inviteAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// newInviteCode returns an 8-character invite code. The alphabet drops the
// characters easy to misread on a phone screen (0/O, 1/I).
func newInviteCode() string {
	b := make([]byte, 8)
	rand.Read(b)
	for i := range b {
		b[i] = inviteAlphabet[int(b[i])%len(inviteAlphabet)]
	}
	return string(b)
}
