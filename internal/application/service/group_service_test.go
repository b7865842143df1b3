package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shiftwise/shiftwise-backend/internal/domain/entity"
)

func TestCreateGroup(t *testing.T) {
	groupRepo := &mockGroupRepo{}
	txManager := &mockTxManager{}
	svc := NewGroupService(groupRepo, &mockUserRepo{}, txManager, &mockLogger{})

	group, err := svc.CreateGroup(context.Background(), "Turno mañana", "admin-1")
	if err != nil {
		t.Fatalf("CreateGroup() error = %v", err)
	}

	if group.AdminID != "admin-1" {
		t.Errorf("group admin = %q, want admin-1", group.AdminID)
	}
	if group.MemberCount != 1 {
		t.Errorf("member count = %d, want 1", group.MemberCount)
	}
	if len(group.InviteCode) != 8 {
		t.Errorf("invite code %q, want 8 characters", group.InviteCode)
	}
	for _, c := range group.InviteCode {
		if !strings.ContainsRune(inviteAlphabet, c) {
			t.Errorf("invite code %q contains %q outside the alphabet", group.InviteCode, c)
		}
	}
	if txManager.Calls != 1 {
		t.Errorf("expected 1 transaction, got %d", txManager.Calls)
	}
	if len(groupRepo.AddedMembers) != 1 || groupRepo.AddedMembers[0] != "admin-1" {
		t.Errorf("members = %v, want the admin as first member", groupRepo.AddedMembers)
	}
}

func TestCreateGroupValidation(t *testing.T) {
	svc := NewGroupService(&mockGroupRepo{}, &mockUserRepo{}, &mockTxManager{}, &mockLogger{})

	if _, err := svc.CreateGroup(context.Background(), "", "admin-1"); !errors.Is(err, entity.ErrValidation) {
		t.Errorf("missing name: error = %v, want ErrValidation", err)
	}
	if _, err := svc.CreateGroup(context.Background(), "Turno mañana", ""); !errors.Is(err, entity.ErrValidation) {
		t.Errorf("missing admin: error = %v, want ErrValidation", err)
	}
}

func TestJoinGroup(t *testing.T) {
	groupRepo := &mockGroupRepo{
		getByInviteCodeFunc: func(ctx context.Context, code string) (*entity.Group, error) {
			return &entity.Group{ID: "g1", InviteCode: code, MemberCount: 1}, nil
		},
		memberIDsFunc: func(ctx context.Context, groupID string) ([]string, error) {
			return []string{"admin-1", "u2"}, nil
		},
	}
	txManager := &mockTxManager{}
	svc := NewGroupService(groupRepo, &mockUserRepo{}, txManager, &mockLogger{})

	group, err := svc.JoinGroup(context.Background(), "ABCD2345", "u2")
	if err != nil {
		t.Fatalf("JoinGroup() error = %v", err)
	}
	if group.ID != "g1" {
		t.Errorf("joined group = %q, want g1", group.ID)
	}
	if txManager.Calls != 1 {
		t.Errorf("expected 1 transaction, got %d", txManager.Calls)
	}
	if len(groupRepo.AddedMembers) != 1 || groupRepo.AddedMembers[0] != "u2" {
		t.Errorf("members added = %v, want [u2]", groupRepo.AddedMembers)
	}
	if len(groupRepo.Metrics) != 1 || groupRepo.Metrics[0].MemberCount != 2 {
		t.Errorf("metrics writes = %v, want member count 2", groupRepo.Metrics)
	}
}

func TestJoinGroupUnknownCode(t *testing.T) {
	groupRepo := &mockGroupRepo{}
	txManager := &mockTxManager{}
	svc := NewGroupService(groupRepo, &mockUserRepo{}, txManager, &mockLogger{})

	_, err := svc.JoinGroup(context.Background(), "NOPE2345", "u2")
	if !errors.Is(err, entity.ErrNotFound) {
		t.Fatalf("JoinGroup() error = %v, want ErrNotFound", err)
	}
	if txManager.Calls != 0 {
		t.Error("transaction opened for an unknown invite code")
	}
}

func TestListMembers(t *testing.T) {
	groupRepo := &mockGroupRepo{
		memberIDsFunc: func(ctx context.Context, groupID string) ([]string, error) {
			return []string{"u1", "u2"}, nil
		},
	}
	svc := NewGroupService(groupRepo, &mockUserRepo{}, &mockTxManager{}, &mockLogger{})

	members, err := svc.ListMembers(context.Background(), "g1")
	if err != nil {
		t.Fatalf("ListMembers() error = %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(members))
	}
}

func TestNewInviteCodeUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code := newInviteCode()
		if seen[code] {
			t.Fatalf("duplicate invite code %q after %d draws", code, i)
		}
		seen[code] = true
	}
}
