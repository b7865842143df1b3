package service

import (
	"context"
	"errors"
	"testing"

	appwf "github.com/shiftwise/shiftwise-backend/internal/application/workflow"
	"github.com/shiftwise/shiftwise-backend/internal/domain/entity"
	domainwf "github.com/shiftwise/shiftwise-backend/internal/domain/workflow"
)

func validCreateInput() CreatePetitionInput {
	return CreatePetitionInput{
		UserID:    "u1",
		UserName:  "Ana",
		GroupID:   "g1",
		Position:  "Cajera",
		Date:      "2025-03-10",
		StartTime: "09:00",
		Reason:    "Cita médica",
	}
}

func newPetitionFixture() (*mockPetitionRepo, *mockHistoryRepo, *mockGroupRepo, *mockUserRepo, *mockOutboxRepo, *mockTxManager, PetitionService) {
	petitionRepo := &mockPetitionRepo{}
	historyRepo := &mockHistoryRepo{}
	groupRepo := &mockGroupRepo{}
	userRepo := &mockUserRepo{}
	outboxRepo := &mockOutboxRepo{}
	txManager := &mockTxManager{}
	svc := NewPetitionService(petitionRepo, historyRepo, groupRepo, userRepo, outboxRepo, txManager, appwf.NewEngine(), &mockLogger{})
	return petitionRepo, historyRepo, groupRepo, userRepo, outboxRepo, txManager, svc
}

func TestCreatePetition(t *testing.T) {
	petitionRepo, _, groupRepo, _, outboxRepo, txManager, svc := newPetitionFixture()

	id, err := svc.CreatePetition(context.Background(), validCreateInput())
	if err != nil {
		t.Fatalf("CreatePetition() error = %v", err)
	}
	if id == "" {
		t.Fatal("CreatePetition() returned empty id")
	}

	if len(petitionRepo.Created) != 1 {
		t.Fatalf("expected 1 petition created, got %d", len(petitionRepo.Created))
	}
	created := petitionRepo.Created[0]
	if created.Status != entity.PetitionStatusPending {
		t.Errorf("new petition status = %q, want %q", created.Status, entity.PetitionStatusPending)
	}
	if created.ID != id {
		t.Errorf("returned id %q does not match stored petition %q", id, created.ID)
	}

	// The group back-reference and the admin notification effect land in the
	// same transaction as the insert.
	if txManager.Calls != 1 {
		t.Errorf("expected 1 transaction, got %d", txManager.Calls)
	}
	if len(groupRepo.AddedPending) != 1 || groupRepo.AddedPending[0] != id {
		t.Errorf("pending back-reference = %v, want [%s]", groupRepo.AddedPending, id)
	}
	if len(outboxRepo.Created) != 1 {
		t.Fatalf("expected 1 outbox effect, got %d", len(outboxRepo.Created))
	}
	if outboxRepo.Created[0].Type != entity.EffectNotifyAdminNewPetition {
		t.Errorf("effect type = %q, want %q", outboxRepo.Created[0].Type, entity.EffectNotifyAdminNewPetition)
	}
}

func TestCreatePetitionValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *CreatePetitionInput)
		field  string
	}{
		{"missing user id", func(in *CreatePetitionInput) { in.UserID = "" }, "userId"},
		{"missing user name", func(in *CreatePetitionInput) { in.UserName = "" }, "userName"},
		{"missing group id", func(in *CreatePetitionInput) { in.GroupID = "" }, "groupId"},
		{"missing position", func(in *CreatePetitionInput) { in.Position = "" }, "position"},
		{"missing date", func(in *CreatePetitionInput) { in.Date = "" }, "date"},
		{"missing start time", func(in *CreatePetitionInput) { in.StartTime = "" }, "startTime"},
		{"missing reason", func(in *CreatePetitionInput) { in.Reason = "" }, "reason"},
		{"malformed date", func(in *CreatePetitionInput) { in.Date = "10/03/2025" }, "date"},
		{"malformed start time", func(in *CreatePetitionInput) { in.StartTime = "9am" }, "startTime"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			petitionRepo, _, _, _, outboxRepo, txManager, svc := newPetitionFixture()

			input := validCreateInput()
			tt.mutate(&input)

			_, err := svc.CreatePetition(context.Background(), input)
			if !errors.Is(err, entity.ErrValidation) {
				t.Fatalf("CreatePetition() error = %v, want ErrValidation", err)
			}
			var verr *entity.ValidationError
			if !errors.As(err, &verr) || verr.Field != tt.field {
				t.Errorf("validation field = %v, want %q", err, tt.field)
			}

			// A validation failure must leave the store untouched.
			if len(petitionRepo.Created) != 0 || len(outboxRepo.Created) != 0 || txManager.Calls != 0 {
				t.Errorf("store mutated on invalid input: petitions=%d effects=%d txs=%d",
					len(petitionRepo.Created), len(outboxRepo.Created), txManager.Calls)
			}
		})
	}
}

func TestCreatePetitionGroupNotFound(t *testing.T) {
	_, _, groupRepo, _, _, txManager, svc := newPetitionFixture()
	groupRepo.getByIDFunc = func(ctx context.Context, id string) (*entity.Group, error) {
		return nil, nil
	}

	_, err := svc.CreatePetition(context.Background(), validCreateInput())
	if !errors.Is(err, entity.ErrNotFound) {
		t.Fatalf("CreatePetition() error = %v, want ErrNotFound", err)
	}
	if txManager.Calls != 0 {
		t.Errorf("expected no transaction on missing group, got %d", txManager.Calls)
	}
}

func TestApprovePetition(t *testing.T) {
	petitionRepo, historyRepo, groupRepo, userRepo, outboxRepo, txManager, svc := newPetitionFixture()

	pending := &entity.Petition{
		ID:       "p1",
		UserID:   "u1",
		UserName: "Ana",
		GroupID:  "g1",
		Position: "Cajera",
		Date:     "2025-03-10",
		Status:   entity.PetitionStatusPending,
	}
	petitionRepo.getByIDFunc = func(ctx context.Context, id string) (*entity.Petition, error) {
		return pending, nil
	}

	sub := "u2"
	if err := svc.ApprovePetition(context.Background(), "p1", "g1", &sub); err != nil {
		t.Fatalf("ApprovePetition() error = %v", err)
	}

	// The whole resolution is a single transaction: history insert, both
	// back-references, pending delete, effect rows.
	if txManager.Calls != 1 {
		t.Fatalf("expected 1 transaction, got %d", txManager.Calls)
	}
	if len(historyRepo.Created) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(historyRepo.Created))
	}
	entry := historyRepo.Created[0]
	if entry.Status != entity.PetitionStatusApproved {
		t.Errorf("history status = %q, want %q", entry.Status, entity.PetitionStatusApproved)
	}
	if entry.ReplacementUserID == nil || *entry.ReplacementUserID != "u2" {
		t.Errorf("history replacement = %v, want u2", entry.ReplacementUserID)
	}
	if len(petitionRepo.Deleted) != 1 || petitionRepo.Deleted[0] != "p1" {
		t.Errorf("pending deletes = %v, want [p1]", petitionRepo.Deleted)
	}
	if len(groupRepo.RemovedPending) != 1 || groupRepo.RemovedPending[0] != "p1" {
		t.Errorf("removed back-references = %v, want [p1]", groupRepo.RemovedPending)
	}
	if len(userRepo.AddedHistory) != 1 || userRepo.AddedHistory[0] != entry.ID {
		t.Errorf("user history back-references = %v, want [%s]", userRepo.AddedHistory, entry.ID)
	}

	// Metrics recompute plus the user notification.
	if len(outboxRepo.Created) != 2 {
		t.Fatalf("expected 2 outbox effects, got %d", len(outboxRepo.Created))
	}
	if outboxRepo.Created[0].Type != entity.EffectRecomputeGroupMetrics {
		t.Errorf("first effect = %q, want %q", outboxRepo.Created[0].Type, entity.EffectRecomputeGroupMetrics)
	}
	if outboxRepo.Created[1].Type != entity.EffectNotifyPetitionApproved {
		t.Errorf("second effect = %q, want %q", outboxRepo.Created[1].Type, entity.EffectNotifyPetitionApproved)
	}
}

func TestRejectPetition(t *testing.T) {
	petitionRepo, historyRepo, _, _, outboxRepo, _, svc := newPetitionFixture()

	petitionRepo.getByIDFunc = func(ctx context.Context, id string) (*entity.Petition, error) {
		return &entity.Petition{ID: id, UserID: "u1", GroupID: "g1", Status: entity.PetitionStatusPending}, nil
	}

	if err := svc.RejectPetition(context.Background(), "p1", "g1"); err != nil {
		t.Fatalf("RejectPetition() error = %v", err)
	}

	if historyRepo.Created[0].Status != entity.PetitionStatusRejected {
		t.Errorf("history status = %q, want %q", historyRepo.Created[0].Status, entity.PetitionStatusRejected)
	}
	if historyRepo.Created[0].ReplacementUserID != nil {
		t.Errorf("rejected entry carries replacement %v", *historyRepo.Created[0].ReplacementUserID)
	}
	if outboxRepo.Created[1].Type != entity.EffectNotifyPetitionRejected {
		t.Errorf("notify effect = %q, want %q", outboxRepo.Created[1].Type, entity.EffectNotifyPetitionRejected)
	}
}

func TestResolvePetitionNotFound(t *testing.T) {
	_, historyRepo, _, _, _, txManager, svc := newPetitionFixture()

	err := svc.ApprovePetition(context.Background(), "missing", "g1", nil)
	if !errors.Is(err, entity.ErrNotFound) {
		t.Fatalf("ApprovePetition() error = %v, want ErrNotFound", err)
	}
	if txManager.Calls != 0 || len(historyRepo.Created) != 0 {
		t.Error("store mutated for a missing petition")
	}
}

func TestResolvePetitionAlreadyResolved(t *testing.T) {
	petitionRepo, historyRepo, _, _, _, txManager, svc := newPetitionFixture()

	// A petition that somehow survived in the pending table with a terminal
	// status must not be movable again.
	petitionRepo.getByIDFunc = func(ctx context.Context, id string) (*entity.Petition, error) {
		return &entity.Petition{ID: id, GroupID: "g1", Status: entity.PetitionStatusApproved}, nil
	}

	err := svc.RejectPetition(context.Background(), "p1", "g1")
	if !errors.Is(err, domainwf.ErrInvalidTransition) {
		t.Fatalf("RejectPetition() error = %v, want ErrInvalidTransition", err)
	}
	if txManager.Calls != 0 || len(historyRepo.Created) != 0 {
		t.Error("store mutated for an already resolved petition")
	}
}

func TestResolvePetitionTransactionRollback(t *testing.T) {
	petitionRepo, historyRepo, _, _, outboxRepo, _, svc := newPetitionFixture()

	petitionRepo.getByIDFunc = func(ctx context.Context, id string) (*entity.Petition, error) {
		return &entity.Petition{ID: id, UserID: "u1", GroupID: "g1", Status: entity.PetitionStatusPending}, nil
	}
	storeErr := errors.New("disk full")
	petitionRepo.deleteFunc = func(ctx context.Context, id string) error {
		return storeErr
	}

	err := svc.ApprovePetition(context.Background(), "p1", "g1", nil)
	if !errors.Is(err, storeErr) {
		t.Fatalf("ApprovePetition() error = %v, want wrapped %v", err, storeErr)
	}

	// The mocks observe attempted writes before the failing delete; the point
	// is that the whole closure returned an error so a real transaction
	// manager would roll every one of them back.
	if len(historyRepo.Created) != 1 {
		t.Fatalf("expected the history insert to run inside the transaction before the failure")
	}
	if len(outboxRepo.Created) != 0 {
		t.Errorf("effects enqueued after the failing delete: %d", len(outboxRepo.Created))
	}
}
