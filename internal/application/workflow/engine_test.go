package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shiftwise/shiftwise-backend/internal/application/dispatcher"
	"github.com/shiftwise/shiftwise-backend/internal/domain/event"
	domainwf "github.com/shiftwise/shiftwise-backend/internal/domain/workflow"
)

func TestBuildPetitionStateMachine_Transitions(t *testing.T) {
	tests := []struct {
		name      string
		initial   domainwf.State
		trigger   domainwf.Trigger
		wantState domainwf.State
		wantErr   error
	}{
		{"approve pending", domainwf.StatePending, domainwf.TriggerApprove, domainwf.StateApproved, nil},
		{"reject pending", domainwf.StatePending, domainwf.TriggerReject, domainwf.StateRejected, nil},
		{"accept not part of petition lifecycle", domainwf.StatePending, domainwf.TriggerAccept, "", domainwf.ErrInvalidTransition},
		{"approve already approved", domainwf.StateApproved, domainwf.TriggerApprove, "", domainwf.ErrInvalidTransition},
		{"reject already rejected", domainwf.StateRejected, domainwf.TriggerReject, "", domainwf.ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			machine := BuildPetitionStateMachine(tt.initial)
			err := machine.Fire(context.Background(), tt.trigger)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Fire() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Fire() error = %v", err)
			}
			if got := machine.State(); got != tt.wantState {
				t.Errorf("State() = %v, want %v", got, tt.wantState)
			}
		})
	}
}

func TestBuildSubstitutionStateMachine_Transitions(t *testing.T) {
	tests := []struct {
		name      string
		initial   domainwf.State
		trigger   domainwf.Trigger
		wantState domainwf.State
		wantErr   error
	}{
		{"accept pending", domainwf.StatePending, domainwf.TriggerAccept, domainwf.StateAccepted, nil},
		{"reject pending", domainwf.StatePending, domainwf.TriggerReject, domainwf.StateRejected, nil},
		{"approve not part of substitution lifecycle", domainwf.StatePending, domainwf.TriggerApprove, "", domainwf.ErrInvalidTransition},
		{"accept already accepted", domainwf.StateAccepted, domainwf.TriggerAccept, "", domainwf.ErrInvalidTransition},
		{"reject already accepted", domainwf.StateAccepted, domainwf.TriggerReject, "", domainwf.ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			machine := BuildSubstitutionStateMachine(tt.initial)
			err := machine.Fire(context.Background(), tt.trigger)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Fire() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Fire() error = %v", err)
			}
			if got := machine.State(); got != tt.wantState {
				t.Errorf("State() = %v, want %v", got, tt.wantState)
			}
		})
	}
}

func TestEngine_PetitionTransition(t *testing.T) {
	engine := NewEngine()

	next, err := engine.PetitionTransition(context.Background(), domainwf.StatePending, domainwf.TriggerApprove)
	if err != nil {
		t.Fatalf("PetitionTransition() error = %v", err)
	}
	if next != domainwf.StateApproved {
		t.Errorf("PetitionTransition() = %v, want %v", next, domainwf.StateApproved)
	}
}

func TestEngine_PetitionTransitionInvalidState(t *testing.T) {
	engine := NewEngine()

	_, err := engine.PetitionTransition(context.Background(), domainwf.State("BOGUS"), domainwf.TriggerApprove)
	if !errors.Is(err, domainwf.ErrInvalidState) {
		t.Errorf("PetitionTransition() error = %v, want ErrInvalidState", err)
	}
}

func TestEngine_SubstitutionTransitionTerminalGuard(t *testing.T) {
	engine := NewEngine()

	_, err := engine.SubstitutionTransition(context.Background(), domainwf.StateAccepted, domainwf.TriggerReject)
	if !errors.Is(err, domainwf.ErrInvalidTransition) {
		t.Errorf("SubstitutionTransition() from terminal state error = %v, want ErrInvalidTransition", err)
	}
}

func TestEngine_EmitStatusChanged(t *testing.T) {
	d := dispatcher.NewDispatcher()
	defer d.Close()

	received := make(chan *event.Event, 1)
	d.Subscribe(event.TypePetitionStatusChanged, func(ctx context.Context, evt *event.Event) error {
		received <- evt
		return nil
	})

	engine := NewEngine(WithDispatcher(d))
	engine.EmitStatusChanged(context.Background(), "pet-1", "grp-1", domainwf.StatePending, domainwf.StateApproved, domainwf.TriggerApprove)

	select {
	case evt := <-received:
		if evt.PetitionID != "pet-1" {
			t.Errorf("PetitionID = %v, want pet-1", evt.PetitionID)
		}
		if evt.GetPayloadString("new_status") != "Aprobada" {
			t.Errorf("new_status = %v, want Aprobada", evt.GetPayloadString("new_status"))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for status changed event")
	}
}

func TestEngine_EmitStatusChangedWithoutDispatcher(t *testing.T) {
	engine := NewEngine()

	// Must be a no-op, not a panic.
	engine.EmitStatusChanged(context.Background(), "pet-1", "grp-1", domainwf.StatePending, domainwf.StateRejected, domainwf.TriggerReject)
}
