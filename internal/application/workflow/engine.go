package workflow

import (
	"context"

	domainwf "github.com/shiftwise/shiftwise-backend/internal/domain/workflow"
)

// Engine validates lifecycle transitions for the application services and
// announces completed transitions on the event dispatcher. It owns no
// persistence; callers persist the resulting state inside their own
// transaction and report the outcome here.
type Engine interface {
	// PetitionTransition fires the trigger against the petition lifecycle and
	// returns the resulting state.
	PetitionTransition(ctx context.Context, current domainwf.State, trigger domainwf.Trigger) (domainwf.State, error)

	// SubstitutionTransition fires the trigger against the substitution
	// sub-lifecycle and returns the resulting state.
	SubstitutionTransition(ctx context.Context, current domainwf.State, trigger domainwf.Trigger) (domainwf.State, error)

	// EmitStatusChanged announces a persisted transition to subscribers.
	EmitStatusChanged(ctx context.Context, petitionID, groupID string, previous, next domainwf.State, trigger domainwf.Trigger)
}
