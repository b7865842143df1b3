package workflow

import (
	"context"
	"fmt"

	"github.com/shiftwise/shiftwise-backend/internal/application/dispatcher"
	"github.com/shiftwise/shiftwise-backend/internal/domain/event"
	domainwf "github.com/shiftwise/shiftwise-backend/internal/domain/workflow"
)

// engineImpl is the concrete implementation of Engine.
type engineImpl struct {
	dispatcher dispatcher.Dispatcher
}

// EngineOption configures the workflow engine.
type EngineOption func(*engineImpl)

// WithDispatcher sets the event dispatcher for announcing transitions.
func WithDispatcher(d dispatcher.Dispatcher) EngineOption {
	return func(e *engineImpl) {
		e.dispatcher = d
	}
}

// NewEngine creates a new workflow engine.
func NewEngine(opts ...EngineOption) Engine {
	e := &engineImpl{}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// PetitionTransition fires the trigger against the petition lifecycle.
func (e *engineImpl) PetitionTransition(ctx context.Context, current domainwf.State, trigger domainwf.Trigger) (domainwf.State, error) {
	if !current.IsValid() {
		return "", fmt.Errorf("%w: %s", domainwf.ErrInvalidState, current)
	}

	machine := BuildPetitionStateMachine(current)
	if err := machine.Fire(ctx, trigger); err != nil {
		return "", err
	}

	return machine.State(), nil
}

// SubstitutionTransition fires the trigger against the substitution lifecycle.
func (e *engineImpl) SubstitutionTransition(ctx context.Context, current domainwf.State, trigger domainwf.Trigger) (domainwf.State, error) {
	if !current.IsValid() {
		return "", fmt.Errorf("%w: %s", domainwf.ErrInvalidState, current)
	}

	machine := BuildSubstitutionStateMachine(current)
	if err := machine.Fire(ctx, trigger); err != nil {
		return "", err
	}

	return machine.State(), nil
}

// EmitStatusChanged announces a persisted transition to subscribers.
func (e *engineImpl) EmitStatusChanged(ctx context.Context, petitionID, groupID string, previous, next domainwf.State, trigger domainwf.Trigger) {
	if e.dispatcher == nil {
		return
	}

	evt := event.NewEvent(
		event.TypePetitionStatusChanged,
		petitionID,
		groupID,
		map[string]interface{}{
			"previous_status": previous.String(),
			"new_status":      next.String(),
			"trigger":         trigger.String(),
		},
	)

	// Async so subscribers never block the transition that already committed.
	e.dispatcher.DispatchAsync(ctx, evt)
}
