package workflow

import (
	domainwf "github.com/shiftwise/shiftwise-backend/internal/domain/workflow"
)

// BuildPetitionStateMachine creates a state machine configured for the absence
// petition lifecycle: Pendiente -> Aprobada | Rechazada, both terminal.
func BuildPetitionStateMachine(initialState domainwf.State) domainwf.StateMachine {
	builder := domainwf.NewBuilder()

	builder.Configure(domainwf.StatePending).
		Permit(domainwf.TriggerApprove, domainwf.StateApproved).
		Permit(domainwf.TriggerReject, domainwf.StateRejected)

	// APROBADA and RECHAZADA are terminal - no outgoing transitions

	return builder.Build(initialState)
}

// BuildSubstitutionStateMachine creates a state machine configured for the
// substitution sub-lifecycle: Pendiente -> Aceptada | Rechazada, both terminal.
func BuildSubstitutionStateMachine(initialState domainwf.State) domainwf.StateMachine {
	builder := domainwf.NewBuilder()

	builder.Configure(domainwf.StatePending).
		Permit(domainwf.TriggerAccept, domainwf.StateAccepted).
		Permit(domainwf.TriggerReject, domainwf.StateRejected)

	return builder.Build(initialState)
}
