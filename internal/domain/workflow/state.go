package workflow

// State represents a lifecycle state of a petition or substitution request.
// The Spanish values are the wire vocabulary persisted in the store.
type State string

const (
	// StatePending is the only non-terminal state. Both lifecycles start here.
	StatePending State = "Pendiente"

	// StateApproved is the terminal state of an approved petition.
	StateApproved State = "Aprobada"

	// StateRejected is the terminal state of a rejected petition or a
	// rejected substitution request.
	StateRejected State = "Rechazada"

	// StateAccepted is the terminal state of an accepted substitution request.
	StateAccepted State = "Aceptada"
)

var validStates = map[State]bool{
	StatePending:  true,
	StateApproved: true,
	StateRejected: true,
	StateAccepted: true,
}

var terminalStates = map[State]bool{
	StateApproved: true,
	StateRejected: true,
	StateAccepted: true,
}

// IsTerminal returns true if no further transitions are allowed from the state.
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// IsValid returns true if the state is a known lifecycle state.
func (s State) IsValid() bool {
	return validStates[s]
}

// String returns the string representation of the state.
func (s State) String() string {
	return string(s)
}
