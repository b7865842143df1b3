package workflow

// Trigger represents an action that can cause a state transition.
type Trigger string

const (
	// TriggerApprove resolves a pending petition as approved.
	TriggerApprove Trigger = "APPROVE"

	// TriggerReject resolves a pending petition or substitution request as
	// rejected.
	TriggerReject Trigger = "REJECT"

	// TriggerAccept resolves a pending substitution request as accepted.
	TriggerAccept Trigger = "ACCEPT"
)

// String returns the string representation of the trigger.
func (t Trigger) String() string {
	return string(t)
}
