package event

// Type identifies the type of domain event.
type Type string

const (
	TypePetitionCreated       Type = "petition.created"
	TypePetitionApproved      Type = "petition.approved"
	TypePetitionRejected      Type = "petition.rejected"
	TypePetitionStatusChanged Type = "petition.status_changed"
	TypeSubstitutionRequested Type = "substitution.requested"
	TypeSubstitutionResponded Type = "substitution.responded"
	TypeEffectProcessed       Type = "effect.processed"
	TypeEffectFailed          Type = "effect.failed"
)

// String returns the string representation of the event type.
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants.
func (t Type) IsValid() bool {
	switch t {
	case TypePetitionCreated,
		TypePetitionApproved,
		TypePetitionRejected,
		TypePetitionStatusChanged,
		TypeSubstitutionRequested,
		TypeSubstitutionResponded,
		TypeEffectProcessed,
		TypeEffectFailed:
		return true
	default:
		return false
	}
}
