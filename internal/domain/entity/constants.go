package entity

// Status constants for Petition and HistoryEntry.
// The Spanish wire vocabulary is kept so existing mobile clients keep working.
const (
	PetitionStatusPending  = "Pendiente"
	PetitionStatusApproved = "Aprobada"
	PetitionStatusRejected = "Rechazada"
)

// Status constants for SubstitutionRequest
const (
	SubstitutionStatusPending  = "Pendiente"
	SubstitutionStatusAccepted = "Aceptada"
	SubstitutionStatusRejected = "Rechazada"
)

// Notification type constants
const (
	NotificationTypeNewPetition          = "new_petition"
	NotificationTypePetitionApproved     = "petition_approved"
	NotificationTypePetitionRejected     = "petition_rejected"
	NotificationTypeSubstitutionRequest  = "substitution_request"
	NotificationTypeSubstitutionAccepted = "substitution_accepted"
	NotificationTypeSubstitutionRejected = "substitution_rejected"
)

// Outbox effect type constants
const (
	EffectNotifyAdminNewPetition     = "notify_admin_new_petition"
	EffectNotifyPetitionApproved     = "notify_petition_approved"
	EffectNotifyPetitionRejected     = "notify_petition_rejected"
	EffectNotifySubstitutionRequest  = "notify_substitution_request"
	EffectNotifySubstitutionAccepted = "notify_substitution_accepted"
	EffectNotifySubstitutionRejected = "notify_substitution_rejected"
	EffectRecomputeGroupMetrics      = "recompute_group_metrics"
)

// Outbox effect status constants
const (
	EffectStatusPending   = "Pendiente"
	EffectStatusProcessed = "Procesado"
	EffectStatusFailed    = "Fallido"
)
