package entity

import "time"

// Petition represents an absence petition awaiting resolution.
// It lives in the pending_petitions table until it is approved or rejected,
// at which point it is moved into petition_history as a HistoryEntry.
type Petition struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	UserName          string    `json:"user_name"`
	GroupID           string    `json:"group_id"`
	Position          string    `json:"position"`
	Date              string    `json:"date"`
	StartTime         string    `json:"start_time"`
	Reason            string    `json:"reason"`
	Status            string    `json:"status"`
	ReplacementUserID *string   `json:"replacement_user_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// HistoryEntry is a resolved petition. A petition id appears in exactly one of
// pending_petitions and petition_history at any time.
type HistoryEntry struct {
	ID                string    `json:"id"`
	PetitionID        string    `json:"petition_id"`
	UserID            string    `json:"user_id"`
	UserName          string    `json:"user_name"`
	GroupID           string    `json:"group_id"`
	Position          string    `json:"position"`
	Date              string    `json:"date"`
	StartTime         string    `json:"start_time"`
	Reason            string    `json:"reason"`
	Status            string    `json:"status"`
	ReplacementUserID *string   `json:"replacement_user_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	ResolvedAt        time.Time `json:"resolved_at"`
}

// IsApproved reports whether the entry records an approval.
func (h *HistoryEntry) IsApproved() bool {
	return h.Status == PetitionStatusApproved
}
