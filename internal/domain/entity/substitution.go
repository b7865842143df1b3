package entity

import "time"

// SubstitutionRequest is created by an admin while approving a petition with a
// chosen replacement. It is mutated only by the targeted user's response and is
// terminal once responded.
type SubstitutionRequest struct {
	ID              string     `json:"id"`
	AdminID         string     `json:"admin_id"`
	PetitionID      string     `json:"petition_id"`
	RequestedUserID string     `json:"requested_user_id"`
	UserName        string     `json:"user_name"`
	UserPosition    string     `json:"user_position"`
	Reason          string     `json:"reason"`
	Date            string     `json:"date"`
	StartTime       string     `json:"start_time"`
	GroupID         string     `json:"group_id"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	RespondedAt     *time.Time `json:"responded_at,omitempty"`
}

// IsResponded reports whether the request has reached a terminal status.
func (s *SubstitutionRequest) IsResponded() bool {
	return s.Status == SubstitutionStatusAccepted || s.Status == SubstitutionStatusRejected
}
