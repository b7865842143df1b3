package entity

import "time"

// Group is a workforce group owned by an admin. Membership and the pending
// petition back-references live in junction tables and are updated in the same
// transaction as the petition they mirror.
type Group struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	AdminID       string    `json:"admin_id"`
	InviteCode    string    `json:"invite_code"`
	MemberCount   int       `json:"member_count"`
	ApprovedCount int       `json:"approved_count"`
	RejectedCount int       `json:"rejected_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// GroupMetrics is the aggregate recomputed after every petition resolution.
type GroupMetrics struct {
	GroupID       string `json:"group_id"`
	MemberCount   int    `json:"member_count"`
	ApprovedCount int    `json:"approved_count"`
	RejectedCount int    `json:"rejected_count"`
}
