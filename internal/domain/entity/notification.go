package entity

import "time"

// Notification is a persisted in-app notification record. Most notifications
// are immutable once created; the one exception is the substitution-request
// notification, which is rewritten in place (title, message, petition status,
// read flag) when the targeted user responds, so the mobile client reflects
// the decision without a second record.
type Notification struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Type           string    `json:"type"`
	Title          string    `json:"title"`
	Message        string    `json:"message"`
	Read           bool      `json:"read"`
	PetitionID     string    `json:"petition_id,omitempty"`
	PetitionStatus string    `json:"petition_status,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// NotificationUpdate carries the in-place rewrite applied to a substitution
// notification when its request is responded to.
type NotificationUpdate struct {
	Title          string `json:"title"`
	Message        string `json:"message"`
	PetitionStatus string `json:"petition_status"`
	Read           bool   `json:"read"`
}
