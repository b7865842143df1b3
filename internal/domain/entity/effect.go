package entity

import (
	"encoding/json"
	"time"
)

// OutboxEffect is a durable record of a side effect owed by a completed
// workflow transition (notification dispatch, group metrics recompute). It is
// written in the same transaction as the primary mutation and drained by a
// retrying background worker, so a transient dispatch failure becomes an
// observable backlog instead of a silently dropped notification.
type OutboxEffect struct {
	ID            string     `json:"id"`
	Type          string     `json:"type"`
	Payload       string     `json:"payload"`
	Status        string     `json:"status"`
	Attempts      int        `json:"attempts"`
	NextAttemptAt time.Time  `json:"next_attempt_at"`
	LastError     string     `json:"last_error,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	ProcessedAt   *time.Time `json:"processed_at,omitempty"`
}

// EffectPayload is the common payload shape carried by outbox effects.
// Fields not relevant to a given effect type are left empty.
type EffectPayload struct {
	PetitionID     string `json:"petition_id,omitempty"`
	GroupID        string `json:"group_id,omitempty"`
	UserID         string `json:"user_id,omitempty"`
	UserName       string `json:"user_name,omitempty"`
	AdminID        string `json:"admin_id,omitempty"`
	Date           string `json:"date,omitempty"`
	StartTime      string `json:"start_time,omitempty"`
	Reason         string `json:"reason,omitempty"`
	PetitionStatus string `json:"petition_status,omitempty"`
	SubstitutionID string `json:"substitution_id,omitempty"`
}

// Decode unmarshals the effect payload.
func (e *OutboxEffect) Decode() (*EffectPayload, error) {
	var p EffectPayload
	if err := json.Unmarshal([]byte(e.Payload), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// EncodePayload marshals an effect payload for storage.
func EncodePayload(p *EffectPayload) (string, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
