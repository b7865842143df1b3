package port

import (
	"context"

	"github.com/shiftwise/shiftwise-backend/internal/domain/entity"
)

// PushSender delivers a push alert to a device token. Failures are logged by
// callers and never abort the operation that triggered the push.
type PushSender interface {
	Send(ctx context.Context, pushToken, title, body string) error
}

// ReplacementSuggestion is the answer of the AI replacement suggester.
type ReplacementSuggestion struct {
	MemberID   string  `json:"member_id"`
	MemberName string  `json:"member_name"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// ReplacementSuggester picks the best substitute for an absence petition from
// a list of candidate members. Consumed only by the admin-facing suggestion
// flow, never by the workflow engine itself.
type ReplacementSuggester interface {
	SuggestReplacement(ctx context.Context, petition *entity.Petition, candidates []*entity.User) (*ReplacementSuggestion, error)
}
