package service

import (
	"context"
	"fmt"

	"github.com/shiftwise/shiftwise-backend/internal/application/port"
	"github.com/shiftwise/shiftwise-backend/internal/domain/entity"
)

// SuggestionService asks the AI suggester to pick a substitute for a pending
// petition from the group's members. The suggestion is advisory; the admin
// decides, and the workflow engine never calls this.
type SuggestionService interface {
	SuggestReplacement(ctx context.Context, petitionID string) (*port.ReplacementSuggestion, error)
}

type suggestionServiceImpl struct {
	petitionRepo port.PetitionRepository
	groupRepo    port.GroupRepository
	userRepo     port.UserRepository
	suggester    port.ReplacementSuggester
	logger       Logger
}

// NewSuggestionService creates a new SuggestionService.
func NewSuggestionService(
	petitionRepo port.PetitionRepository,
	groupRepo port.GroupRepository,
	userRepo port.UserRepository,
	suggester port.ReplacementSuggester,
	logger Logger,
) SuggestionService {
	return &suggestionServiceImpl{
		petitionRepo: petitionRepo,
		groupRepo:    groupRepo,
		userRepo:     userRepo,
		suggester:    suggester,
		logger:       logger,
	}
}

// SuggestReplacement loads the petition and its group's members (minus the
// petitioner) and delegates the pick to the suggester.
func (s *suggestionServiceImpl) SuggestReplacement(ctx context.Context, petitionID string) (*port.ReplacementSuggestion, error) {
	petition, err := s.petitionRepo.GetByID(ctx, petitionID)
	if err != nil {
		return nil, fmt.Errorf("get petition: %w", err)
	}
	if petition == nil {
		return nil, fmt.Errorf("petition %s: %w", petitionID, entity.ErrNotFound)
	}

	memberIDs, err := s.groupRepo.MemberIDs(ctx, petition.GroupID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}

	candidateIDs := make([]string, 0, len(memberIDs))
	for _, id := range memberIDs {
		if id != petition.UserID {
			candidateIDs = append(candidateIDs, id)
		}
	}
	if len(candidateIDs) == 0 {
		return nil, fmt.Errorf("no candidates in group %s: %w", petition.GroupID, entity.ErrNotFound)
	}

	candidates, err := s.userRepo.GetByIDs(ctx, candidateIDs)
	if err != nil {
		return nil, fmt.Errorf("load candidates: %w", err)
	}

	suggestion, err := s.suggester.SuggestReplacement(ctx, petition, candidates)
	if err != nil {
		s.logger.Error("Replacement suggestion failed", "error", err, "petition_id", petitionID)
		return nil, fmt.Errorf("suggest replacement: %w", err)
	}

	s.logger.Info("Replacement suggested",
		"petition_id", petitionID,
		"member_id", suggestion.MemberID,
		"confidence", suggestion.Confidence)
	return suggestion, nil
}
