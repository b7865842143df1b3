package openai

import (
	"context"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/shiftwise/shiftwise-backend/internal/application/port"
	"github.com/shiftwise/shiftwise-backend/internal/domain/entity"
)

// Suggester implements port.ReplacementSuggester using OpenAI. Given a pending
// petition and the group members who could cover it, it asks the model to pick
// the best replacement and explain the choice.
type Suggester struct {
	client  *openai.Client
	prompts *PromptConfig
	model   string
	logger  *zap.Logger
}

// NewSuggester creates a new OpenAI replacement suggester.
func NewSuggester(apiKey, model string, prompts *PromptConfig, logger *zap.Logger) *Suggester {
	return &Suggester{
		client:  openai.NewClient(apiKey),
		prompts: prompts,
		model:   model,
		logger:  logger,
	}
}

// promptData is the template input for the suggestion prompt.
type promptData struct {
	UserName   string
	Position   string
	Date       string
	StartTime  string
	Reason     string
	Candidates []promptCandidate
}

type promptCandidate struct {
	ID       string
	Name     string
	Position string
}

// suggestionResponse is the JSON shape the model is asked to produce.
type suggestionResponse struct {
	MemberID   string  `json:"member_id"`
	MemberName string  `json:"member_name"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// SuggestReplacement asks the model to rank the candidates for covering the
// petitioner's shift.
func (s *Suggester) SuggestReplacement(ctx context.Context, petition *entity.Petition, candidates []*entity.User) (*port.ReplacementSuggestion, error) {
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no candidates to suggest from")
	}

	data := promptData{
		UserName:  petition.UserName,
		Position:  petition.Position,
		Date:      petition.Date,
		StartTime: petition.StartTime,
		Reason:    petition.Reason,
	}
	for _, c := range candidates {
		data.Candidates = append(data.Candidates, promptCandidate{
			ID:       c.ID,
			Name:     c.Name,
			Position: c.Position,
		})
	}

	prompt, err := renderTemplate(s.prompts.ReplacementSuggestion.UserTemplate, data)
	if err != nil {
		return nil, fmt.Errorf("render suggestion prompt: %w", err)
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Temperature: s.prompts.ReplacementSuggestion.Temperature,
		MaxTokens:   s.prompts.ReplacementSuggestion.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: s.prompts.ReplacementSuggestion.System,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		s.logger.Error("OpenAI API call failed", zap.Error(err))
		return nil, fmt.Errorf("OpenAI API call failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	content := resp.Choices[0].Message.Content

	var result suggestionResponse
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		// Some models wrap the JSON in prose despite the response format.
		if jsonStr := extractJSON(content); jsonStr != "" {
			if err := json.Unmarshal([]byte(jsonStr), &result); err == nil {
				return s.toSuggestion(&result, candidates)
			}
		}

		s.logger.Error("Failed to parse OpenAI response",
			zap.Error(err),
			zap.String("content", content))
		return nil, fmt.Errorf("parse suggestion response: %w", err)
	}

	return s.toSuggestion(&result, candidates)
}

// toSuggestion validates the model's pick against the candidate list. A
// hallucinated member id is an error, not a suggestion.
func (s *Suggester) toSuggestion(result *suggestionResponse, candidates []*entity.User) (*port.ReplacementSuggestion, error) {
	for _, c := range candidates {
		if c.ID == result.MemberID {
			suggestion := &port.ReplacementSuggestion{
				MemberID:   c.ID,
				MemberName: c.Name,
				Confidence: result.Confidence,
				Reason:     result.Reason,
			}
			s.logger.Info("Replacement suggested",
				zap.String("member_id", suggestion.MemberID),
				zap.Float64("confidence", suggestion.Confidence))
			return suggestion, nil
		}
	}

	return nil, fmt.Errorf("suggested member %q is not a candidate", result.MemberID)
}

// extractJSON pulls the first top-level JSON object out of a response that
// wraps it in markdown or prose.
func extractJSON(content string) string {
	start := findJSONStart(content)
	if start < 0 {
		return ""
	}
	end := findJSONEnd(content, start)
	if end <= start {
		return ""
	}
	return content[start:end]
}

func findJSONStart(content string) int {
	for i := 0; i < len(content); i++ {
		if content[i] == '{' {
			return i
		}
	}
	return -1
}

func findJSONEnd(content string, start int) int {
	if start < 0 || start >= len(content) || content[start] != '{' {
		return -1
	}

	braceCount := 0
	inString := false
	escapeNext := false

	for i := start; i < len(content); i++ {
		char := content[i]

		if escapeNext {
			escapeNext = false
			continue
		}

		if char == '\\' {
			escapeNext = true
			continue
		}

		if char == '"' {
			inString = !inString
			continue
		}

		if inString {
			continue
		}

		if char == '{' {
			braceCount++
		} else if char == '}' {
			braceCount--
			if braceCount == 0 {
				return i + 1
			}
		}
	}

	return -1
}

var _ port.ReplacementSuggester = (*Suggester)(nil)
