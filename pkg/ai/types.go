package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// DocumentRating is the structured outcome of one rating call.
type DocumentRating struct {
	Rating    float64 `json:"rating"`
	Reasoning string  `json:"reasoning"`
}

// DocumentRater describes a model that scores one binary document against a
// prompt on a 0-10 scale.
type DocumentRater interface {
	RateDocument(ctx context.Context, prompt string, document []byte, mediaType string) (DocumentRating, error)
}

// TextRater describes a model that scores a textual summary against a prompt.
// It shares the DocumentRater's structured contract, so no free-text parsing
// is needed downstream.
type TextRater interface {
	RateText(ctx context.Context, prompt string) (DocumentRating, error)
}

func ratingSystemPrompt() string {
	return "You are an automated procurement evaluator. Respond with a JSON object containing rating " +
		"(a number from 0 to 10, where 10 is excellent) and reasoning (a concise justification grounded " +
		"strictly in the provided material)."
}

// parseRatingResponse decodes the model's JSON payload. Out-of-range ratings
// are clamped into [0,10].
func parseRatingResponse(content string) (DocumentRating, error) {
	var rating DocumentRating
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &rating); err != nil {
		return DocumentRating{}, fmt.Errorf("parse rating json: %w", err)
	}

	if rating.Rating < 0 {
		rating.Rating = 0
	}
	if rating.Rating > 10 {
		rating.Rating = 10
	}

	return rating, nil
}

// stripCodeFence removes a surrounding markdown code fence, which some models
// emit even in JSON response mode.
func stripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}

	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}
