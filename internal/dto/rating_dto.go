package dto

import "github.com/arisylafeta/aadf-procurement/internal/models"

// RatingOutcome is the trigger endpoint's response body: the computed rating
// record (when one was produced) plus a success flag derived from its status.
type RatingOutcome struct {
	Success    bool               `json:"success"`
	RatingData *models.RatingData `json:"ratingData"`
}

// NewRatingOutcome derives the caller-visible outcome from a rating record.
func NewRatingOutcome(data models.RatingData) RatingOutcome {
	return RatingOutcome{
		Success:    data.Status == models.RatingStatusCompleted,
		RatingData: &data,
	}
}
