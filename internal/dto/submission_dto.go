package dto

import (
	"encoding/json"
	"time"

	"github.com/arisylafeta/aadf-procurement/internal/models"
)

// SubmissionCreateRequest is the payload for registering a bidder's packet.
// Section payloads map field names to scalars or already-uploaded document
// URLs; the blob upload itself happens outside this service.
type SubmissionCreateRequest struct {
	ProcurementID  string                 `json:"procurement_id" validate:"required"`
	BidderName     string                 `json:"bidder_name" validate:"required"`
	CoreData       map[string]interface{} `json:"core_data"`
	ExperienceData map[string]interface{} `json:"experience_data"`
	TeamData       map[string]interface{} `json:"team_data"`
	ProposedPrice  *float64               `json:"proposed_price" validate:"omitempty,gte=0"`
}

// SubmissionResponse is the API shape of one submission.
type SubmissionResponse struct {
	SubmissionID  string          `json:"submission_id"`
	ProcurementID string          `json:"procurement_id"`
	BidderName    string          `json:"bidder_name"`
	ProposedPrice *float64        `json:"proposed_price"`
	RatingStatus  string          `json:"rating_status"`
	RatingData    json.RawMessage `json:"rating_data,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// NewSubmissionResponse maps a model to its API shape.
func NewSubmissionResponse(submission models.Submission) SubmissionResponse {
	var ratingData json.RawMessage
	if len(submission.RatingData) > 0 {
		ratingData = json.RawMessage(submission.RatingData)
	}

	return SubmissionResponse{
		SubmissionID:  submission.ID,
		ProcurementID: submission.ProcurementID,
		BidderName:    submission.BidderName,
		ProposedPrice: submission.ProposedPrice,
		RatingStatus:  submission.RatingStatus,
		RatingData:    ratingData,
		CreatedAt:     submission.CreatedAt,
		UpdatedAt:     submission.UpdatedAt,
	}
}

// NewSubmissionResponseSlice maps a slice of models.
func NewSubmissionResponseSlice(submissions []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewSubmissionResponse(submission))
	}

	return responses
}
