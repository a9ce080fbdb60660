package models

import (
	"time"

	"gorm.io/datatypes"
)

// Submission represents one bidder's application packet for a procurement.
// Section payloads map field names to scalars or document URLs; the rating
// pipeline owns rating_status and rating_data after the packet is created.
type Submission struct {
	ID             string            `gorm:"primaryKey;size:64" json:"submission_id"`
	ProcurementID  string            `gorm:"size:64;index;not null" json:"procurement_id"`
	BidderName     string            `gorm:"size:255" json:"bidder_name"`
	CoreData       datatypes.JSONMap `json:"core_data"`
	ExperienceData datatypes.JSONMap `json:"experience_data"`
	TeamData       datatypes.JSONMap `json:"team_data"`
	ProposedPrice  *float64          `json:"proposed_price"`
	RatingStatus   string            `gorm:"size:32;not null;default:pending" json:"rating_status"`
	RatingData     datatypes.JSON    `json:"rating_data"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

const (
	// RatingStatusPending indicates the submission has not been evaluated yet.
	RatingStatusPending = "pending"
	// RatingStatusProcessing indicates an orchestration run has started.
	RatingStatusProcessing = "processing"
	// RatingStatusCompleted indicates all four sections settled successfully.
	RatingStatusCompleted = "completed"
	// RatingStatusError indicates the run failed or finished with partial failures.
	RatingStatusError = "error"
)

// IsRated reports whether the submission reached a terminal rating state.
func (s Submission) IsRated() bool {
	return s.RatingStatus == RatingStatusCompleted || s.RatingStatus == RatingStatusError
}
