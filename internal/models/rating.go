package models

// RatingVersion tags the persisted rating_data schema.
const RatingVersion = "1.0"

// RatingDetail records the outcome for one evaluated document or sub-item.
type RatingDetail struct {
	DocumentName string  `json:"documentName,omitempty"`
	DocumentURL  string  `json:"documentUrl,omitempty"`
	Rating       float64 `json:"rating"`
	Reasoning    string  `json:"reasoning"`
	Criteria     string  `json:"criteria,omitempty"`
}

// SectionRating is the folded result of one document-backed section
// (core, experience or team).
type SectionRating struct {
	OverallScore     float64        `json:"overallScore"`
	Details          []RatingDetail `json:"details"`
	OverallReasoning string         `json:"overallReasoning"`
}

// PriceRating is the deterministic price comparison result. Unlike
// SectionRating it carries no per-document details.
type PriceRating struct {
	Score     float64 `json:"score"`
	Reasoning string  `json:"reasoning"`
}

// RatingData is the aggregate persisted into the submission's rating_data
// column. OverallScore is the unweighted mean of the four section scores and
// stays within [0,10] for well-formed inputs.
type RatingData struct {
	RatingVersion string        `json:"ratingVersion"`
	RatedAt       string        `json:"ratedAt"`
	Status        string        `json:"status"`
	ErrorMessage  string        `json:"errorMessage,omitempty"`
	OverallScore  float64       `json:"overallScore"`
	Price         PriceRating   `json:"price"`
	Core          SectionRating `json:"core"`
	Experience    SectionRating `json:"experience"`
	Team          SectionRating `json:"team"`
}

// RatingErrorStatus is the minimal rating_data payload stored when a run
// fails before producing a full RatingData (fetch or save failures).
type RatingErrorStatus struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"errorMessage"`
}
