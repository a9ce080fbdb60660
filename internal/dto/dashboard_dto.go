package dto

// SectionScores breaks the composite score down per dimension.
type SectionScores struct {
	Core       float64 `json:"core"`
	Experience float64 `json:"experience"`
	Team       float64 `json:"team"`
	Price      float64 `json:"price"`
}

// DashboardEntry is one bidder's row on the procurement dashboard.
type DashboardEntry struct {
	SubmissionID  string         `json:"submission_id"`
	BidderName    string         `json:"bidder_name"`
	RatingStatus  string         `json:"rating_status"`
	OverallScore  float64        `json:"overall_score"`
	SectionScores *SectionScores `json:"section_scores,omitempty"`
	Qualified     bool           `json:"qualified"`
	RatedAt       string         `json:"rated_at,omitempty"`
	ErrorMessage  string         `json:"error_message,omitempty"`
}

// ProcurementDashboardResponse ranks all bidders of one procurement by
// composite score.
type ProcurementDashboardResponse struct {
	ProcurementID          string           `json:"procurement_id"`
	Title                  string           `json:"title"`
	QualificationThreshold float64          `json:"qualification_threshold"`
	Entries                []DashboardEntry `json:"entries"`
}
