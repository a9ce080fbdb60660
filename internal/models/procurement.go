package models

import "time"

// Procurement is one tender bidders submit applications against. PriceCeiling
// is the configured tender value ceiling; the experience rater treats half of
// it as the minimum project value a referenced experience should exceed.
type Procurement struct {
	ID           string    `gorm:"primaryKey;size:64" json:"procurement_id"`
	Title        string    `gorm:"size:255;not null" json:"title"`
	PriceCeiling float64   `json:"price_ceiling"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ExperienceValueThreshold returns the project value a referenced experience
// must exceed to fully satisfy the experience criteria.
func (p Procurement) ExperienceValueThreshold() float64 {
	return p.PriceCeiling * 0.5
}
