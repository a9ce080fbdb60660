package dto

import (
	"time"

	"github.com/arisylafeta/aadf-procurement/internal/models"
)

// ProcurementCreateRequest registers a new tender.
type ProcurementCreateRequest struct {
	ProcurementID string  `json:"procurement_id"`
	Title         string  `json:"title" validate:"required"`
	PriceCeiling  float64 `json:"price_ceiling" validate:"gte=0"`
}

// ProcurementResponse is the API shape of one procurement.
type ProcurementResponse struct {
	ProcurementID string    `json:"procurement_id"`
	Title         string    `json:"title"`
	PriceCeiling  float64   `json:"price_ceiling"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewProcurementResponse maps a model to its API shape.
func NewProcurementResponse(procurement models.Procurement) ProcurementResponse {
	return ProcurementResponse{
		ProcurementID: procurement.ID,
		Title:         procurement.Title,
		PriceCeiling:  procurement.PriceCeiling,
		CreatedAt:     procurement.CreatedAt,
	}
}
