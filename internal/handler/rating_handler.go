package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/arisylafeta/aadf-procurement/internal/dto"
	"github.com/arisylafeta/aadf-procurement/internal/models"
	"github.com/arisylafeta/aadf-procurement/internal/service"
	"github.com/arisylafeta/aadf-procurement/internal/utils"
)

// RatingHandler exposes the submission rating trigger.
type RatingHandler struct {
	service service.RatingService
	logger  zerolog.Logger
}

// NewRatingHandler builds a rating handler instance.
func NewRatingHandler(service service.RatingService, logger zerolog.Logger) *RatingHandler {
	return &RatingHandler{
		service: service,
		logger:  logger.With().Str("component", "rating_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *RatingHandler) Register(router fiber.Router) {
	router.Post("/:id/rate", h.rate)
}

// rate runs the full evaluation synchronously and returns the produced
// rating record. A run that settled with section failures still returns the
// record, with a 500 status mirroring its error state.
func (h *RatingHandler) rate(c *fiber.Ctx) error {
	data, err := h.service.RateSubmission(c.Context(), c.Params("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidSubmissionID):
			return utils.SendError(c, fiber.StatusBadRequest, "invalid submission ID")
		case errors.Is(err, service.ErrSubmissionNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "submission not found")
		case errors.Is(err, service.ErrMissingProcurementID):
			return utils.SendError(c, fiber.StatusBadRequest, "submission is missing procurement_id")
		case errors.Is(err, service.ErrRatingInProgress):
			return utils.SendError(c, fiber.StatusConflict, "rating already in progress for this submission")
		default:
			h.logger.Error().Err(err).Msg("rating run failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
		}
	}

	outcome := dto.NewRatingOutcome(data)
	if data.Status != models.RatingStatusCompleted {
		return utils.SendErrorWithData(c, fiber.StatusInternalServerError, "rating completed with errors", outcome)
	}

	return utils.SendSuccess(c, "rating completed", outcome)
}
