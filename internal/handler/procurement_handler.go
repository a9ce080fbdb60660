package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/arisylafeta/aadf-procurement/internal/dto"
	"github.com/arisylafeta/aadf-procurement/internal/service"
	"github.com/arisylafeta/aadf-procurement/internal/utils"
)

// ProcurementHandler manages procurement endpoints, including the ranked
// bidder dashboard.
type ProcurementHandler struct {
	service   service.ProcurementService
	dashboard service.DashboardService
	logger    zerolog.Logger
}

// NewProcurementHandler builds a procurement handler instance.
func NewProcurementHandler(service service.ProcurementService, dashboard service.DashboardService, logger zerolog.Logger) *ProcurementHandler {
	return &ProcurementHandler{
		service:   service,
		dashboard: dashboard,
		logger:    logger.With().Str("component", "procurement_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *ProcurementHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/:id", h.get)
	router.Get("/:id/dashboard", h.getDashboard)
}

func (h *ProcurementHandler) list(c *fiber.Ctx) error {
	procurements, err := h.service.List(c.Context())
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "procurements retrieved", procurements)
}

func (h *ProcurementHandler) create(c *fiber.Ctx) error {
	var payload dto.ProcurementCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	procurement, err := h.service.Create(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "procurement created", procurement)
}

func (h *ProcurementHandler) get(c *fiber.Ctx) error {
	procurement, err := h.service.Get(c.Context(), c.Params("id"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "procurement retrieved", procurement)
}

func (h *ProcurementHandler) getDashboard(c *fiber.Ctx) error {
	dashboard, err := h.dashboard.GetDashboard(c.Context(), c.Params("id"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "dashboard retrieved", dashboard)
}

func (h *ProcurementHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrProcurementNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "procurement not found")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
