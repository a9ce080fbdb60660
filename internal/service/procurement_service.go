package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/arisylafeta/aadf-procurement/internal/dto"
	"github.com/arisylafeta/aadf-procurement/internal/models"
	"github.com/arisylafeta/aadf-procurement/internal/repository"
)

// ProcurementService handles tender registration and retrieval.
type ProcurementService interface {
	Create(ctx context.Context, req dto.ProcurementCreateRequest) (dto.ProcurementResponse, error)
	Get(ctx context.Context, id string) (dto.ProcurementResponse, error)
	List(ctx context.Context) ([]dto.ProcurementResponse, error)
}

type procurementService struct {
	procurements repository.ProcurementRepository
	validate     *validator.Validate
	logger       zerolog.Logger
}

// NewProcurementService instantiates the service.
func NewProcurementService(procurements repository.ProcurementRepository, logger zerolog.Logger) ProcurementService {
	return &procurementService{
		procurements: procurements,
		validate:     validator.New(),
		logger:       logger.With().Str("component", "procurement_service").Logger(),
	}
}

func (s *procurementService) Create(ctx context.Context, req dto.ProcurementCreateRequest) (dto.ProcurementResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.ProcurementResponse{}, err
	}

	id := req.ProcurementID
	if id == "" {
		id = uuid.NewString()
	}

	procurement := models.Procurement{
		ID:           id,
		Title:        req.Title,
		PriceCeiling: req.PriceCeiling,
	}

	if err := s.procurements.Create(ctx, &procurement); err != nil {
		return dto.ProcurementResponse{}, err
	}

	s.logger.Info().Str("procurement_id", procurement.ID).Msg("procurement created")

	return dto.NewProcurementResponse(procurement), nil
}

func (s *procurementService) Get(ctx context.Context, id string) (dto.ProcurementResponse, error) {
	procurement, err := s.procurements.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProcurementResponse{}, ErrProcurementNotFound
		}
		return dto.ProcurementResponse{}, err
	}

	return dto.NewProcurementResponse(procurement), nil
}

func (s *procurementService) List(ctx context.Context) ([]dto.ProcurementResponse, error) {
	procurements, err := s.procurements.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ProcurementResponse, 0, len(procurements))
	for _, procurement := range procurements {
		responses = append(responses, dto.NewProcurementResponse(procurement))
	}

	return responses, nil
}
